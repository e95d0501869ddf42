package union

// PageState represents the current state of a Page.
type PageState int32

const (
	// PageLoading indicates the Page has not yet processed a document.
	PageLoading PageState = iota

	// PageHealthy indicates the mounted widgets match the last document.
	PageHealthy

	// PageDegraded indicates the last document failed to scan, validate or
	// reconcile. The Page keeps, or rolls back to, the widgets of the
	// previous document as far as the store allows.
	PageDegraded

	// PageEmpty indicates the first document failed and no document has
	// ever been reconciled. The Page keeps watching for valid updates.
	PageEmpty
)

// String returns the string representation of the state.
func (s PageState) String() string {
	switch s {
	case PageLoading:
		return "loading"
	case PageHealthy:
		return "healthy"
	case PageDegraded:
		return "degraded"
	case PageEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
