package union

import (
	"sync"
	"time"
)

// Failure records one document that could not be reconciled.
type Failure struct {
	// Stage is the processing step that failed: scan, validate or reconcile.
	Stage string

	// Err is the error the stage returned.
	Err error

	// At is when the failure was recorded, read from the page clock.
	At time.Time
}

// failureLog keeps the most recent failures, oldest first. A nil log
// records nothing.
type failureLog struct {
	mu    sync.Mutex
	limit int
	items []Failure
}

func newFailureLog(limit int) *failureLog {
	if limit <= 0 {
		return nil
	}
	return &failureLog{limit: limit, items: make([]Failure, 0, limit)}
}

func (l *failureLog) record(f Failure) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) == l.limit {
		copy(l.items, l.items[1:])
		l.items = l.items[:l.limit-1]
	}
	l.items = append(l.items, f)
}

// reset forgets every failure; a reconciled document clears the log.
func (l *failureLog) reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.items)
	l.items = l.items[:0]
}

func (l *failureLog) snapshot() []Failure {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) == 0 {
		return nil
	}
	out := make([]Failure, len(l.items))
	copy(out, l.items)
	return out
}
