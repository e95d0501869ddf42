package union

import "errors"

var (
	// ErrNamespaceNotFound is returned when a state tree has no slice for a namespace.
	ErrNamespaceNotFound = errors.New("union: namespace not found")

	// ErrInvalidMapDispatch is returned when mapDispatchToProps is neither a function nor ActionCreators.
	ErrInvalidMapDispatch = errors.New("union: invalid mapDispatchToProps")

	// ErrInvalidAction is returned when a dispatched action has no type.
	ErrInvalidAction = errors.New("union: invalid action")

	// ErrInvalidDescriptor is returned when a placeholder cannot be turned into a Descriptor.
	ErrInvalidDescriptor = errors.New("union: invalid widget descriptor")

	// ErrUnknownWidget is returned when a placeholder names a widget missing from the Catalog.
	ErrUnknownWidget = errors.New("union: unknown widget")

	// ErrWidgetExists is returned when a widget name is registered twice.
	ErrWidgetExists = errors.New("union: widget already registered")

	// ErrStoreClosed is returned by a Store after Close.
	ErrStoreClosed = errors.New("union: store closed")

	// ErrNoStore is returned when a view is connected without a store.
	ErrNoStore = errors.New("union: no store provided")
)
