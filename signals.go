package union

import "github.com/zoobzio/capitan"

// Store signals.
var (
	// StoreDispatched is emitted after an action has been reduced.
	StoreDispatched = capitan.NewSignal(
		"union.store.dispatched",
		"Action reduced",
	)

	// StoreDispatchFailed is emitted when the dispatch pipeline rejects an action.
	StoreDispatchFailed = capitan.NewSignal(
		"union.store.dispatch.failed",
		"Dispatch pipeline failed",
	)

	// StoreReducersInjected is emitted when reducers are added to the registry.
	StoreReducersInjected = capitan.NewSignal(
		"union.store.reducers.injected",
		"Reducers injected",
	)

	// StoreReducersRemoved is emitted when reducers are removed from the registry.
	StoreReducersRemoved = capitan.NewSignal(
		"union.store.reducers.removed",
		"Reducers removed",
	)

	// StoreEpicsInjected is emitted when epics start running.
	StoreEpicsInjected = capitan.NewSignal(
		"union.store.epics.injected",
		"Epics injected",
	)

	// StoreEpicsRemoved is emitted when epics are cancelled.
	StoreEpicsRemoved = capitan.NewSignal(
		"union.store.epics.removed",
		"Epics removed",
	)

	// EpicDispatchFailed is emitted when an action produced by an epic could
	// not be dispatched.
	EpicDispatchFailed = capitan.NewSignal(
		"union.epic.dispatch.failed",
		"Epic output dispatch failed",
	)
)

// Widget lifecycle signals.
var (
	// WidgetMounted is emitted when a Binder has injected a widget's reducers and epics.
	WidgetMounted = capitan.NewSignal(
		"union.widget.mounted",
		"Widget mounted",
	)

	// WidgetUnmounted is emitted when a mount has retracted its registrations.
	WidgetUnmounted = capitan.NewSignal(
		"union.widget.unmounted",
		"Widget unmounted",
	)

	// ConnectInvalidProps is emitted when mapStateToProps or mergeProps
	// returns something other than Props.
	ConnectInvalidProps = capitan.NewSignal(
		"union.connect.props.invalid",
		"Connect function returned non-Props value",
	)
)

// Page signals.
var (
	// PageStarted is emitted when a Page begins watching.
	PageStarted = capitan.NewSignal(
		"union.page.started",
		"Page watching started",
	)

	// PageStopped is emitted when a Page stops watching.
	PageStopped = capitan.NewSignal(
		"union.page.stopped",
		"Page watching stopped",
	)

	// PageStateChanged is emitted when a Page transitions between states.
	PageStateChanged = capitan.NewSignal(
		"union.page.state.changed",
		"Page state transition",
	)

	// PageChangeReceived is emitted when a raw document is received from the watcher.
	PageChangeReceived = capitan.NewSignal(
		"union.page.change.received",
		"Raw document received from watcher",
	)

	// PageScanFailed is emitted when the document cannot be scanned.
	PageScanFailed = capitan.NewSignal(
		"union.page.scan.failed",
		"Descriptor scan failed",
	)

	// PageValidationFailed is emitted when descriptors reference unknown widgets.
	PageValidationFailed = capitan.NewSignal(
		"union.page.validation.failed",
		"Descriptor validation failed",
	)

	// PageReconcileFailed is emitted when mounting or unmounting widgets fails.
	PageReconcileFailed = capitan.NewSignal(
		"union.page.reconcile.failed",
		"Widget reconciliation failed",
	)

	// PageReconciled is emitted when the mounted widgets match the document.
	PageReconciled = capitan.NewSignal(
		"union.page.reconciled",
		"Widgets reconciled",
	)

	// WatcherFailed is emitted when a file watcher cannot read its document
	// or fsnotify reports an error. Watching continues.
	WatcherFailed = capitan.NewSignal(
		"union.watcher.failed",
		"Document watcher error",
	)
)
