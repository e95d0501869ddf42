package union

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key page events.
type MetricsProvider interface {
	// OnStateChange is called when the page transitions between states.
	OnStateChange(from, to PageState)

	// OnProcessSuccess is called when a document has been reconciled.
	// Duration is the time taken to scan, validate and reconcile.
	OnProcessSuccess(duration time.Duration)

	// OnProcessFailure is called when processing fails at any stage.
	// Stage indicates where the failure occurred: "scan", "validate", or "reconcile".
	OnProcessFailure(stage string, duration time.Duration)

	// OnChangeReceived is called when a raw document is received from the watcher.
	OnChangeReceived()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ PageState)               {}
func (NoOpMetricsProvider) OnProcessSuccess(_ time.Duration)           {}
func (NoOpMetricsProvider) OnProcessFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnChangeReceived()                          {}

// StoreMetrics receives callbacks on dispatch activity.
type StoreMetrics interface {
	// OnDispatch is called after an action has been reduced.
	OnDispatch(actionType string, duration time.Duration)

	// OnDispatchFailure is called when the pipeline rejects an action.
	OnDispatchFailure(actionType string, duration time.Duration)

	// OnRegistryChange is called after reducers or epics were injected or
	// removed, with the resulting totals.
	OnRegistryChange(reducers, epics int)
}

// NoOpStoreMetrics is a no-op implementation of StoreMetrics.
type NoOpStoreMetrics struct{}

func (NoOpStoreMetrics) OnDispatch(_ string, _ time.Duration)        {}
func (NoOpStoreMetrics) OnDispatchFailure(_ string, _ time.Duration) {}
func (NoOpStoreMetrics) OnRegistryChange(_, _ int)                   {}
