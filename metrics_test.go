package union

import (
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnStateChange(PageLoading, PageHealthy)
	m.OnProcessSuccess(100 * time.Millisecond)
	m.OnProcessFailure("scan", 50*time.Millisecond)
	m.OnChangeReceived()
}

func TestNoOpStoreMetrics_DoesNotPanic(_ *testing.T) {
	var m NoOpStoreMetrics

	m.OnDispatch("INC", time.Millisecond)
	m.OnDispatchFailure("INC", time.Millisecond)
	m.OnRegistryChange(2, 1)
}
