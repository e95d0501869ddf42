package union

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFailureLog_Disabled(t *testing.T) {
	var l *failureLog = newFailureLog(0)
	if l != nil {
		t.Fatal("expected nil log for limit 0")
	}

	// Methods on a nil log are no-ops.
	l.record(Failure{Stage: "scan", Err: errors.New("x")})
	l.reset()
	if got := l.snapshot(); got != nil {
		t.Errorf("expected nil snapshot, got %v", got)
	}
}

func TestFailureLog_KeepsMostRecent(t *testing.T) {
	l := newFailureLog(2)
	at := time.Unix(0, 0)

	l.record(Failure{Stage: "scan", Err: errors.New("first"), At: at})
	l.record(Failure{Stage: "validate", Err: errors.New("second"), At: at.Add(time.Second)})
	l.record(Failure{Stage: "reconcile", Err: errors.New("third"), At: at.Add(2 * time.Second)})

	got := l.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(got))
	}
	if got[0].Stage != "validate" || got[1].Stage != "reconcile" {
		t.Errorf("expected oldest dropped, got %s, %s", got[0].Stage, got[1].Stage)
	}
	if !got[1].At.Equal(at.Add(2 * time.Second)) {
		t.Errorf("unexpected timestamp %v", got[1].At)
	}
}

func TestFailureLog_SnapshotIsCopy(t *testing.T) {
	l := newFailureLog(3)
	l.record(Failure{Stage: "scan"})

	snap := l.snapshot()
	snap[0].Stage = "mutated"

	if l.snapshot()[0].Stage != "scan" {
		t.Error("expected snapshot to be independent of the log")
	}
}

func TestFailureLog_Reset(t *testing.T) {
	l := newFailureLog(3)
	l.record(Failure{Stage: "scan"})
	l.record(Failure{Stage: "scan"})
	l.reset()

	if got := l.snapshot(); got != nil {
		t.Errorf("expected empty log after reset, got %v", got)
	}

	l.record(Failure{Stage: "validate"})
	if got := l.snapshot(); len(got) != 1 || got[0].Stage != "validate" {
		t.Errorf("expected log usable after reset, got %v", got)
	}
}

func TestFailureLog_Concurrent(t *testing.T) {
	l := newFailureLog(5)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.record(Failure{Stage: "scan"})
			_ = l.snapshot()
		}()
	}
	wg.Wait()

	if got := len(l.snapshot()); got != 5 {
		t.Errorf("expected log capped at 5, got %d", got)
	}
}
