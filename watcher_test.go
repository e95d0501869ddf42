package union

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

// collect reads from ch until it closes or the deadline passes.
func collect(t *testing.T, ch <-chan []byte, timeout time.Duration) ([]string, bool) {
	t.Helper()
	var docs []string
	deadline := time.After(timeout)
	for {
		select {
		case doc, ok := <-ch:
			if !ok {
				return docs, true
			}
			docs = append(docs, string(doc))
		case <-deadline:
			return docs, false
		}
	}
}

func TestChannelWatcher_RelaysUntilSourceCloses(t *testing.T) {
	source := make(chan []byte, 3)
	source <- []byte("one")
	source <- []byte("two")
	close(source)

	out, err := NewChannelWatcher(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	docs, closed := collect(t, out, time.Second)
	if !closed {
		t.Fatal("expected relay to close with its source")
	}
	if diff := cmp.Diff([]string{"one", "two"}, docs); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelWatcher_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	tests := []struct {
		name string
		feed bool
	}{
		{"waiting for source", false},
		{"blocked on send", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := make(chan []byte, 1)
			if tt.feed {
				source <- []byte("unread")
			}

			ctx, cancel := context.WithCancel(context.Background())
			out, err := NewChannelWatcher(source).Watch(ctx)
			if err != nil {
				t.Fatalf("Watch failed: %v", err)
			}
			if tt.feed {
				// Let the relay pick the document up and block on out.
				time.Sleep(10 * time.Millisecond)
			}
			cancel()

			// The pending document may or may not be delivered; the
			// channel must close either way.
			if _, closed := collect(t, out, time.Second); !closed {
				t.Fatal("expected relay to close after cancel")
			}
		})
	}
}

func TestSyncChannelWatcher_ReturnsSource(t *testing.T) {
	source := make(chan []byte, 1)
	out, err := NewSyncChannelWatcher(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	source <- []byte("direct")
	select {
	case doc := <-out:
		if string(doc) != "direct" {
			t.Errorf("expected 'direct', got %q", doc)
		}
	default:
		t.Fatal("expected the source channel itself")
	}
}

func TestStaticWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out, err := NewStaticWatcher([]byte("page")).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	docs, closed := collect(t, out, 20*time.Millisecond)
	if closed {
		t.Fatal("expected channel open while ctx is live")
	}
	if diff := cmp.Diff([]string{"page"}, docs); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}

	cancel()
	if _, closed := collect(t, out, time.Second); !closed {
		t.Error("expected channel closed after cancel")
	}
}

func TestStaticWatcher_MountsPage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewStore()
	defer s.Close()

	doc := []byte(`<div data-union-widget="counter" data-union-namespace="a"></div>`)
	page := NewPage(NewStaticWatcher(doc), s, testCatalog(t))
	if err := page.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer page.Close(context.Background())

	if diff := cmp.Diff([]string{"a"}, s.Namespaces()); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}
}
