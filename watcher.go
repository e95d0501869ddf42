package union

import "context"

// Watcher supplies page documents. Watch must deliver the current document
// first so the initial widgets can be mounted, then one document per change.
// The returned channel closes when ctx ends or the source is exhausted.
type Watcher interface {
	Watch(ctx context.Context) (<-chan []byte, error)
}

// WatcherFunc adapts a function to Watcher.
type WatcherFunc func(ctx context.Context) (<-chan []byte, error)

// Watch calls f.
func (f WatcherFunc) Watch(ctx context.Context) (<-chan []byte, error) {
	return f(ctx)
}

// NewChannelWatcher relays documents pushed on ch, for pages rendered
// in-process. The relay stops when ch closes or ctx ends.
func NewChannelWatcher(ch <-chan []byte) Watcher {
	return WatcherFunc(func(ctx context.Context) (<-chan []byte, error) {
		out := make(chan []byte)
		go relay(ctx, ch, out)
		return out, nil
	})
}

// NewSyncChannelWatcher hands ch to the page unchanged. Pair it with
// Page.SyncMode so tests decide when each document is processed.
func NewSyncChannelWatcher(ch <-chan []byte) Watcher {
	return WatcherFunc(func(context.Context) (<-chan []byte, error) {
		return ch, nil
	})
}

// NewStaticWatcher serves a document that never changes. The channel stays
// open until ctx ends so the page keeps its widgets mounted.
func NewStaticWatcher(doc []byte) Watcher {
	return WatcherFunc(func(ctx context.Context) (<-chan []byte, error) {
		out := make(chan []byte, 1)
		out <- doc
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	})
}

func relay(ctx context.Context, in <-chan []byte, out chan<- []byte) {
	defer close(out)
	for {
		var doc []byte
		select {
		case <-ctx.Done():
			return
		case d, ok := <-in:
			if !ok {
				return
			}
			doc = d
		}

		select {
		case out <- doc:
		case <-ctx.Done():
			return
		}
	}
}
