package union

import (
	"context"
	"sync"
)

// mailbox is an unbounded action queue feeding one epic. Pushing never
// blocks, so the store can fan out to an epic that is itself blocked on
// dispatching into the store.
type mailbox struct {
	mu     sync.Mutex
	queue  []Action
	signal chan struct{}
	out    chan Action
}

func newMailbox(ctx context.Context) *mailbox {
	m := &mailbox{
		signal: make(chan struct{}, 1),
		out:    make(chan Action),
	}
	go m.run(ctx)
	return m
}

func (m *mailbox) push(a Action) {
	m.mu.Lock()
	m.queue = append(m.queue, a)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) run(ctx context.Context) {
	defer close(m.out)
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-m.signal:
				continue
			}
		}
		next := m.queue[0]
		m.queue[0] = Action{}
		m.queue = m.queue[1:]
		m.mu.Unlock()

		select {
		case m.out <- next:
		case <-ctx.Done():
			return
		}
	}
}
