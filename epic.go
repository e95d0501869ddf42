package union

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// StateReader exposes the current state tree to epics.
type StateReader interface {
	State() State
}

// Epic maps the stream of dispatched actions to a stream of new actions.
// The actions channel is closed when the epic is removed or the store
// closes; the epic should close its output channel once ctx is done.
type Epic func(ctx context.Context, actions <-chan Action, state StateReader) <-chan Action

// Epics maps registry keys to epics.
type Epics map[string]Epic

type epicHost interface {
	StateReader
	Dispatch(ctx context.Context, action Action) error
}

// epicRunner drives one injected epic.
type epicRunner struct {
	key       string
	namespace string
	inbox     *mailbox
	cancel    context.CancelFunc
	done      chan struct{}
}

func startEpic(parent context.Context, host epicHost, key, namespace string, epic Epic) *epicRunner {
	ctx, cancel := context.WithCancel(parent)
	r := &epicRunner{
		key:       key,
		namespace: namespace,
		inbox:     newMailbox(ctx),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go r.run(ctx, host, epic)
	return r
}

// accepts reports whether a dispatched action should reach this epic.
func (r *epicRunner) accepts(a Action) bool {
	return FromNamespace(r.namespace, a)
}

func (r *epicRunner) run(ctx context.Context, host epicHost, epic Epic) {
	defer close(r.done)

	out := epic(ctx, r.inbox.out, host)
	if out == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-out:
			if !ok {
				return
			}
			if r.namespace != "" && a.Meta.Namespace == "" {
				a = a.WithNamespace(r.namespace)
			}
			if err := host.Dispatch(ctx, a); err != nil {
				capitan.Emit(ctx, EpicDispatchFailed,
					KeyKeys.Field(r.key),
					KeyActionType.Field(a.Type),
					KeyError.Field(err.Error()),
				)
			}
		}
	}
}

// OfType passes through actions whose type is one of types.
func OfType(ctx context.Context, in <-chan Action, types ...string) <-chan Action {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return Filter(ctx, in, func(a Action) bool {
		_, ok := set[a.Type]
		return ok
	})
}

// Filter passes through actions matching predicate.
func Filter(ctx context.Context, in <-chan Action, predicate func(Action) bool) <-chan Action {
	out := make(chan Action)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case a, ok := <-in:
				if !ok {
					return
				}
				if !predicate(a) {
					continue
				}
				select {
				case out <- a:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Debounce emits the latest action once no new action arrived for d.
// A pending action is flushed when in closes.
func Debounce(ctx context.Context, clock clockz.Clock, d time.Duration, in <-chan Action) <-chan Action {
	out := make(chan Action)
	go func() {
		defer close(out)

		var (
			timer      clockz.Timer
			pending    Action
			hasPending bool
		)

		emit := func() bool {
			select {
			case out <- pending:
				hasPending = false
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			var timerC <-chan time.Time
			if timer != nil {
				timerC = timer.C()
			}

			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case a, ok := <-in:
				if !ok {
					if hasPending {
						emit()
					}
					return
				}
				pending = a
				hasPending = true

				if timer == nil {
					timer = clock.NewTimer(d)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C():
						default:
						}
					}
					timer.Reset(d)
				}

			case <-timerC:
				if hasPending && !emit() {
					return
				}
			}
		}
	}()
	return out
}
