package union

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

const reduceName pipz.Name = "reduce"

// Store holds the state tree shared by every mounted widget. Reducers and
// epics are injected and removed at runtime; the root reducer is rebuilt
// from the registry whenever it changed.
//
// All methods are safe for concurrent use. Reductions are serialised;
// subscribers and epics are notified after the state lock is released, so
// both may dispatch back into the store.
type Store struct {
	ctx      context.Context
	cancel   context.CancelFunc
	pipeline pipz.Chainable[Action]
	clock    clockz.Clock
	metrics  StoreMetrics

	mu       sync.Mutex
	registry *registry
	state    State
	closed   bool

	subMu   sync.RWMutex
	subs    map[uint64]func()
	nextSub uint64

	epicMu sync.RWMutex
	epics  map[string]*epicRunner
}

// NewStore creates an empty Store. Pipeline options (With*) wrap dispatch
// with middleware.
//
// Example:
//
//	store := union.NewStore(
//	    union.WithMiddleware(union.UseEffect("log", logFn)),
//	).InitialState(union.State{"session": session})
func NewStore(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		ctx:      ctx,
		cancel:   cancel,
		clock:    clockz.RealClock,
		metrics:  NoOpStoreMetrics{},
		registry: newRegistry(),
		state:    State{},
		subs:     make(map[uint64]func()),
		epics:    make(map[string]*epicRunner),
	}
	s.pipeline = buildPipeline(pipz.Apply(reduceName, s.reduce), opts)
	return s
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// InitialState replaces the current state tree. Keys without a reducer are
// dropped by the next reduction. Call before injecting reducers.
func (s *Store) InitialState(state State) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == nil {
		state = State{}
	}
	s.state = state
	return s
}

// Metrics sets a metrics provider receiving dispatch callbacks.
func (s *Store) Metrics(provider StoreMetrics) *Store {
	if provider != nil {
		s.metrics = provider
	}
	return s
}

// Clock sets the clock used to time dispatches.
func (s *Store) Clock(clock clockz.Clock) *Store {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// State returns the current state tree. The returned tree must be treated
// as immutable.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after every dispatch that changed the
// state. The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Dispatch runs action through the middleware pipeline and reduces it.
// Epics receive the action after subscribers were notified.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	if action.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAction)
	}
	if s.isClosed() {
		return ErrStoreClosed
	}

	start := s.clock.Now()
	if _, err := s.pipeline.Process(ctx, action); err != nil {
		capitan.Emit(ctx, StoreDispatchFailed,
			KeyActionType.Field(action.Type),
			KeyNamespace.Field(action.Meta.Namespace),
			KeyError.Field(err.Error()),
		)
		s.metrics.OnDispatchFailure(action.Type, s.clock.Since(start))
		return fmt.Errorf("dispatch %s: %w", action.Type, err)
	}
	return nil
}

// reduce is the terminal stage of the dispatch pipeline.
func (s *Store) reduce(ctx context.Context, action Action) (Action, error) {
	start := s.clock.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return action, ErrStoreClosed
	}
	prev := s.state
	next, _ := s.registry.rootReducer()(prev, action).(State)
	if next == nil {
		next = State{}
	}
	s.state = next
	// Queue for epics in reduction order; push never blocks.
	s.fanOut(action)
	s.mu.Unlock()

	if !sameValue(prev, next) {
		s.notify()
	}

	capitan.Emit(ctx, StoreDispatched,
		KeyActionType.Field(action.Type),
		KeyNamespace.Field(action.Meta.Namespace),
	)
	s.metrics.OnDispatch(action.Type, s.clock.Since(start))
	return action, nil
}

func (s *Store) notify() {
	s.subMu.RLock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) fanOut(action Action) {
	s.epicMu.RLock()
	defer s.epicMu.RUnlock()
	for _, r := range s.epics {
		if r.accepts(action) {
			r.inbox.push(action)
		}
	}
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// InjectReducers adds reducers to the registry under namespace, replacing
// entries with the same key, and reduces ActionReplace so new slices are
// initialised before it returns.
func (s *Store) InjectReducers(ctx context.Context, reducers Reducers, namespace string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	keys := s.registry.inject(namespace, reducers)
	s.mu.Unlock()

	capitan.Emit(ctx, StoreReducersInjected,
		KeyNamespace.Field(namespace),
		KeyKeys.Field(strings.Join(keys, ",")),
		KeyCount.Field(len(keys)),
	)
	s.registryChanged()
	return s.Dispatch(ctx, Action{Type: ActionReplace})
}

// RemoveReducers deletes keys from the registry under namespace. Their
// state slices disappear with the next reduction, which happens before it
// returns. Unknown keys are ignored.
func (s *Store) RemoveReducers(ctx context.Context, keys []string, namespace string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	removed := s.registry.remove(namespace, keys)
	s.mu.Unlock()

	capitan.Emit(ctx, StoreReducersRemoved,
		KeyNamespace.Field(namespace),
		KeyKeys.Field(strings.Join(keys, ",")),
		KeyCount.Field(removed),
	)
	s.registryChanged()
	if removed == 0 {
		return nil
	}
	return s.Dispatch(ctx, Action{Type: ActionReplace})
}

// InjectEpics starts every epic not already running. Epics injected with a
// namespace receive global actions and actions routed to that namespace;
// actions they emit without a namespace are routed to it.
func (s *Store) InjectEpics(ctx context.Context, epics Epics, namespace string) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	s.epicMu.Lock()
	started := make([]string, 0, len(epics))
	for key, epic := range epics {
		if _, running := s.epics[key]; running || epic == nil {
			continue
		}
		s.epics[key] = startEpic(s.ctx, s, key, namespace, epic)
		started = append(started, key)
	}
	s.epicMu.Unlock()

	sort.Strings(started)
	capitan.Emit(ctx, StoreEpicsInjected,
		KeyNamespace.Field(namespace),
		KeyKeys.Field(strings.Join(started, ",")),
		KeyCount.Field(len(started)),
	)
	s.registryChanged()
	return nil
}

// RemoveEpics cancels the epics registered under keys. It does not wait for
// them to finish. Unknown keys are ignored.
func (s *Store) RemoveEpics(ctx context.Context, keys []string) error {
	s.epicMu.Lock()
	removed := 0
	for _, key := range keys {
		r, ok := s.epics[key]
		if !ok {
			continue
		}
		r.cancel()
		delete(s.epics, key)
		removed++
	}
	s.epicMu.Unlock()

	capitan.Emit(ctx, StoreEpicsRemoved,
		KeyKeys.Field(strings.Join(keys, ",")),
		KeyCount.Field(removed),
	)
	s.registryChanged()
	return nil
}

// ReducerKeys returns the registry keys injected under namespace, sorted.
func (s *Store) ReducerKeys(namespace string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.keys(namespace)
}

// Namespaces returns every namespace that currently has reducers, sorted.
func (s *Store) Namespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.namespaces()
}

// EpicKeys returns the keys of all running epics, sorted.
func (s *Store) EpicKeys() []string {
	s.epicMu.RLock()
	defer s.epicMu.RUnlock()
	keys := make([]string, 0, len(s.epics))
	for key := range s.epics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) registryChanged() {
	reducers := 0
	s.mu.Lock()
	for _, entries := range s.registry.reducers {
		reducers += len(entries)
	}
	s.mu.Unlock()

	s.epicMu.RLock()
	epics := len(s.epics)
	s.epicMu.RUnlock()

	s.metrics.OnRegistryChange(reducers, epics)
}

// Close cancels every epic and waits for them to stop. Further dispatches
// and injections fail with ErrStoreClosed. Close must not be called from an
// epic or a subscriber.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	s.epicMu.Lock()
	runners := make([]*epicRunner, 0, len(s.epics))
	for _, r := range s.epics {
		runners = append(runners, r)
	}
	s.epics = make(map[string]*epicRunner)
	s.epicMu.Unlock()

	for _, r := range runners {
		<-r.done
	}
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
