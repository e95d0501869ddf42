package union

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zoobzio/capitan"
)

// Injector is the registry contract a Binder mounts widgets into. Store
// implements it.
type Injector interface {
	InjectReducers(ctx context.Context, reducers Reducers, namespace string) error
	InjectEpics(ctx context.Context, epics Epics, namespace string) error
	RemoveReducers(ctx context.Context, keys []string, namespace string) error
	RemoveEpics(ctx context.Context, keys []string) error
}

// Config declares what a widget contributes to the shared store.
type Config struct {
	// Name labels the widget in signals.
	Name string

	// Epics run for as long as the widget is mounted.
	Epics Epics

	// Reducers own the widget's slice of state.
	Reducers Reducers

	// PersistReducers keeps the reducers (and their state) registered after
	// the widget unmounts. Epics are always removed.
	PersistReducers bool

	// Global registers the widget at the top of the state tree and ignores
	// any namespace it is mounted with.
	Global bool
}

// Binder attaches a widget's reducers and epics to a store for the lifetime
// of each mount. Every mount gets a fresh id, so the same widget can be
// mounted many times, and remounted, without key collisions.
type Binder struct {
	cfg Config
	ids IDGenerator
}

// WithRedux creates a Binder for cfg.
//
// Example:
//
//	counter := union.WithRedux(union.Config{
//	    Reducers: union.Reducers{"count": union.Reducer(countReducer)},
//	})
//	mount, err := counter.Mount(ctx, store, "w1")
//	defer mount.Unmount(ctx)
func WithRedux(cfg Config) *Binder {
	return &Binder{cfg: cfg, ids: mountIDs}
}

// IDs sets the generator used for mount ids. By default all Binders share
// one process-wide counter.
func (b *Binder) IDs(ids IDGenerator) *Binder {
	if ids != nil {
		b.ids = ids
	}
	return b
}

// Config returns the widget configuration.
func (b *Binder) Config() Config {
	return b.cfg
}

// Mount assigns a new id, then injects the widget's reducers and epics with
// keys suffixed by that id. If the epics cannot be injected the reducers are
// removed again.
func (b *Binder) Mount(ctx context.Context, store Injector, namespace string) (*Mount, error) {
	id := b.ids.Next()
	if b.cfg.Global {
		namespace = ""
	}

	m := &Mount{
		id:        id,
		widget:    b.cfg.Name,
		namespace: namespace,
		store:     store,
		persist:   b.cfg.PersistReducers,
		reducers:  SuffixReducers(id, b.cfg.Reducers),
		epics:     SuffixEpics(id, b.cfg.Epics),
	}

	if err := store.InjectReducers(ctx, m.reducers, namespace); err != nil {
		return nil, fmt.Errorf("mount %d: inject reducers: %w", id, err)
	}
	if err := store.InjectEpics(ctx, m.epics, namespace); err != nil {
		rollback := store.RemoveReducers(ctx, m.ReducerKeys(), namespace)
		return nil, errors.Join(fmt.Errorf("mount %d: inject epics: %w", id, err), rollback)
	}

	capitan.Emit(ctx, WidgetMounted,
		KeyWidget.Field(m.widget),
		KeyMountID.Field(int(id)),
		KeyNamespace.Field(namespace),
		KeyCount.Field(len(m.reducers)+len(m.epics)),
	)
	return m, nil
}

// Mount is one mounted instance of a widget.
type Mount struct {
	id        uint64
	widget    string
	namespace string
	store     Injector
	persist   bool
	reducers  Reducers
	epics     Epics

	mu        sync.Mutex
	unmounted bool
}

// ID returns the mount id.
func (m *Mount) ID() uint64 {
	return m.id
}

// Namespace returns the namespace the widget was registered under. Global
// widgets return "".
func (m *Mount) Namespace() string {
	return m.namespace
}

// ReducerKeys returns the suffixed top-level reducer keys, sorted.
func (m *Mount) ReducerKeys() []string {
	keys := make([]string, 0, len(m.reducers))
	for key := range m.reducers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EpicKeys returns the suffixed epic keys, sorted.
func (m *Mount) EpicKeys() []string {
	keys := make([]string, 0, len(m.epics))
	for key := range m.epics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Unmounted reports whether Unmount has completed.
func (m *Mount) Unmounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmounted
}

// Unmount removes the widget's reducers, unless they persist, and always
// removes its epics. Once it succeeds, calling it again is a no-op; after a
// failure it can be retried.
func (m *Mount) Unmount(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unmounted {
		return nil
	}

	var errs []error
	if !m.persist {
		if err := m.store.RemoveReducers(ctx, m.ReducerKeys(), m.namespace); err != nil {
			errs = append(errs, fmt.Errorf("mount %d: remove reducers: %w", m.id, err))
		}
	}
	if err := m.store.RemoveEpics(ctx, m.EpicKeys()); err != nil {
		errs = append(errs, fmt.Errorf("mount %d: remove epics: %w", m.id, err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.unmounted = true

	capitan.Emit(ctx, WidgetUnmounted,
		KeyWidget.Field(m.widget),
		KeyMountID.Field(int(m.id)),
		KeyNamespace.Field(m.namespace),
	)
	return nil
}
