package union

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for document changes.
const DefaultDebounce = 100 * time.Millisecond

// Page watches a page document, scans it for widget placeholders and keeps
// one mounted widget per placeholder. Placeholders that disappear are
// unmounted; new ones are mounted from the Catalog.
//
// If a document fails to scan or validate, the widgets mounted for the
// previous document stay mounted and the Page enters a degraded state while
// it keeps watching. A failed reconcile is rolled back where the store
// allows it; Mounts always reports the widgets actually mounted.
type Page struct {
	watcher        Watcher
	store          MountTarget
	catalog        *Catalog
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	onStop         func(PageState)

	state     atomic.Int32
	current   atomic.Pointer[[]Descriptor]
	lastError atomic.Pointer[error]
	failures  *failureLog

	mu      sync.Mutex
	started bool

	mountMu sync.Mutex
	mounts  map[string]*pageMount

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// MountTarget is the store a Page mounts widgets into. Store implements it.
type MountTarget interface {
	Injector
	Dispatch(ctx context.Context, action Action) error
}

type pageMount struct {
	descriptor Descriptor
	mount      *Mount
}

// NewPage creates a Page mounting widgets from catalog into store.
//
// Example:
//
//	page := union.NewPage(
//	    union.NewFileWatcher("index.html"),
//	    store,
//	    catalog,
//	).Debounce(200 * time.Millisecond)
//
//	if err := page.Start(ctx); err != nil {
//	    log.Printf("initial document failed: %v", err)
//	}
func NewPage(watcher Watcher, store MountTarget, catalog *Catalog) *Page {
	p := &Page{
		watcher:  watcher,
		store:    store,
		catalog:  catalog,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    JSON,
		mounts:   make(map[string]*pageMount),
	}
	p.state.Store(int32(PageLoading))
	return p
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debounce sets the debounce duration for document changes.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (p *Page) Debounce(d time.Duration) *Page {
	p.debounce = d
	return p
}

// SyncMode enables synchronous processing for testing.
// In sync mode, documents are processed only through Process, without
// debouncing or goroutines. Must be called before Start().
func (p *Page) SyncMode() *Page {
	p.syncMode = true
	return p
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (p *Page) Clock(clock clockz.Clock) *Page {
	p.clock = clock
	return p
}

// Codec sets the default codec for placeholder data. Default: JSON.
// Must be called before Start().
func (p *Page) Codec(codec Codec) *Page {
	p.codec = codec
	return p
}

// StartupTimeout sets the maximum duration to wait for the first document.
// Default: no timeout. Must be called before Start().
func (p *Page) StartupTimeout(d time.Duration) *Page {
	p.startupTimeout = d
	return p
}

// Metrics sets a metrics provider. Must be called before Start().
func (p *Page) Metrics(provider MetricsProvider) *Page {
	p.metrics = provider
	return p
}

// OnStop sets a callback invoked with the final state when the Page stops
// watching. Must be called before Start().
func (p *Page) OnStop(fn func(PageState)) *Page {
	p.onStop = fn
	return p
}

// ErrorHistorySize sets the number of recent failures to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (p *Page) ErrorHistorySize(n int) *Page {
	p.failures = newFailureLog(n)
	return p
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// State returns the current state of the Page.
func (p *Page) State() PageState {
	return PageState(p.state.Load())
}

// Current returns the descriptors of the last reconciled document and true,
// or nil and false if no document has been reconciled.
func (p *Page) Current() ([]Descriptor, bool) {
	ptr := p.current.Load()
	if ptr == nil {
		return nil, false
	}
	return *ptr, true
}

// LastError returns the last error encountered, or nil if the last document
// was reconciled.
func (p *Page) LastError() error {
	ptr := p.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the errors of recent failures, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (p *Page) ErrorHistory() []error {
	failures := p.failures.snapshot()
	if failures == nil {
		return nil
	}
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f.Err
	}
	return errs
}

// Failures returns the recent failures with their stage and time, oldest
// first. Returns nil if error history is not enabled.
func (p *Page) Failures() []Failure {
	return p.failures.snapshot()
}

// Mounts returns the live widget mounts ordered by mount id.
func (p *Page) Mounts() []*Mount {
	p.mountMu.Lock()
	defer p.mountMu.Unlock()
	out := make([]*Mount, 0, len(p.mounts))
	for _, pm := range p.mounts {
		out = append(out, pm.mount)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start begins watching. It blocks until the first document is processed
// (success or failure), then continues watching asynchronously.
//
// If the first document fails, Start returns the error but keeps watching
// in the background for valid updates.
//
// In sync mode, Start only processes the first document. Use Process() to
// manually process subsequent documents.
//
// Start can only be called once. Subsequent calls return an error.
func (p *Page) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return fmt.Errorf("page already started")
	}
	p.started = true
	p.mu.Unlock()

	capitan.Emit(ctx, PageStarted,
		KeyDebounce.Field(p.debounce),
	)

	changes, err := p.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if p.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = p.clock.WithTimeout(ctx, p.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if p.startupTimeout > 0 && errors.Is(startupCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("startup timeout: watcher did not emit a document within %v", p.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("watcher closed before emitting a document")
		}
		p.received(ctx)
		initialErr = p.process(ctx, raw)
	}

	if p.syncMode {
		p.changes = changes
		return initialErr
	}

	go p.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next document from the watcher.
// It is only available in sync mode and is used for deterministic testing.
// Returns false if no document is available or the channel is closed.
func (p *Page) Process(ctx context.Context) bool {
	if !p.syncMode {
		return false
	}

	select {
	case raw, ok := <-p.changes:
		if !ok {
			return false
		}
		p.received(ctx)
		_ = p.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

// Close unmounts every widget the Page mounted. It does not stop the
// watcher; cancel the context passed to Start for that.
func (p *Page) Close(ctx context.Context) error {
	p.mountMu.Lock()
	defer p.mountMu.Unlock()

	var errs []error
	for _, key := range p.mountKeys() {
		if err := p.unmount(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Page) received(ctx context.Context) {
	capitan.Emit(ctx, PageChangeReceived)
	if p.metrics != nil {
		p.metrics.OnChangeReceived()
	}
}

// process scans, validates and reconciles a single document.
func (p *Page) process(ctx context.Context, raw []byte) error {
	start := p.clock.Now()
	oldState := p.State()

	descriptors, err := Scan(bytes.NewReader(raw), p.codec)
	if err != nil {
		p.fail(ctx, oldState, PageScanFailed, "scan", start, err)
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := p.validate(descriptors); err != nil {
		p.fail(ctx, oldState, PageValidationFailed, "validate", start, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := p.reconcile(ctx, descriptors); err != nil {
		p.fail(ctx, oldState, PageReconcileFailed, "reconcile", start, err)
		return fmt.Errorf("reconcile failed: %w", err)
	}

	p.current.Store(&descriptors)
	p.lastError.Store(nil)
	p.failures.reset()
	p.transitionState(ctx, oldState, PageHealthy)
	capitan.Emit(ctx, PageReconciled,
		KeyCount.Field(len(descriptors)),
		KeyDuration.Field(p.clock.Since(start)),
	)
	if p.metrics != nil {
		p.metrics.OnProcessSuccess(p.clock.Since(start))
	}
	return nil
}

func (p *Page) fail(ctx context.Context, oldState PageState, signal capitan.Signal, stage string, start time.Time, err error) {
	p.setError(stage, err)
	p.transitionState(ctx, oldState, p.failureState())
	capitan.Emit(ctx, signal,
		KeyError.Field(err.Error()),
	)
	if p.metrics != nil {
		p.metrics.OnProcessFailure(stage, p.clock.Since(start))
	}
}

// validate checks that every descriptor names a catalogued widget.
func (p *Page) validate(descriptors []Descriptor) error {
	var errs []error
	for _, d := range descriptors {
		if _, ok := p.catalog.Lookup(d.Widget); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownWidget, d.Widget))
		}
	}
	return errors.Join(errs...)
}

// reconcile brings the mounted widgets in line with descriptors: stale
// widgets are unmounted, new ones mounted in document order, and widgets
// whose data changed receive ActionWidgetUpdated. If any step fails the
// steps already applied are undone, so the previous widgets are restored
// where the store allows it. p.mounts always tracks what is mounted.
func (p *Page) reconcile(ctx context.Context, descriptors []Descriptor) error {
	p.mountMu.Lock()
	defer p.mountMu.Unlock()

	desired := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		desired[d.Key()] = d
	}

	var (
		errs    []error
		removed []*pageMount
		added   []string
		updated []Descriptor
	)

	for _, key := range p.mountKeys() {
		if _, keep := desired[key]; keep {
			continue
		}
		pm := p.mounts[key]
		if err := p.unmount(ctx, key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, pm)
	}

	for _, d := range descriptors {
		if errs != nil {
			break
		}
		pm, mounted := p.mounts[d.Key()]
		switch {
		case !mounted:
			err := p.mount(ctx, d)
			if _, tracked := p.mounts[d.Key()]; tracked {
				added = append(added, d.Key())
			}
			if err != nil {
				errs = append(errs, err)
			}
		case !cmp.Equal(pm.descriptor.Data, d.Data):
			old := pm.descriptor
			if err := p.update(ctx, pm, d); err != nil {
				errs = append(errs, err)
				continue
			}
			updated = append(updated, old)
		}
	}

	if errs == nil {
		return nil
	}

	// Roll back in reverse order.
	for i := len(updated) - 1; i >= 0; i-- {
		old := updated[i]
		if err := p.update(ctx, p.mounts[old.Key()], old); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	for i := len(added) - 1; i >= 0; i-- {
		if err := p.unmount(ctx, added[i]); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	for _, pm := range removed {
		if err := p.mount(ctx, pm.descriptor); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

// mount mounts the catalogued widget for d and hands it d. A widget that
// cannot be handed d is unmounted again. Callers hold mountMu.
func (p *Page) mount(ctx context.Context, d Descriptor) error {
	binder, ok := p.catalog.Lookup(d.Widget)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, d.Widget)
	}
	m, err := binder.Mount(ctx, p.store, d.Namespace)
	if err != nil {
		return fmt.Errorf("mount %s: %w", d.Widget, err)
	}

	mounted := Action{Type: ActionWidgetMounted, Payload: d}.WithNamespace(m.Namespace())
	if err := p.store.Dispatch(ctx, mounted); err != nil {
		err = fmt.Errorf("mount %s: %w", d.Widget, err)
		if uerr := m.Unmount(ctx); uerr != nil {
			// Still registered; keep tracking it.
			p.mounts[d.Key()] = &pageMount{descriptor: d, mount: m}
			return errors.Join(err, uerr)
		}
		return err
	}
	p.mounts[d.Key()] = &pageMount{descriptor: d, mount: m}
	return nil
}

// update hands a mounted widget its new descriptor. Callers hold mountMu.
func (p *Page) update(ctx context.Context, pm *pageMount, d Descriptor) error {
	updated := Action{Type: ActionWidgetUpdated, Payload: d}.WithNamespace(pm.mount.Namespace())
	if err := p.store.Dispatch(ctx, updated); err != nil {
		return fmt.Errorf("update %s: %w", d.Widget, err)
	}
	pm.descriptor = d
	return nil
}

// unmount tears down the widget mounted for key. The mount stays tracked
// until its Unmount succeeds. Callers hold mountMu.
func (p *Page) unmount(ctx context.Context, key string) error {
	pm, ok := p.mounts[key]
	if !ok {
		return nil
	}

	unmounted := Action{Type: ActionWidgetUnmounted, Payload: pm.descriptor}.WithNamespace(pm.mount.Namespace())
	dispatchErr := p.store.Dispatch(ctx, unmounted)
	if err := pm.mount.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount %s: %w", pm.descriptor.Widget, errors.Join(dispatchErr, err))
	}
	delete(p.mounts, key)
	if dispatchErr != nil {
		return fmt.Errorf("unmount %s: %w", pm.descriptor.Widget, dispatchErr)
	}
	return nil
}

func (p *Page) mountKeys() []string {
	keys := make([]string, 0, len(p.mounts))
	for key := range p.mounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// failureState returns the appropriate failure state based on whether
// a document has ever been reconciled.
func (p *Page) failureState() PageState {
	if p.current.Load() == nil {
		return PageEmpty
	}
	return PageDegraded
}

// transitionState updates the state and emits a state change event if changed.
func (p *Page) transitionState(ctx context.Context, oldState, newState PageState) {
	if oldState == newState {
		return
	}
	p.state.Store(int32(newState))
	capitan.Emit(ctx, PageStateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if p.metrics != nil {
		p.metrics.OnStateChange(oldState, newState)
	}
}

// setError stores err as the last error and records it as a failure of stage.
func (p *Page) setError(stage string, err error) {
	e := err
	p.lastError.Store(&e)
	p.failures.record(Failure{Stage: stage, Err: err, At: p.clock.Now()})
}

// watch processes documents from the watcher channel with debouncing.
func (p *Page) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		finalState := p.State()
		capitan.Emit(ctx, PageStopped,
			KeyState.Field(finalState.String()),
		)
		if p.onStop != nil {
			p.onStop(finalState)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

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

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = p.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			p.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = p.clock.NewTimer(p.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(p.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = p.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
