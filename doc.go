// Package union wires namespaced, dynamically registered state into
// independently mounted widgets that share one store.
//
// A page document marks widget placeholders with data attributes:
//
//	<script type="application/json"
//	        data-union-widget="counter"
//	        data-union-namespace="w1">{"start": 3}</script>
//
// Every placeholder mounts a catalogued widget. A mounted widget contributes
// its reducers and epics to the shared Store for as long as it is mounted and
// retracts them when it goes away.
//
// # Store
//
// The Store holds one state tree. Global reducers sit at the top of the
// tree; reducers injected with a namespace live under
// state["namespaces"][namespace] and only see actions routed to that
// namespace:
//
//	store := union.NewStore()
//	store.InjectReducers(ctx, union.Reducers{"count": union.Reducer(count)}, "w1")
//	store.Dispatch(ctx, union.Action{Type: "INC"}.WithNamespace("w1"))
//
//	local, _ := union.StateByNamespace("w1", store.State())
//
// Dispatch runs through a pipz pipeline, so middleware is added with
// WithMiddleware and the Use* processors.
//
// # Widgets
//
// WithRedux returns a Binder. Each Mount gets a fresh id from a monotonic
// counter and registers the widget's reducers and epics under keys suffixed
// with that id ("count__id:7"), so several instances of one widget, and a
// widget remounted before its predecessor unmounted, never collide:
//
//	counter := union.WithRedux(union.Config{
//	    Reducers: union.Reducers{"count": union.Reducer(count)},
//	    Epics:    union.Epics{"autosave": autosave},
//	})
//	mount, _ := counter.Mount(ctx, store, "w1")
//	defer mount.Unmount(ctx)
//
// # Connect
//
// NamespacedConnect maps the widget's own slice to props and routes every
// dispatched action to the widget namespace:
//
//	connector, _ := union.NamespacedConnect(
//	    func(local any, _ union.Props, _ union.State) any {
//	        return union.Props{"count": local.(union.State)["count"]}
//	    },
//	    union.ActionCreators{"inc": func(...any) union.Action { return union.Action{Type: "INC"} }},
//	    nil,
//	)
//	view, _ := connector.Connect(ctx, store, union.Props{"namespace": "w1"})
//
// # Page
//
// Page watches a document through a Watcher, scans it and keeps the mounted
// widgets in line with the placeholders. It follows a loading, healthy,
// degraded, empty state machine; a bad document leaves the previous widgets
// mounted.
//
// # Observability
//
// Every operation emits capitan signals (see signals.go) carrying the field
// keys in fields.go. Hook them to log or audit:
//
//	capitan.Hook(union.WidgetMounted, func(_ context.Context, e *capitan.Event) {
//	    ns, _ := union.KeyNamespace.From(e)
//	    log.Printf("widget mounted in %s", ns)
//	})
package union
