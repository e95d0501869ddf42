package union

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
)

// Props are the values a connected view hands to its widget.
type Props map[string]any

// NamespaceProp is the own-props key naming the widget namespace.
const NamespaceProp = "namespace"

// DispatchProp is the props key holding the dispatch function when no
// mapDispatchToProps is given.
const DispatchProp = "dispatch"

// Dispatch sends an action to the store.
type Dispatch func(ctx context.Context, action Action) error

// MapStateFunc derives props from the widget's namespace slice. It also
// receives the own props and the full state tree. Returning anything other
// than Props emits ConnectInvalidProps and yields no props.
type MapStateFunc func(local any, own Props, global State) any

// MapDispatchFunc derives props from a dispatch that routes every action to
// the widget namespace.
type MapDispatchFunc func(dispatch Dispatch, own Props) Props

// MergePropsFunc combines state, dispatch and own props. Without one, own
// props are overlaid with state props, then dispatch props.
type MergePropsFunc func(stateProps, dispatchProps, own Props) any

// ActionCreator builds an action from arguments.
type ActionCreator func(args ...any) Action

// ActionCreators maps prop names to action creators. Each one is bound to
// the namespaced dispatch and exposed as a BoundActionCreator.
type ActionCreators map[string]ActionCreator

// BoundActionCreator builds an action and dispatches it into the widget namespace.
type BoundActionCreator func(ctx context.Context, args ...any) error

// Connectable is the part of a store connected views use. Store implements it.
type Connectable interface {
	State() State
	Dispatch(ctx context.Context, action Action) error
	Subscribe(fn func()) func()
}

// Connector binds state and dispatch mapping to widget namespaces.
type Connector struct {
	mapState    MapStateFunc
	mapDispatch MapDispatchFunc
	merge       MergePropsFunc
}

// NamespacedConnect builds a Connector. mapDispatch must be nil, a
// MapDispatchFunc (or a plain function of that shape) or ActionCreators;
// anything else fails with ErrInvalidMapDispatch.
func NamespacedConnect(mapState MapStateFunc, mapDispatch any, merge MergePropsFunc) (*Connector, error) {
	c := &Connector{mapState: mapState, merge: merge}

	switch md := mapDispatch.(type) {
	case nil:
		c.mapDispatch = defaultMapDispatch
	case MapDispatchFunc:
		c.mapDispatch = md
	case func(Dispatch, Props) Props:
		c.mapDispatch = md
	case ActionCreators:
		c.mapDispatch = bindActionCreators(md)
	case map[string]ActionCreator:
		c.mapDispatch = bindActionCreators(md)
	default:
		return nil, fmt.Errorf("%w: expected a function or ActionCreators, got %T", ErrInvalidMapDispatch, mapDispatch)
	}
	if c.mapDispatch == nil {
		c.mapDispatch = defaultMapDispatch
	}
	return c, nil
}

func defaultMapDispatch(dispatch Dispatch, _ Props) Props {
	return Props{DispatchProp: dispatch}
}

func bindActionCreators(creators map[string]ActionCreator) MapDispatchFunc {
	return func(dispatch Dispatch, _ Props) Props {
		props := make(Props, len(creators))
		for name, create := range creators {
			if create == nil {
				continue
			}
			props[name] = BoundActionCreator(func(ctx context.Context, args ...any) error {
				return dispatch(ctx, create(args...))
			})
		}
		return props
	}
}

// namespaced returns a dispatch that routes every action to namespace.
func namespaced(store Connectable, namespace string) Dispatch {
	return func(ctx context.Context, action Action) error {
		return store.Dispatch(ctx, action.WithNamespace(namespace))
	}
}

// Connect creates a view of store for one widget. The namespace comes from
// own["namespace"], falling back to the ambient namespace carried by ctx.
// A nil store is looked up with FromContext.
func (c *Connector) Connect(ctx context.Context, store Connectable, own Props) (*View, error) {
	if store == nil {
		s, ok := FromContext(ctx)
		if !ok {
			return nil, ErrNoStore
		}
		store = s
	}

	props := make(Props, len(own)+1)
	for k, v := range own {
		props[k] = v
	}
	namespace, _ := props[NamespaceProp].(string)
	if namespace == "" {
		namespace = NamespaceFromContext(ctx)
	}
	if namespace != "" {
		props[NamespaceProp] = namespace
	}

	dispatch := namespaced(store, namespace)
	v := &View{
		connector: c,
		store:     store,
		own:       props,
		namespace: namespace,
		dispatch:  dispatch,
	}
	v.dispatchProps = c.mapDispatch(dispatch, props)
	if v.dispatchProps == nil {
		v.dispatchProps = Props{}
	}
	return v, nil
}

// View is a connected widget instance.
type View struct {
	connector     *Connector
	store         Connectable
	own           Props
	namespace     string
	dispatch      Dispatch
	dispatchProps Props

	mu     sync.Mutex
	unsubs []func()
}

// Namespace returns the namespace the view is bound to.
func (v *View) Namespace() string {
	return v.namespace
}

// Dispatch routes action to the view's namespace.
func (v *View) Dispatch(ctx context.Context, action Action) error {
	return v.dispatch(ctx, action)
}

// Props computes the current props. It fails with ErrNamespaceNotFound if
// the namespace has no state slice.
func (v *View) Props() (Props, error) {
	global := v.store.State()
	local, err := StateByNamespace(v.namespace, global)
	if err != nil {
		return nil, err
	}

	stateProps := Props{}
	if v.connector.mapState != nil {
		stateProps = v.asProps(v.connector.mapState(local, v.own, global), "mapStateToProps")
	}

	if v.connector.merge != nil {
		return v.asProps(v.connector.merge(stateProps, v.dispatchProps, v.own), "mergeProps"), nil
	}

	merged := make(Props, len(v.own)+len(stateProps)+len(v.dispatchProps))
	for k, val := range v.own {
		merged[k] = val
	}
	for k, val := range stateProps {
		merged[k] = val
	}
	for k, val := range v.dispatchProps {
		merged[k] = val
	}
	return merged, nil
}

func (v *View) asProps(result any, function string) Props {
	switch p := result.(type) {
	case Props:
		if p == nil {
			return Props{}
		}
		return p
	case map[string]any:
		return Props(p)
	}
	capitan.Emit(context.Background(), ConnectInvalidProps,
		KeyFunction.Field(function),
		KeyNamespace.Field(v.namespace),
		KeyError.Field(fmt.Sprintf("expected Props, got %T", result)),
	)
	return Props{}
}

// Subscribe calls fn with freshly computed props whenever the store state
// changes. The returned function unsubscribes; Close unsubscribes all.
func (v *View) Subscribe(fn func(Props, error)) func() {
	unsub := v.store.Subscribe(func() {
		fn(v.Props())
	})
	v.mu.Lock()
	v.unsubs = append(v.unsubs, unsub)
	v.mu.Unlock()
	return unsub
}

// Close removes every subscription made through the view.
func (v *View) Close() {
	v.mu.Lock()
	unsubs := v.unsubs
	v.unsubs = nil
	v.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
