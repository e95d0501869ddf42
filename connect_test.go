package union

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/capitan"
)

func mountedCounter(t *testing.T, namespaces ...string) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	t.Cleanup(func() { _ = s.Close() })
	w := WithRedux(Config{Reducers: Reducers{"count": Reducer(counter)}}).IDs(&Counter{})
	for _, ns := range namespaces {
		if _, err := w.Mount(ctx, s, ns); err != nil {
			t.Fatalf("Mount(%q) failed: %v", ns, err)
		}
	}
	return s
}

func mapCount(local any, _ Props, _ State) any {
	return Props{"count": local.(State)["count"]}
}

func TestConnect_MapStateUsesLocalSlice(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a", "b")
	_ = s.Dispatch(ctx, Action{Type: "INC"}.WithNamespace("b"))

	c, err := NamespacedConnect(mapCount, nil, nil)
	if err != nil {
		t.Fatalf("NamespacedConnect failed: %v", err)
	}
	v, err := c.Connect(ctx, s, Props{NamespaceProp: "b", "label": "B"})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	props, err := v.Props()
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props["count"] != 1 {
		t.Errorf("expected count 1, got %v", props["count"])
	}
	if props["label"] != "B" {
		t.Errorf("expected own props kept, got %v", props["label"])
	}
	if _, ok := props[DispatchProp].(Dispatch); !ok {
		t.Errorf("expected default dispatch prop, got %T", props[DispatchProp])
	}
}

func TestConnect_DispatchIsNamespaced(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a", "b")

	c, _ := NamespacedConnect(mapCount, nil, nil)
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a"})

	props, _ := v.Props()
	dispatch := props[DispatchProp].(Dispatch)
	if err := dispatch(ctx, Action{Type: "INC"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	// An explicit namespace is overridden by the view's.
	_ = v.Dispatch(ctx, Action{Type: "INC"}.WithNamespace("b"))

	if got := localCount(t, s, "a"); got != 2 {
		t.Errorf("expected a=2, got %v", got)
	}
	if got := localCount(t, s, "b"); got != 0 {
		t.Errorf("expected b untouched, got %v", got)
	}
}

func TestConnect_ActionCreators(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a")

	c, err := NamespacedConnect(mapCount, ActionCreators{
		"increment": func(...any) Action { return Action{Type: "INC"} },
	}, nil)
	if err != nil {
		t.Fatalf("NamespacedConnect failed: %v", err)
	}
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a"})

	props, _ := v.Props()
	inc, ok := props["increment"].(BoundActionCreator)
	if !ok {
		t.Fatalf("expected bound action creator, got %T", props["increment"])
	}
	_ = inc(ctx)

	if got := localCount(t, s, "a"); got != 1 {
		t.Errorf("expected a=1, got %v", got)
	}
}

func TestConnect_MapDispatchFunc(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a")

	mapDispatch := func(dispatch Dispatch, own Props) Props {
		return Props{"onClick": func() error { return dispatch(ctx, Action{Type: "INC"}) }}
	}
	c, err := NamespacedConnect(nil, mapDispatch, nil)
	if err != nil {
		t.Fatalf("NamespacedConnect failed: %v", err)
	}
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a"})

	props, _ := v.Props()
	_ = props["onClick"].(func() error)()
	if got := localCount(t, s, "a"); got != 1 {
		t.Errorf("expected a=1, got %v", got)
	}
}

func TestConnect_InvalidMapDispatch(t *testing.T) {
	for _, md := range []any{42, "dispatch", func() {}} {
		if _, err := NamespacedConnect(nil, md, nil); !errors.Is(err, ErrInvalidMapDispatch) {
			t.Errorf("NamespacedConnect(%T) = %v, want ErrInvalidMapDispatch", md, err)
		}
	}
}

func TestConnect_MergeProps(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a")

	c, _ := NamespacedConnect(mapCount, nil, func(state, _, own Props) any {
		return Props{"summary": fmt.Sprintf("%s:%v", own["label"], state["count"])}
	})
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a", "label": "a"})

	props, err := v.Props()
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props["summary"] != "a:0" {
		t.Errorf("expected merged summary, got %v", props)
	}
	if _, ok := props[DispatchProp]; ok {
		t.Error("expected merge to control the full prop set")
	}
}

func TestConnect_InvalidMapStateResult(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a")

	var emitted atomic.Int32
	capitan.Hook(ConnectInvalidProps, func(_ context.Context, e *capitan.Event) {
		if fn, ok := KeyFunction.From(e); ok && fn == "mapStateToProps" {
			emitted.Add(1)
		}
	})

	c, _ := NamespacedConnect(func(any, Props, State) any { return 7 }, nil, nil)
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a"})

	props, err := v.Props()
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if _, ok := props["count"]; ok {
		t.Error("expected no state props")
	}
	waitFor(t, func() bool { return emitted.Load() > 0 })
}

func TestConnect_NamespaceFromContext(t *testing.T) {
	s := mountedCounter(t, "a")
	ctx := WithNamespace(context.Background(), "a")

	c, _ := NamespacedConnect(mapCount, nil, nil)
	v, err := c.Connect(ctx, s, nil)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if v.Namespace() != "a" {
		t.Errorf("expected namespace from context, got %q", v.Namespace())
	}
	props, err := v.Props()
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props[NamespaceProp] != "a" {
		t.Errorf("expected namespace prop, got %v", props[NamespaceProp])
	}
}

func TestConnect_MissingNamespace(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a")

	c, _ := NamespacedConnect(mapCount, nil, nil)
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "nope"})

	if _, err := v.Props(); !errors.Is(err, ErrNamespaceNotFound) {
		t.Errorf("expected ErrNamespaceNotFound, got %v", err)
	}
}

func TestConnect_StoreFromContext(t *testing.T) {
	s := mountedCounter(t, "a")
	ctx := Provide(context.Background(), s)

	c, _ := NamespacedConnect(mapCount, nil, nil)
	v, err := c.Connect(ctx, nil, Props{NamespaceProp: "a"})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	_ = v.Dispatch(ctx, Action{Type: "INC"})
	if got := localCount(t, s, "a"); got != 1 {
		t.Errorf("expected a=1, got %v", got)
	}

	if _, err := c.Connect(context.Background(), nil, nil); !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
}

func TestView_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := mountedCounter(t, "a", "b")

	c, _ := NamespacedConnect(mapCount, nil, nil)
	v, _ := c.Connect(ctx, s, Props{NamespaceProp: "a"})

	var last atomic.Value
	v.Subscribe(func(p Props, err error) {
		if err == nil {
			last.Store(p["count"])
		}
	})

	_ = v.Dispatch(ctx, Action{Type: "INC"})
	if got := last.Load(); got != 1 {
		t.Errorf("expected subscriber to see count 1, got %v", got)
	}

	v.Close()
	_ = v.Dispatch(ctx, Action{Type: "INC"})
	if got := last.Load(); got != 1 {
		t.Errorf("expected no updates after Close, got %v", got)
	}
}
