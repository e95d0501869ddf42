package union

import (
	"reflect"
	"sort"
)

// State is a node of the store's state tree.
type State map[string]any

// Reducer computes the next state of one slice from its previous state and
// an action. It must not mutate prev; returning prev unchanged signals that
// nothing changed.
type Reducer func(prev any, action Action) any

// ReducerNode is either a Reducer or a nested Reducers map.
type ReducerNode interface {
	reducerNode()
}

// Reducers maps keys of a state tree to reducers or nested maps of them.
type Reducers map[string]ReducerNode

func (Reducer) reducerNode()  {}
func (Reducers) reducerNode() {}

// CombineReducers turns a possibly nested map of reducers into one reducer
// producing a State keyed like the map. Keys are reduced in sorted order. The
// previous state is returned unchanged unless a child produced a different
// value or the key set changed.
func CombineReducers(reducers Reducers) Reducer {
	if len(reducers) == 0 {
		return emptyReducer
	}

	keys := make([]string, 0, len(reducers))
	flat := make(map[string]Reducer, len(reducers))
	for key, node := range reducers {
		switch n := node.(type) {
		case Reducer:
			if n == nil {
				continue
			}
			flat[key] = n
		case Reducers:
			flat[key] = CombineReducers(n)
		default:
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return func(prev any, action Action) any {
		state, _ := prev.(State)
		next := make(State, len(keys))
		changed := false
		for _, key := range keys {
			before, had := state[key]
			after := flat[key](before, action)
			next[key] = after
			if !had || !sameValue(before, after) {
				changed = true
			}
		}
		if changed || state == nil || len(state) != len(keys) {
			return next
		}
		return state
	}
}

// MakeRootReducer strips mount ids from the registry keys and combines the
// result.
func MakeRootReducer(registry Reducers) Reducer {
	return CombineReducers(RemoveSuffixFromKeys(registry))
}

func emptyReducer(prev any, _ Action) any {
	if s, ok := prev.(State); ok && len(s) == 0 {
		return s
	}
	return State{}
}

// sameValue reports identity for reference kinds and equality for
// comparable values.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return safeEqual(a, b)
	}
	return false
}

// safeEqual compares values whose type is comparable but which may still
// hold incomparable interface fields.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
