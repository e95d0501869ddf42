package union

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func counter(prev any, action Action) any {
	n, _ := prev.(int)
	switch action.Type {
	case "INC":
		return n + 1
	case "DEC":
		return n - 1
	}
	return n
}

func TestCombineReducers_Empty(t *testing.T) {
	r := CombineReducers(Reducers{})

	got := r(nil, Action{Type: "X"})
	state, ok := got.(State)
	if !ok || len(state) != 0 {
		t.Fatalf("expected empty State, got %#v", got)
	}
	if again := r(state, Action{Type: "X"}); !sameValue(state, again) {
		t.Error("expected empty state to be preserved")
	}
}

func TestCombineReducers_Flat(t *testing.T) {
	r := CombineReducers(Reducers{
		"a": Reducer(counter),
		"b": Reducer(counter),
	})

	state := r(nil, Action{Type: "INC"}).(State)
	if diff := cmp.Diff(State{"a": 1, "b": 1}, state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineReducers_PreservesIdentity(t *testing.T) {
	r := CombineReducers(Reducers{"a": Reducer(counter)})

	first := r(nil, Action{Type: "INC"}).(State)
	second := r(first, Action{Type: "NOOP"}).(State)
	if !sameValue(first, second) {
		t.Error("expected unchanged state to keep its identity")
	}

	third := r(second, Action{Type: "INC"}).(State)
	if sameValue(second, third) {
		t.Error("expected changed state to be a new tree")
	}
	if second["a"] != 1 {
		t.Errorf("expected previous state untouched, got %v", second["a"])
	}
}

func TestCombineReducers_Nested(t *testing.T) {
	r := CombineReducers(Reducers{
		"top": Reducer(counter),
		"group": Reducers{
			"inner": Reducer(counter),
		},
	})

	state := r(nil, Action{Type: "INC"}).(State)
	want := State{"top": 1, "group": State{"inner": 1}}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	group := state["group"].(State)
	next := r(state, Action{Type: "NOOP"}).(State)
	if !sameValue(group, next["group"]) {
		t.Error("expected nested state identity preserved")
	}
}

func TestCombineReducers_DropsUnknownKeys(t *testing.T) {
	r := CombineReducers(Reducers{"a": Reducer(counter)})

	got := r(State{"a": 2, "stale": true}, Action{Type: "NOOP"}).(State)
	if diff := cmp.Diff(State{"a": 2}, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineReducers_SkipsNilLeaves(t *testing.T) {
	r := CombineReducers(Reducers{"a": Reducer(counter), "b": Reducer(nil)})

	got := r(nil, Action{Type: "INC"}).(State)
	if diff := cmp.Diff(State{"a": 1}, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeRootReducer(t *testing.T) {
	r := MakeRootReducer(SuffixReducers(9, Reducers{"count": Reducer(counter)}))

	got := r(nil, Action{Type: "INC"}).(State)
	if diff := cmp.Diff(State{"count": 1}, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSameValue(t *testing.T) {
	m := map[string]int{"a": 1}
	s := []int{1, 2}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and value", nil, 1, false},
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"same map", m, m, true},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"strings", "x", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
