package union

import "sort"

// registry holds every injected reducer keyed by namespace and suffixed key.
// The root reducer is rebuilt only when the registry changed since the last
// dispatch.
type registry struct {
	reducers map[string]Reducers
	root     Reducer
	dirty    bool
}

func newRegistry() *registry {
	return &registry{
		reducers: make(map[string]Reducers),
		dirty:    true,
	}
}

// inject adds reducers under namespace and returns the keys it set.
func (r *registry) inject(namespace string, reducers Reducers) []string {
	entries, ok := r.reducers[namespace]
	if !ok {
		entries = make(Reducers, len(reducers))
		r.reducers[namespace] = entries
	}
	keys := make([]string, 0, len(reducers))
	for key, node := range reducers {
		entries[key] = node
		keys = append(keys, key)
	}
	sort.Strings(keys)
	r.dirty = r.dirty || len(keys) > 0
	return keys
}

// remove deletes keys under namespace and returns how many were present.
func (r *registry) remove(namespace string, keys []string) int {
	entries, ok := r.reducers[namespace]
	if !ok {
		return 0
	}
	removed := 0
	for _, key := range keys {
		if _, ok := entries[key]; ok {
			delete(entries, key)
			removed++
		}
	}
	if len(entries) == 0 {
		delete(r.reducers, namespace)
	}
	r.dirty = r.dirty || removed > 0
	return removed
}

func (r *registry) keys(namespace string) []string {
	entries := r.reducers[namespace]
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *registry) namespaces() []string {
	out := make([]string, 0, len(r.reducers))
	for ns := range r.reducers {
		if ns != "" {
			out = append(out, ns)
		}
	}
	sort.Strings(out)
	return out
}

func (r *registry) rootReducer() Reducer {
	if r.dirty || r.root == nil {
		r.root = r.build()
		r.dirty = false
	}
	return r.root
}

// build lays global reducers at the top of the tree and every namespace
// under NamespacesKey.
func (r *registry) build() Reducer {
	tree := RemoveSuffixFromKeys(r.reducers[""])

	namespaces := make(Reducers)
	for ns, entries := range r.reducers {
		if ns == "" || len(entries) == 0 {
			continue
		}
		namespaces[ns] = scope(ns, RemoveSuffixFromKeys(entries))
	}
	if len(namespaces) > 0 {
		tree[NamespacesKey] = namespaces
	}
	return CombineReducers(tree)
}

// scope guards every leaf so it only reduces actions routed to namespace.
func scope(namespace string, reducers Reducers) Reducers {
	out := make(Reducers, len(reducers))
	for key, node := range reducers {
		switch n := node.(type) {
		case Reducers:
			out[key] = scope(namespace, n)
		case Reducer:
			if n == nil {
				continue
			}
			out[key] = Reducer(func(prev any, a Action) any {
				if !a.lifecycle() && a.Meta.Namespace != namespace {
					return prev
				}
				return n(prev, a)
			})
		}
	}
	return out
}
