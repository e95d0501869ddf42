package union

import "fmt"

// NamespacesKey is the top-level state key holding every namespace slice.
const NamespacesKey = "namespaces"

// StateByNamespace returns the slice of state owned by namespace. An empty
// namespace is the global case and yields nil. A namespace without a slice is
// a misconfiguration and returns ErrNamespaceNotFound.
func StateByNamespace(namespace string, state State) (any, error) {
	if namespace == "" {
		return nil, nil
	}
	tree, _ := state[NamespacesKey].(State)
	sub, ok := tree[namespace]
	if !ok {
		return nil, fmt.Errorf("%w: no local state found for namespace %q", ErrNamespaceNotFound, namespace)
	}
	return sub, nil
}

// StateByAction resolves the slice for the namespace the action is routed to.
func StateByAction(action Action, state State) (any, error) {
	return StateByNamespace(action.Meta.Namespace, state)
}

// FromNamespace reports whether action applies to namespace. Actions and
// namespaces that are empty apply everywhere.
func FromNamespace(namespace string, action Action) bool {
	if namespace == "" || action.Meta.Namespace == "" {
		return true
	}
	return namespace == action.Meta.Namespace
}
