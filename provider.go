package union

import "context"

type storeKey struct{}

type namespaceKey struct{}

// Provide returns a context carrying store for connected views below it.
func Provide(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// FromContext returns the store provided to ctx.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok && s != nil
}

// WithNamespace returns a context carrying the ambient widget namespace.
// Connect uses it when own props name no namespace.
func WithNamespace(ctx context.Context, namespace string) context.Context {
	return context.WithValue(ctx, namespaceKey{}, namespace)
}

// NamespaceFromContext returns the ambient widget namespace, or "".
func NamespaceFromContext(ctx context.Context) string {
	ns, _ := ctx.Value(namespaceKey{}).(string)
	return ns
}
