package cache

import "context"

type storeKey struct{}

// WithStore returns a copy of ctx carrying s.
func WithStore(ctx context.Context, s Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the Store carried by ctx, or Nop when there is none.
func FromContext(ctx context.Context) Store {
	if s, ok := ctx.Value(storeKey{}).(Store); ok && s != nil {
		return s
	}
	return Nop{}
}
