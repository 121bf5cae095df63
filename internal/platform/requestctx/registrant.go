// Package requestctx carries per-request identity values through context.
package requestctx

import "context"

// registrantIDContextKey is the context key for the authenticated registrant.
type registrantIDContextKey struct{}

// WithRegistrantID stores a registrant identifier in context.
func WithRegistrantID(ctx context.Context, registrantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, registrantIDContextKey{}, registrantID)
}

// RegistrantIDFromContext returns the registrant identifier stored in context.
func RegistrantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(registrantIDContextKey{}).(string)
	return value
}
