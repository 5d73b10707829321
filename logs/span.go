package logs

import "context"

// Span identifies one unit of work across log records, such as a remote
// request.
type Span string

type spanKey struct{}

var SpanKey spanKey

type componentKey struct{}

var ComponentKey componentKey

// WithComponent tags records logged with ctx with the component name.
func WithComponent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ComponentKey, name)
}
