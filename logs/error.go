package logs

import (
	"context"
	"errors"
	"fmt"
)

// WrapSpan annotates err with the span and component of ctx.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if v := ctx.Value(SpanKey); v != nil {
		err = errors.Join(err, fmt.Errorf("span: %s", v.(Span)))
	}
	if v := ctx.Value(ComponentKey); v != nil {
		err = errors.Join(err, fmt.Errorf("component: %s", v.(string)))
	}
	return err
}
