package boundary

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/cv-bridge/result"
)

// Dispatcher executes one boundary operation against a native backend.
// Implementations may report faults either by returning an error or by
// panicking with *result.Fault; Invoke contains both.
type Dispatcher interface {
	Dispatch(ctx context.Context, op *Op, args []any) (any, error)
}

// Invoke runs one boundary operation and packages its outcome.
//
// This is the single place the result transport convention is implemented:
// the call executes synchronously on the calling thread inside exactly one
// recover scope, and any fault raised below it - no matter how many native
// calls the operation performs - becomes exactly one Err. Faults never
// unwind into the caller.
func Invoke[T any](ctx context.Context, d Dispatcher, op *Op, args ...any) (r result.Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = result.Err[T](result.From(rec))
		}
	}()

	raw, err := d.Dispatch(ctx, op, args)
	if err != nil {
		return result.Err[T](result.From(err))
	}

	value, ok := raw.(T)
	if !ok {
		if _, isUnit := any(value).(result.Unit); isUnit && raw == nil {
			// void-returning op dispatched through Invoke[Unit]
			return result.Ok(value)
		}
		return result.Err[T](result.Faultf(result.CodeInternal,
			"%s: dispatcher returned %T for result shape %s", op.Symbol(), raw, op.Result))
	}
	return result.Ok(value)
}

// Exec runs a void-returning boundary operation.
func Exec(ctx context.Context, d Dispatcher, op *Op, args ...any) result.Result[result.Unit] {
	return Invoke[result.Unit](ctx, d, op, args...)
}

// Destroy dispatches a destroy operation. Destroy calls return nothing and
// cannot fail; a fault here means the backend is already broken, so it is
// logged and swallowed rather than surfaced.
func Destroy(ctx context.Context, d Dispatcher, op *Op, h any) {
	if r := Exec(ctx, d, op, h); r.IsErr() {
		Logger().Warn("destroy operation faulted",
			zap.String("symbol", op.Symbol()),
			zap.Error(r.Fault()))
	}
}
