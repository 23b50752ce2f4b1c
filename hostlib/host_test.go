package hostlib_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/hostlib"
	"github.com/wippyai/cv-bridge/result"
)

func TestDispatch_UnknownSymbol(t *testing.T) {
	host := hostlib.New()
	defer host.Close()

	op := &boundary.Op{Namespace: "cv:nowhere", Name: "missing", Kind: boundary.KindFunction,
		Result: boundary.ShapeUnit}
	_, err := host.Dispatch(context.Background(), op, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown symbol")
	}
	var fault *result.Fault
	if !errors.As(err, &fault) || fault.Code != result.CodeBadFunc {
		t.Fatalf("got %v", err)
	}
}

func TestDispatch_WrongArgumentType(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	op := boundary.Default().Lookup("cv:core#mat.rows")
	if op == nil {
		t.Fatal("mat.rows is not registered")
	}
	r := boundary.Invoke[int32](ctx, host, op, "not a handle")
	if !r.IsErr() || r.Fault().Code != result.CodeBadArg {
		t.Fatalf("got %+v", r)
	}
}

// Every operation in the registry must have a host implementation. Zeroed
// arguments make most calls fault, which is fine; only a missing symbol is
// a defect here.
func TestDispatch_CoversRegistry(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	for _, op := range boundary.Default().Ops("") {
		op := op
		r := result.Of(func() any {
			v, err := host.Dispatch(ctx, op, make([]any, len(op.Params)))
			if err != nil {
				var fault *result.Fault
				if errors.As(err, &fault) {
					result.Raise(fault.Code, "%s", fault.Message)
				}
				result.Raise(result.CodeUnknown, "%v", err)
			}
			return v
		})
		if r.IsErr() && r.Fault().Code == result.CodeBadFunc {
			t.Errorf("no host implementation for %s", op.Symbol())
		}
	}
}

func TestDispatch_ConcurrentLifecycles(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m := cvcore.NewMatWithSize(ctx, host, 8, 8, cvcore.MatType8UC1).Must()
				c := m.Clone(ctx).Must()
				if c.Rows(ctx).Must() != 8 {
					panic("clone geometry mismatch")
				}
				c.Close(ctx)
				m.Close(ctx)
			}
		}()
	}
	wg.Wait()

	if n := host.Table().Len(); n != 0 {
		t.Fatalf("leaked %d handles", n)
	}
	host.Close()
}
