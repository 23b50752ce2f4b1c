// Package hostlib is the in-process reference backend. It implements every
// registered boundary operation against pure-Go stand-ins for the native
// objects, with the same handle ownership, validation and fault behavior a
// native build exhibits. It exists so the full surface can be exercised
// without a native runtime attached.
package hostlib

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// Type IDs for table entries.
const (
	typeMat uint32 = iota + 1
	typeParams
	typeBinaryDescriptor
	typeMatcher
	typeLSDDetector
	typeSLIC
	typeSEEDS
	typeLSC
	typeGuidedFilter
	typeDTFilter
	typeAMFilter
	typeRFFeatureGetter
	typeEdgeDetection
	typeGraphSegmentation
	typeFastLineDetector
)

// hostFunc executes one operation. Arguments arrive already typed per the
// op's declared shapes; faults are raised with result.Raise and converted
// to Err by the caller's recover scope.
type hostFunc func(ctx context.Context, args []any) any

// Host dispatches boundary operations against an in-process handle table.
type Host struct {
	table *handle.Table
	funcs map[string]hostFunc
}

// New creates a host with every operation area registered.
func New() *Host {
	h := &Host{
		table: handle.NewTable(),
		funcs: make(map[string]hostFunc),
	}
	h.register(h.coreFuncs())
	h.register(h.lineDescFuncs())
	h.register(h.ximgprocFuncs())
	return h
}

func (h *Host) register(funcs map[string]hostFunc) {
	for sym, fn := range funcs {
		h.funcs[sym] = fn
	}
}

// Table exposes the handle table, mainly for leak checks.
func (h *Host) Table() *handle.Table { return h.table }

// Close destroys all live handles.
func (h *Host) Close() error { return h.table.Close() }

// Dispatch implements boundary.Dispatcher. Borrowed handle arguments are
// pinned in the table for the duration of the call; faults raised by the
// operation unwind as *result.Fault panics into the caller's recover scope.
func (h *Host) Dispatch(ctx context.Context, op *boundary.Op, args []any) (any, error) {
	fn, ok := h.funcs[op.Symbol()]
	if !ok {
		return nil, result.Faultf(result.CodeBadFunc, "no host implementation for %s", op.Symbol())
	}

	Logger().Debug("dispatch", zap.String("symbol", op.Symbol()))

	for i, shape := range op.Params {
		if shape != boundary.ShapeHandle || i >= len(args) {
			continue
		}
		if hd, isHandle := args[i].(handle.Handle); isHandle && hd != 0 {
			if h.table.Borrow(hd) {
				defer h.table.Return(hd)
			}
		}
	}
	return fn(ctx, args), nil
}

// get fetches a table entry, faulting on stale or mistyped handles. A zero
// handle is the null receiver.
func (h *Host) get(hd handle.Handle, typeID uint32) any {
	if hd == 0 {
		result.Raise(result.CodeNullPtr, "null handle")
	}
	v, ok := h.table.GetTyped(hd, typeID)
	if !ok {
		result.Raise(result.CodeNullPtr, "invalid handle %d", hd)
	}
	return v
}

// remove releases one ownership of a handle; destroy ops tolerate stale
// handles but fault on type confusion via the table's type check upstream.
func (h *Host) remove(hd handle.Handle) {
	if hd == 0 {
		return
	}
	h.table.Remove(hd)
}

// Typed argument accessors. Shape mismatches are caller bugs on the Go side
// of the boundary, so they fault rather than crash.

func argHandle(args []any, i int) handle.Handle {
	if v, ok := args[i].(handle.Handle); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected handle, got %T", i, args[i])
	return 0
}

func argI32(args []any, i int) int32 {
	if v, ok := args[i].(int32); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected i32, got %T", i, args[i])
	return 0
}

func argF32(args []any, i int) float32 {
	if v, ok := args[i].(float32); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected f32, got %T", i, args[i])
	return 0
}

func argF64(args []any, i int) float64 {
	if v, ok := args[i].(float64); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected f64, got %T", i, args[i])
	return 0
}

func argBool(args []any, i int) bool {
	if v, ok := args[i].(bool); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected bool, got %T", i, args[i])
	return false
}

func argString(args []any, i int) string {
	if v, ok := args[i].(string); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected string, got %T", i, args[i])
	return ""
}

func argBytes(args []any, i int) []byte {
	if v, ok := args[i].([]byte); ok {
		return v
	}
	result.Raise(result.CodeBadArg, "argument %d: expected bytes, got %T", i, args[i])
	return nil
}
