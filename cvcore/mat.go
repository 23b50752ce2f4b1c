package cvcore

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// Namespace for the core value surface.
const Namespace = "cv:core"

var (
	opMatNew = boundary.MustOp(Namespace, "mat.new", boundary.KindConstructor,
		nil, boundary.ShapeOwnHandle)
	opMatNewWithSize = boundary.MustOp(Namespace, "mat.new-with-size", boundary.KindConstructor,
		[]boundary.Shape{boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opMatFromBytes = boundary.MustOp(Namespace, "mat.from-bytes", boundary.KindConstructor,
		[]boundary.Shape{boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeBytes}, boundary.ShapeOwnHandle)
	opMatRows = boundary.MustOp(Namespace, "mat.rows", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opMatCols = boundary.MustOp(Namespace, "mat.cols", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opMatType = boundary.MustOp(Namespace, "mat.mat-type", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opMatEmpty = boundary.MustOp(Namespace, "mat.empty", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeBool)
	opMatClone = boundary.MustOp(Namespace, "mat.clone", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opMatBytes = boundary.MustOp(Namespace, "mat.bytes", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeBytes)
	opMatDestroy = boundary.MustOp(Namespace, "mat.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)
)

// Mat is an owned handle to a native matrix. The pixel data belongs to the
// backend; this side only sees the handle.
type Mat struct {
	d boundary.Dispatcher
	h handle.Handle
}

// WrapMat adopts an already-owned handle, e.g. one returned by another
// operation's owning result.
func WrapMat(d boundary.Dispatcher, h handle.Handle) *Mat {
	return &Mat{d: d, h: h}
}

// Handle exposes the raw handle for passing as a borrowed argument.
func (m *Mat) Handle() handle.Handle { return m.h }

// NewMat constructs an empty matrix.
func NewMat(ctx context.Context, d boundary.Dispatcher) result.Result[*Mat] {
	return wrapOwned(boundary.Invoke[handle.Handle](ctx, d, opMatNew), d)
}

// NewMatWithSize constructs a rows x cols matrix of the given type.
func NewMatWithSize(ctx context.Context, d boundary.Dispatcher, rows, cols, matType int32) result.Result[*Mat] {
	return wrapOwned(boundary.Invoke[handle.Handle](ctx, d, opMatNewWithSize, rows, cols, matType), d)
}

// NewMatFromBytes constructs a matrix and copies in row-major pixel data.
func NewMatFromBytes(ctx context.Context, d boundary.Dispatcher, rows, cols, matType int32, data []byte) result.Result[*Mat] {
	return wrapOwned(boundary.Invoke[handle.Handle](ctx, d, opMatFromBytes, rows, cols, matType, data), d)
}

// Rows returns the row count.
func (m *Mat) Rows(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, m.d, opMatRows, m.h)
}

// Cols returns the column count.
func (m *Mat) Cols(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, m.d, opMatCols, m.h)
}

// Type returns the element type.
func (m *Mat) Type(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, m.d, opMatType, m.h)
}

// Empty reports whether the matrix has no elements.
func (m *Mat) Empty(ctx context.Context) result.Result[bool] {
	return boundary.Invoke[bool](ctx, m.d, opMatEmpty, m.h)
}

// Bytes copies out the row-major pixel data.
func (m *Mat) Bytes(ctx context.Context) result.Result[[]byte] {
	return boundary.Invoke[[]byte](ctx, m.d, opMatBytes, m.h)
}

// Clone returns a deep copy owned by the caller.
func (m *Mat) Clone(ctx context.Context) result.Result[*Mat] {
	return wrapOwned(boundary.Invoke[handle.Handle](ctx, m.d, opMatClone, m.h), m.d)
}

// Close releases the matrix. The handle is invalid afterward; Close must
// be called exactly once.
func (m *Mat) Close(ctx context.Context) {
	boundary.Destroy(ctx, m.d, opMatDestroy, m.h)
	m.h = 0
}

// wrapOwned lifts an owning-handle result into a *Mat result.
func wrapOwned(r result.Result[handle.Handle], d boundary.Dispatcher) result.Result[*Mat] {
	if r.IsErr() {
		return result.Err[*Mat](r.Fault())
	}
	return result.Ok(&Mat{d: d, h: r.Value()})
}
