package linedesc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// BinaryDescriptorParams is an owned handle to a parameter block for
// BinaryDescriptor construction. Native defaults: 1 octave, band width 7,
// reduction ratio 2.
type BinaryDescriptorParams struct {
	d boundary.Dispatcher
	h handle.Handle
}

// NewBinaryDescriptorParams allocates a parameter block with native
// defaults.
func NewBinaryDescriptorParams(ctx context.Context, d boundary.Dispatcher) result.Result[*BinaryDescriptorParams] {
	r := boundary.Invoke[handle.Handle](ctx, d, opParamsNew)
	if r.IsErr() {
		return result.Err[*BinaryDescriptorParams](r.Fault())
	}
	return result.Ok(&BinaryDescriptorParams{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (p *BinaryDescriptorParams) Handle() handle.Handle { return p.h }

// NumOfOctaves reads the numOfOctave field.
func (p *BinaryDescriptorParams) NumOfOctaves(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, p.d, opParamsGetNumOfOctaves, p.h)
}

// SetNumOfOctaves writes the numOfOctave field.
func (p *BinaryDescriptorParams) SetNumOfOctaves(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, p.d, opParamsSetNumOfOctaves, p.h, v)
}

// WidthOfBand reads the widthOfBand field.
func (p *BinaryDescriptorParams) WidthOfBand(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, p.d, opParamsGetWidthOfBand, p.h)
}

// SetWidthOfBand writes the widthOfBand field.
func (p *BinaryDescriptorParams) SetWidthOfBand(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, p.d, opParamsSetWidthOfBand, p.h, v)
}

// ReductionRatio reads the reductionRatio field.
func (p *BinaryDescriptorParams) ReductionRatio(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, p.d, opParamsGetReductionRatio, p.h)
}

// SetReductionRatio writes the reductionRatio field.
func (p *BinaryDescriptorParams) SetReductionRatio(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, p.d, opParamsSetReductionRatio, p.h, v)
}

// KSize reads the ksize field.
func (p *BinaryDescriptorParams) KSize(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, p.d, opParamsGetKSize, p.h)
}

// SetKSize writes the ksize field.
func (p *BinaryDescriptorParams) SetKSize(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, p.d, opParamsSetKSize, p.h, v)
}

// Close releases the parameter block.
func (p *BinaryDescriptorParams) Close(ctx context.Context) {
	boundary.Destroy(ctx, p.d, opParamsDestroy, p.h)
	p.h = 0
}

// BinaryDescriptor computes binary descriptors for extracted lines.
// Instances from New are exclusively owned; instances from the Create
// factories carry shared ownership, and Close releases one reference.
type BinaryDescriptor struct {
	d boundary.Dispatcher
	h handle.Handle
}

// NewBinaryDescriptor constructs an exclusively owned descriptor from a
// parameter block (borrowed for the call).
func NewBinaryDescriptor(ctx context.Context, d boundary.Dispatcher, params *BinaryDescriptorParams) result.Result[*BinaryDescriptor] {
	return wrapBD(boundary.Invoke[handle.Handle](ctx, d, opBDNew, params.h), d)
}

// CreateBinaryDescriptor builds a shared descriptor with default
// parameters.
func CreateBinaryDescriptor(ctx context.Context, d boundary.Dispatcher) result.Result[*BinaryDescriptor] {
	return wrapBD(boundary.Invoke[handle.Handle](ctx, d, opBDCreate), d)
}

// CreateBinaryDescriptorWithParams builds a shared descriptor from a
// parameter block.
func CreateBinaryDescriptorWithParams(ctx context.Context, d boundary.Dispatcher, params *BinaryDescriptorParams) result.Result[*BinaryDescriptor] {
	return wrapBD(boundary.Invoke[handle.Handle](ctx, d, opBDCreateWithParams, params.h), d)
}

func wrapBD(r result.Result[handle.Handle], d boundary.Dispatcher) result.Result[*BinaryDescriptor] {
	if r.IsErr() {
		return result.Err[*BinaryDescriptor](r.Fault())
	}
	return result.Ok(&BinaryDescriptor{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (bd *BinaryDescriptor) Handle() handle.Handle { return bd.h }

// NumOfOctaves returns the octave count used for detection.
func (bd *BinaryDescriptor) NumOfOctaves(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDGetNumOfOctaves, bd.h)
}

// SetNumOfOctaves sets the octave count used for detection.
func (bd *BinaryDescriptor) SetNumOfOctaves(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, bd.d, opBDSetNumOfOctaves, bd.h, v)
}

// WidthOfBand returns the band width used for descriptor computation.
func (bd *BinaryDescriptor) WidthOfBand(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDGetWidthOfBand, bd.h)
}

// SetWidthOfBand sets the band width used for descriptor computation.
func (bd *BinaryDescriptor) SetWidthOfBand(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, bd.d, opBDSetWidthOfBand, bd.h, v)
}

// ReductionRatio returns the image reduction ratio between octaves.
func (bd *BinaryDescriptor) ReductionRatio(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDGetReductionRatio, bd.h)
}

// SetReductionRatio sets the image reduction ratio between octaves.
func (bd *BinaryDescriptor) SetReductionRatio(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, bd.d, opBDSetReductionRatio, bd.h, v)
}

// Detect extracts lines from image. mask may be nil.
func (bd *BinaryDescriptor) Detect(ctx context.Context, image, mask *cvcore.Mat) result.Result[[]KeyLine] {
	return boundary.Invoke[[]KeyLine](ctx, bd.d, opBDDetect, bd.h, image.Handle(), matHandle(mask))
}

// Compute produces a descriptor matrix for the given keylines. The
// returned Mat is owned by the caller.
func (bd *BinaryDescriptor) Compute(ctx context.Context, image *cvcore.Mat, keylines []KeyLine, returnFloat bool) result.Result[*cvcore.Mat] {
	r := boundary.Invoke[handle.Handle](ctx, bd.d, opBDCompute, bd.h, image.Handle(), keylines, returnFloat)
	if r.IsErr() {
		return result.Err[*cvcore.Mat](r.Fault())
	}
	return result.Ok(cvcore.WrapMat(bd.d, r.Value()))
}

// DescriptorSize returns the descriptor length in bytes.
func (bd *BinaryDescriptor) DescriptorSize(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDDescriptorSize, bd.h)
}

// DescriptorType returns the mat type of computed descriptors.
func (bd *BinaryDescriptor) DescriptorType(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDDescriptorType, bd.h)
}

// DefaultNorm returns the norm matching should use for these descriptors.
func (bd *BinaryDescriptor) DefaultNorm(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, bd.d, opBDDefaultNorm, bd.h)
}

// Close releases one ownership of the descriptor.
func (bd *BinaryDescriptor) Close(ctx context.Context) {
	boundary.Destroy(ctx, bd.d, opBDDestroy, bd.h)
	bd.h = 0
}

// matHandle tolerates a nil optional Mat argument.
func matHandle(m *cvcore.Mat) handle.Handle {
	if m == nil {
		return 0
	}
	return m.Handle()
}
