package ximgproc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// Namespace for the extended image-processing surface.
const Namespace = "cv:ximgproc"

// SuperpixelSLIC algorithm variants.
const (
	SLIC  int32 = 100
	SLICO int32 = 101
	MSLIC int32 = 102
)

var (
	opSLICCreate = boundary.MustOp(Namespace, "superpixel-slic.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeF32}, boundary.ShapeOwnHandle)
	opSLICIterate = boundary.MustOp(Namespace, "superpixel-slic.iterate", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opSLICCount = boundary.MustOp(Namespace, "superpixel-slic.number-of-superpixels", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opSLICLabels = boundary.MustOp(Namespace, "superpixel-slic.labels", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opSLICContourMask = boundary.MustOp(Namespace, "superpixel-slic.label-contour-mask", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opSLICEnforce = boundary.MustOp(Namespace, "superpixel-slic.enforce-label-connectivity", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opSLICDestroy = boundary.MustOp(Namespace, "superpixel-slic.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opSEEDSCreate = boundary.MustOp(Namespace, "superpixel-seeds.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opSEEDSIterate = boundary.MustOp(Namespace, "superpixel-seeds.iterate", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opSEEDSCount = boundary.MustOp(Namespace, "superpixel-seeds.number-of-superpixels", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opSEEDSLabels = boundary.MustOp(Namespace, "superpixel-seeds.labels", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opSEEDSContourMask = boundary.MustOp(Namespace, "superpixel-seeds.label-contour-mask", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opSEEDSDestroy = boundary.MustOp(Namespace, "superpixel-seeds.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opLSCCreate = boundary.MustOp(Namespace, "superpixel-lsc.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeF32}, boundary.ShapeOwnHandle)
	opLSCIterate = boundary.MustOp(Namespace, "superpixel-lsc.iterate", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opLSCCount = boundary.MustOp(Namespace, "superpixel-lsc.number-of-superpixels", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opLSCLabels = boundary.MustOp(Namespace, "superpixel-lsc.labels", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opLSCContourMask = boundary.MustOp(Namespace, "superpixel-lsc.label-contour-mask", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opLSCEnforce = boundary.MustOp(Namespace, "superpixel-lsc.enforce-label-connectivity", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opLSCDestroy = boundary.MustOp(Namespace, "superpixel-lsc.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)
)

// SuperpixelSLIC segments an image into superpixels with the SLIC family
// of algorithms. Factory results carry shared ownership.
type SuperpixelSLIC struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateSuperpixelSLIC initializes a segmentation over image.
func CreateSuperpixelSLIC(ctx context.Context, d boundary.Dispatcher, image *cvcore.Mat, algorithm, regionSize int32, ruler float32) result.Result[*SuperpixelSLIC] {
	r := boundary.Invoke[handle.Handle](ctx, d, opSLICCreate, image.Handle(), algorithm, regionSize, ruler)
	if r.IsErr() {
		return result.Err[*SuperpixelSLIC](r.Fault())
	}
	return result.Ok(&SuperpixelSLIC{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (s *SuperpixelSLIC) Handle() handle.Handle { return s.h }

// Iterate runs n refinement iterations.
func (s *SuperpixelSLIC) Iterate(ctx context.Context, n int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, s.d, opSLICIterate, s.h, n)
}

// NumberOfSuperpixels returns the current segment count.
func (s *SuperpixelSLIC) NumberOfSuperpixels(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, s.d, opSLICCount, s.h)
}

// Labels returns the per-pixel segment label matrix, owned by the caller.
func (s *SuperpixelSLIC) Labels(ctx context.Context) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSLICLabels, s.h), s.d)
}

// LabelContourMask returns a mask of segment boundaries.
func (s *SuperpixelSLIC) LabelContourMask(ctx context.Context, thick bool) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSLICContourMask, s.h, thick), s.d)
}

// EnforceLabelConnectivity merges segments below minElementSize.
func (s *SuperpixelSLIC) EnforceLabelConnectivity(ctx context.Context, minElementSize int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, s.d, opSLICEnforce, s.h, minElementSize)
}

// Close releases one ownership of the segmentation.
func (s *SuperpixelSLIC) Close(ctx context.Context) {
	boundary.Destroy(ctx, s.d, opSLICDestroy, s.h)
	s.h = 0
}

// SuperpixelSEEDS segments with the SEEDS algorithm. Unlike SLIC, image
// data is supplied per Iterate call.
type SuperpixelSEEDS struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateSuperpixelSEEDS initializes a segmentation for images of the given
// geometry.
func CreateSuperpixelSEEDS(ctx context.Context, d boundary.Dispatcher, width, height, channels, numSuperpixels, numLevels, prior, histogramBins int32, doubleStep bool) result.Result[*SuperpixelSEEDS] {
	r := boundary.Invoke[handle.Handle](ctx, d, opSEEDSCreate,
		width, height, channels, numSuperpixels, numLevels, prior, histogramBins, doubleStep)
	if r.IsErr() {
		return result.Err[*SuperpixelSEEDS](r.Fault())
	}
	return result.Ok(&SuperpixelSEEDS{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (s *SuperpixelSEEDS) Handle() handle.Handle { return s.h }

// Iterate runs n iterations over image, which must match the geometry the
// segmentation was created with.
func (s *SuperpixelSEEDS) Iterate(ctx context.Context, image *cvcore.Mat, n int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, s.d, opSEEDSIterate, s.h, image.Handle(), n)
}

// NumberOfSuperpixels returns the current segment count.
func (s *SuperpixelSEEDS) NumberOfSuperpixels(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, s.d, opSEEDSCount, s.h)
}

// Labels returns the per-pixel segment label matrix, owned by the caller.
func (s *SuperpixelSEEDS) Labels(ctx context.Context) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSEEDSLabels, s.h), s.d)
}

// LabelContourMask returns a mask of segment boundaries.
func (s *SuperpixelSEEDS) LabelContourMask(ctx context.Context, thick bool) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSEEDSContourMask, s.h, thick), s.d)
}

// Close releases one ownership of the segmentation.
func (s *SuperpixelSEEDS) Close(ctx context.Context) {
	boundary.Destroy(ctx, s.d, opSEEDSDestroy, s.h)
	s.h = 0
}

// SuperpixelLSC segments with Linear Spectral Clustering.
type SuperpixelLSC struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateSuperpixelLSC initializes a segmentation over image.
func CreateSuperpixelLSC(ctx context.Context, d boundary.Dispatcher, image *cvcore.Mat, regionSize int32, ratio float32) result.Result[*SuperpixelLSC] {
	r := boundary.Invoke[handle.Handle](ctx, d, opLSCCreate, image.Handle(), regionSize, ratio)
	if r.IsErr() {
		return result.Err[*SuperpixelLSC](r.Fault())
	}
	return result.Ok(&SuperpixelLSC{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (s *SuperpixelLSC) Handle() handle.Handle { return s.h }

// Iterate runs n refinement iterations.
func (s *SuperpixelLSC) Iterate(ctx context.Context, n int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, s.d, opLSCIterate, s.h, n)
}

// NumberOfSuperpixels returns the current segment count.
func (s *SuperpixelLSC) NumberOfSuperpixels(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, s.d, opLSCCount, s.h)
}

// Labels returns the per-pixel segment label matrix, owned by the caller.
func (s *SuperpixelLSC) Labels(ctx context.Context) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opLSCLabels, s.h), s.d)
}

// LabelContourMask returns a mask of segment boundaries.
func (s *SuperpixelLSC) LabelContourMask(ctx context.Context, thick bool) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opLSCContourMask, s.h, thick), s.d)
}

// EnforceLabelConnectivity merges segments below minElementSize.
func (s *SuperpixelLSC) EnforceLabelConnectivity(ctx context.Context, minElementSize int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, s.d, opLSCEnforce, s.h, minElementSize)
}

// Close releases one ownership of the segmentation.
func (s *SuperpixelLSC) Close(ctx context.Context) {
	boundary.Destroy(ctx, s.d, opLSCDestroy, s.h)
	s.h = 0
}

// ownedMat lifts an owning-handle result into a *cvcore.Mat result.
func ownedMat(r result.Result[handle.Handle], d boundary.Dispatcher) result.Result[*cvcore.Mat] {
	if r.IsErr() {
		return result.Err[*cvcore.Mat](r.Fault())
	}
	return result.Ok(cvcore.WrapMat(d, r.Value()))
}

// matHandle tolerates nil optional Mat arguments.
func matHandle(m *cvcore.Mat) handle.Handle {
	if m == nil {
		return 0
	}
	return m.Handle()
}
