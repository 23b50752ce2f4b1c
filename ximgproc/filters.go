package ximgproc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// Domain transform filtering modes.
const (
	DTFNC int32 = 0
	DTFIC int32 = 1
	DTFRF int32 = 2
)

// Thinning algorithms.
const (
	ThinningZhangSuen int32 = 0
	ThinningGuoHall   int32 = 1
)

// Binarization methods for NiBlackThreshold.
const (
	BinarizationNiblack  int32 = 0
	BinarizationSauvola  int32 = 1
	BinarizationWolf     int32 = 2
	BinarizationNICK     int32 = 3
)

var (
	opGuidedCreate = boundary.MustOp(Namespace, "guided-filter.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeF64}, boundary.ShapeOwnHandle)
	opGuidedFilter = boundary.MustOp(Namespace, "guided-filter.filter", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opGuidedDestroy = boundary.MustOp(Namespace, "guided-filter.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opDTCreate = boundary.MustOp(Namespace, "dt-filter.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64, boundary.ShapeF64, boundary.ShapeI32, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opDTApply = boundary.MustOp(Namespace, "dt-filter.filter", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opDTDestroy = boundary.MustOp(Namespace, "dt-filter.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opAMCreate = boundary.MustOp(Namespace, "adaptive-manifold-filter.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeF64, boundary.ShapeF64, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opAMFilter = boundary.MustOp(Namespace, "adaptive-manifold-filter.filter", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opAMCollect = boundary.MustOp(Namespace, "adaptive-manifold-filter.collect-garbage", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeUnit)
	opAMGetSigmaS = boundary.MustOp(Namespace, "adaptive-manifold-filter.sigma-s", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeF64)
	opAMSetSigmaS = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-sigma-s", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64}, boundary.ShapeUnit)
	opAMGetSigmaR = boundary.MustOp(Namespace, "adaptive-manifold-filter.sigma-r", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeF64)
	opAMSetSigmaR = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-sigma-r", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64}, boundary.ShapeUnit)
	opAMGetTreeHeight = boundary.MustOp(Namespace, "adaptive-manifold-filter.tree-height", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opAMSetTreeHeight = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-tree-height", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opAMGetPCA = boundary.MustOp(Namespace, "adaptive-manifold-filter.pca-iterations", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opAMSetPCA = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-pca-iterations", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opAMGetAdjust = boundary.MustOp(Namespace, "adaptive-manifold-filter.adjust-outliers", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeBool)
	opAMSetAdjust = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-adjust-outliers", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeUnit)
	opAMGetRNG = boundary.MustOp(Namespace, "adaptive-manifold-filter.use-rng", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeBool)
	opAMSetRNG = boundary.MustOp(Namespace, "adaptive-manifold-filter.set-use-rng", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeUnit)
	opAMDestroy = boundary.MustOp(Namespace, "adaptive-manifold-filter.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opGuidedFilterFn = boundary.MustOp(Namespace, "guided-filter-fn", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeF64, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opDTFilterFn = boundary.MustOp(Namespace, "dt-filter-fn", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeF64, boundary.ShapeF64, boundary.ShapeI32, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opJointBilateral = boundary.MustOp(Namespace, "joint-bilateral-filter", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeF64, boundary.ShapeF64}, boundary.ShapeOwnHandle)
	opBilateralTexture = boundary.MustOp(Namespace, "bilateral-texture-filter", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeF64, boundary.ShapeF64}, boundary.ShapeOwnHandle)
	opRollingGuidance = boundary.MustOp(Namespace, "rolling-guidance-filter", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeF64, boundary.ShapeF64, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opL0Smooth = boundary.MustOp(Namespace, "l0-smooth", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64, boundary.ShapeF64}, boundary.ShapeOwnHandle)
	opNiBlack = boundary.MustOp(Namespace, "ni-black-threshold", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeF64, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opThinning = boundary.MustOp(Namespace, "thinning", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeOwnHandle)
)

// GuidedFilter holds a guide image for repeated edge-preserving filtering.
type GuidedFilter struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateGuidedFilter builds a filter over guide.
func CreateGuidedFilter(ctx context.Context, d boundary.Dispatcher, guide *cvcore.Mat, radius int32, eps float64) result.Result[*GuidedFilter] {
	r := boundary.Invoke[handle.Handle](ctx, d, opGuidedCreate, guide.Handle(), radius, eps)
	if r.IsErr() {
		return result.Err[*GuidedFilter](r.Fault())
	}
	return result.Ok(&GuidedFilter{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (f *GuidedFilter) Handle() handle.Handle { return f.h }

// Filter applies the filter to src. dDepth of -1 keeps the source depth.
func (f *GuidedFilter) Filter(ctx context.Context, src *cvcore.Mat, dDepth int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, f.d, opGuidedFilter, f.h, src.Handle(), dDepth), f.d)
}

// Close releases one ownership of the filter.
func (f *GuidedFilter) Close(ctx context.Context) {
	boundary.Destroy(ctx, f.d, opGuidedDestroy, f.h)
	f.h = 0
}

// DTFilter holds a guide image for domain transform filtering.
type DTFilter struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateDTFilter builds a filter over guide. mode is one of DTFNC, DTFIC,
// DTFRF.
func CreateDTFilter(ctx context.Context, d boundary.Dispatcher, guide *cvcore.Mat, sigmaSpatial, sigmaColor float64, mode, numIters int32) result.Result[*DTFilter] {
	r := boundary.Invoke[handle.Handle](ctx, d, opDTCreate, guide.Handle(), sigmaSpatial, sigmaColor, mode, numIters)
	if r.IsErr() {
		return result.Err[*DTFilter](r.Fault())
	}
	return result.Ok(&DTFilter{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (f *DTFilter) Handle() handle.Handle { return f.h }

// Filter applies the filter to src.
func (f *DTFilter) Filter(ctx context.Context, src *cvcore.Mat, dDepth int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, f.d, opDTApply, f.h, src.Handle(), dDepth), f.d)
}

// Close releases one ownership of the filter.
func (f *DTFilter) Close(ctx context.Context) {
	boundary.Destroy(ctx, f.d, opDTDestroy, f.h)
	f.h = 0
}

// AdaptiveManifoldFilter is a stateful high-dimensional filter configured
// through property setters before filtering.
type AdaptiveManifoldFilter struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateAMFilter builds an adaptive manifold filter.
func CreateAMFilter(ctx context.Context, d boundary.Dispatcher, sigmaS, sigmaR float64, adjustOutliers bool) result.Result[*AdaptiveManifoldFilter] {
	r := boundary.Invoke[handle.Handle](ctx, d, opAMCreate, sigmaS, sigmaR, adjustOutliers)
	if r.IsErr() {
		return result.Err[*AdaptiveManifoldFilter](r.Fault())
	}
	return result.Ok(&AdaptiveManifoldFilter{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (f *AdaptiveManifoldFilter) Handle() handle.Handle { return f.h }

// Filter applies the filter to src. joint may be nil to filter src against
// itself.
func (f *AdaptiveManifoldFilter) Filter(ctx context.Context, src, joint *cvcore.Mat) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, f.d, opAMFilter, f.h, src.Handle(), matHandle(joint)), f.d)
}

// CollectGarbage releases the filter's internal manifold buffers.
func (f *AdaptiveManifoldFilter) CollectGarbage(ctx context.Context) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMCollect, f.h)
}

func (f *AdaptiveManifoldFilter) SigmaS(ctx context.Context) result.Result[float64] {
	return boundary.Invoke[float64](ctx, f.d, opAMGetSigmaS, f.h)
}

func (f *AdaptiveManifoldFilter) SetSigmaS(ctx context.Context, v float64) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetSigmaS, f.h, v)
}

func (f *AdaptiveManifoldFilter) SigmaR(ctx context.Context) result.Result[float64] {
	return boundary.Invoke[float64](ctx, f.d, opAMGetSigmaR, f.h)
}

func (f *AdaptiveManifoldFilter) SetSigmaR(ctx context.Context, v float64) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetSigmaR, f.h, v)
}

func (f *AdaptiveManifoldFilter) TreeHeight(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, f.d, opAMGetTreeHeight, f.h)
}

func (f *AdaptiveManifoldFilter) SetTreeHeight(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetTreeHeight, f.h, v)
}

func (f *AdaptiveManifoldFilter) PCAIterations(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, f.d, opAMGetPCA, f.h)
}

func (f *AdaptiveManifoldFilter) SetPCAIterations(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetPCA, f.h, v)
}

func (f *AdaptiveManifoldFilter) AdjustOutliers(ctx context.Context) result.Result[bool] {
	return boundary.Invoke[bool](ctx, f.d, opAMGetAdjust, f.h)
}

func (f *AdaptiveManifoldFilter) SetAdjustOutliers(ctx context.Context, v bool) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetAdjust, f.h, v)
}

func (f *AdaptiveManifoldFilter) UseRNG(ctx context.Context) result.Result[bool] {
	return boundary.Invoke[bool](ctx, f.d, opAMGetRNG, f.h)
}

func (f *AdaptiveManifoldFilter) SetUseRNG(ctx context.Context, v bool) result.Result[result.Unit] {
	return boundary.Exec(ctx, f.d, opAMSetRNG, f.h, v)
}

// Close releases one ownership of the filter.
func (f *AdaptiveManifoldFilter) Close(ctx context.Context) {
	boundary.Destroy(ctx, f.d, opAMDestroy, f.h)
	f.h = 0
}

// GuidedFilterFn runs a one-shot guided filter without keeping filter state.
func GuidedFilterFn(ctx context.Context, d boundary.Dispatcher, guide, src *cvcore.Mat, radius int32, eps float64, dDepth int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opGuidedFilterFn, guide.Handle(), src.Handle(), radius, eps, dDepth), d)
}

// DTFilterFn runs a one-shot domain transform filter.
func DTFilterFn(ctx context.Context, d boundary.Dispatcher, guide, src *cvcore.Mat, sigmaSpatial, sigmaColor float64, mode, numIters int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opDTFilterFn, guide.Handle(), src.Handle(), sigmaSpatial, sigmaColor, mode, numIters), d)
}

// JointBilateralFilter filters src guided by joint.
func JointBilateralFilter(ctx context.Context, d boundary.Dispatcher, joint, src *cvcore.Mat, diameter int32, sigmaColor, sigmaSpace float64) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opJointBilateral, joint.Handle(), src.Handle(), diameter, sigmaColor, sigmaSpace), d)
}

// BilateralTextureFilter smooths texture while preserving structure.
func BilateralTextureFilter(ctx context.Context, d boundary.Dispatcher, src *cvcore.Mat, fr, numIter int32, sigmaAlpha, sigmaAvg float64) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opBilateralTexture, src.Handle(), fr, numIter, sigmaAlpha, sigmaAvg), d)
}

// RollingGuidanceFilter iteratively removes small-scale structures.
func RollingGuidanceFilter(ctx context.Context, d boundary.Dispatcher, src *cvcore.Mat, diameter int32, sigmaColor, sigmaSpace float64, numIter int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opRollingGuidance, src.Handle(), diameter, sigmaColor, sigmaSpace, numIter), d)
}

// L0Smooth applies L0 gradient minimization smoothing.
func L0Smooth(ctx context.Context, d boundary.Dispatcher, src *cvcore.Mat, lambda, kappa float64) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opL0Smooth, src.Handle(), lambda, kappa), d)
}

// NiBlackThreshold binarizes src with a local-mean threshold.
func NiBlackThreshold(ctx context.Context, d boundary.Dispatcher, src *cvcore.Mat, maxValue float64, thresholdType, blockSize int32, k float64, binarizationMethod int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opNiBlack, src.Handle(), maxValue, thresholdType, blockSize, k, binarizationMethod), d)
}

// Thinning skeletonizes a binary image.
func Thinning(ctx context.Context, d boundary.Dispatcher, src *cvcore.Mat, thinningType int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, d, opThinning, src.Handle(), thinningType), d)
}
