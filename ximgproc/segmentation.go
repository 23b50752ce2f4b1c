package ximgproc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

var (
	opGraphSegCreate = boundary.MustOp(Namespace, "graph-segmentation.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeF64, boundary.ShapeF32, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opGraphSegProcess = boundary.MustOp(Namespace, "graph-segmentation.process-image", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opGraphSegGetSigma = boundary.MustOp(Namespace, "graph-segmentation.sigma", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeF64)
	opGraphSegSetSigma = boundary.MustOp(Namespace, "graph-segmentation.set-sigma", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF64}, boundary.ShapeUnit)
	opGraphSegGetK = boundary.MustOp(Namespace, "graph-segmentation.k", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeF32)
	opGraphSegSetK = boundary.MustOp(Namespace, "graph-segmentation.set-k", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeF32}, boundary.ShapeUnit)
	opGraphSegGetMinSize = boundary.MustOp(Namespace, "graph-segmentation.min-size", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opGraphSegSetMinSize = boundary.MustOp(Namespace, "graph-segmentation.set-min-size", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opGraphSegDestroy = boundary.MustOp(Namespace, "graph-segmentation.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opFLDCreate = boundary.MustOp(Namespace, "fast-line-detector.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeI32, boundary.ShapeF32, boundary.ShapeF64, boundary.ShapeF64, boundary.ShapeI32, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opFLDDetect = boundary.MustOp(Namespace, "fast-line-detector.detect", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeVec4fList)
	opFLDDraw = boundary.MustOp(Namespace, "fast-line-detector.draw-segments", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeVec4fList, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opFLDDestroy = boundary.MustOp(Namespace, "fast-line-detector.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)
)

// GraphSegmentation implements Felzenszwalb-Huttenlocher graph based image
// segmentation.
type GraphSegmentation struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateGraphSegmentation builds a segmenter with the given smoothing,
// threshold and minimum segment size.
func CreateGraphSegmentation(ctx context.Context, d boundary.Dispatcher, sigma float64, k float32, minSize int32) result.Result[*GraphSegmentation] {
	r := boundary.Invoke[handle.Handle](ctx, d, opGraphSegCreate, sigma, k, minSize)
	if r.IsErr() {
		return result.Err[*GraphSegmentation](r.Fault())
	}
	return result.Ok(&GraphSegmentation{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (g *GraphSegmentation) Handle() handle.Handle { return g.h }

// ProcessImage segments src and returns a 32SC1 label matrix.
func (g *GraphSegmentation) ProcessImage(ctx context.Context, src *cvcore.Mat) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, g.d, opGraphSegProcess, g.h, src.Handle()), g.d)
}

func (g *GraphSegmentation) Sigma(ctx context.Context) result.Result[float64] {
	return boundary.Invoke[float64](ctx, g.d, opGraphSegGetSigma, g.h)
}

func (g *GraphSegmentation) SetSigma(ctx context.Context, v float64) result.Result[result.Unit] {
	return boundary.Exec(ctx, g.d, opGraphSegSetSigma, g.h, v)
}

func (g *GraphSegmentation) K(ctx context.Context) result.Result[float32] {
	return boundary.Invoke[float32](ctx, g.d, opGraphSegGetK, g.h)
}

func (g *GraphSegmentation) SetK(ctx context.Context, v float32) result.Result[result.Unit] {
	return boundary.Exec(ctx, g.d, opGraphSegSetK, g.h, v)
}

func (g *GraphSegmentation) MinSize(ctx context.Context) result.Result[int32] {
	return boundary.Invoke[int32](ctx, g.d, opGraphSegGetMinSize, g.h)
}

func (g *GraphSegmentation) SetMinSize(ctx context.Context, v int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, g.d, opGraphSegSetMinSize, g.h, v)
}

// Close releases one ownership of the segmenter.
func (g *GraphSegmentation) Close(ctx context.Context) {
	boundary.Destroy(ctx, g.d, opGraphSegDestroy, g.h)
	g.h = 0
}

// FastLineDetector finds line segments in grayscale images.
type FastLineDetector struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateFastLineDetector builds a detector. canny parameters are ignored
// when doMerge is false and cannyApertureSize is zero.
func CreateFastLineDetector(ctx context.Context, d boundary.Dispatcher, lengthThreshold int32, distanceThreshold float32, cannyTh1, cannyTh2 float64, cannyApertureSize int32, doMerge bool) result.Result[*FastLineDetector] {
	r := boundary.Invoke[handle.Handle](ctx, d, opFLDCreate,
		lengthThreshold, distanceThreshold, cannyTh1, cannyTh2, cannyApertureSize, doMerge)
	if r.IsErr() {
		return result.Err[*FastLineDetector](r.Fault())
	}
	return result.Ok(&FastLineDetector{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (f *FastLineDetector) Handle() handle.Handle { return f.h }

// Detect returns segments as (x1, y1, x2, y2) vectors.
func (f *FastLineDetector) Detect(ctx context.Context, image *cvcore.Mat) result.Result[[]cvcore.Vec4f] {
	return boundary.Invoke[[]cvcore.Vec4f](ctx, f.d, opFLDDetect, f.h, image.Handle())
}

// DrawSegments renders segments onto a copy of image.
func (f *FastLineDetector) DrawSegments(ctx context.Context, image *cvcore.Mat, lines []cvcore.Vec4f, drawArrow bool) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, f.d, opFLDDraw, f.h, image.Handle(), lines, drawArrow), f.d)
}

// Close releases one ownership of the detector.
func (f *FastLineDetector) Close(ctx context.Context) {
	boundary.Destroy(ctx, f.d, opFLDDestroy, f.h)
	f.h = 0
}
