package ximgproc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/models"
	"github.com/wippyai/cv-bridge/result"
)

var (
	opRFCreate = boundary.MustOp(Namespace, "rf-feature-getter.create", boundary.KindFactory,
		nil, boundary.ShapeOwnHandle)
	opRFFeatures = boundary.MustOp(Namespace, "rf-feature-getter.features", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeI32}, boundary.ShapeOwnHandle)
	opRFDestroy = boundary.MustOp(Namespace, "rf-feature-getter.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	opSEDCreate = boundary.MustOp(Namespace, "structured-edge-detection.create", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeString, boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opSEDDetect = boundary.MustOp(Namespace, "structured-edge-detection.detect-edges", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opSEDOrientation = boundary.MustOp(Namespace, "structured-edge-detection.compute-orientation", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opSEDNms = boundary.MustOp(Namespace, "structured-edge-detection.edges-nms", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeF32, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opSEDDestroy = boundary.MustOp(Namespace, "structured-edge-detection.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)
)

// RFFeatureGetter extracts per-pixel features for the structured forest
// edge detector.
type RFFeatureGetter struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateRFFeatureGetter builds the default feature extractor.
func CreateRFFeatureGetter(ctx context.Context, d boundary.Dispatcher) result.Result[*RFFeatureGetter] {
	r := boundary.Invoke[handle.Handle](ctx, d, opRFCreate)
	if r.IsErr() {
		return result.Err[*RFFeatureGetter](r.Fault())
	}
	return result.Ok(&RFFeatureGetter{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (g *RFFeatureGetter) Handle() handle.Handle { return g.h }

// Features computes the feature channels of src.
func (g *RFFeatureGetter) Features(ctx context.Context, src *cvcore.Mat, gnrmRad, gsmthRad, shrink, outNum int32) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, g.d, opRFFeatures, g.h, src.Handle(), gnrmRad, gsmthRad, shrink, outNum), g.d)
}

// Close releases one ownership of the extractor.
func (g *RFFeatureGetter) Close(ctx context.Context) {
	boundary.Destroy(ctx, g.d, opRFDestroy, g.h)
	g.h = 0
}

// StructuredEdgeDetection detects edges with a trained structured forest
// model loaded from disk.
type StructuredEdgeDetection struct {
	d boundary.Dispatcher
	h handle.Handle
}

// CreateStructuredEdgeDetection loads the model at path. getter may be nil
// to use the built-in feature extractor.
func CreateStructuredEdgeDetection(ctx context.Context, d boundary.Dispatcher, path string, getter *RFFeatureGetter) result.Result[*StructuredEdgeDetection] {
	var gh handle.Handle
	if getter != nil {
		gh = getter.h
	}
	r := boundary.Invoke[handle.Handle](ctx, d, opSEDCreate, path, gh)
	if r.IsErr() {
		return result.Err[*StructuredEdgeDetection](r.Fault())
	}
	return result.Ok(&StructuredEdgeDetection{d: d, h: r.Value()})
}

// CreateStructuredEdgeDetectionFromHub downloads the default trained model
// into cacheDir (or the default cache) and loads it.
func CreateStructuredEdgeDetectionFromHub(ctx context.Context, d boundary.Dispatcher, cacheDir string, getter *RFFeatureGetter) result.Result[*StructuredEdgeDetection] {
	path, err := models.FetchEdgeModel(cacheDir)
	if err != nil {
		return result.Err[*StructuredEdgeDetection](result.Faultf(result.CodeError, "fetching edge model: %v", err))
	}
	return CreateStructuredEdgeDetection(ctx, d, path, getter)
}

// Handle exposes the raw handle for borrowing calls.
func (s *StructuredEdgeDetection) Handle() handle.Handle { return s.h }

// DetectEdges computes an edge probability map for a 32FC3 image.
func (s *StructuredEdgeDetection) DetectEdges(ctx context.Context, src *cvcore.Mat) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSEDDetect, s.h, src.Handle()), s.d)
}

// ComputeOrientation derives edge orientations from an edge map.
func (s *StructuredEdgeDetection) ComputeOrientation(ctx context.Context, edges *cvcore.Mat) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSEDOrientation, s.h, edges.Handle()), s.d)
}

// EdgesNms suppresses non-maximal edges using their orientations.
func (s *StructuredEdgeDetection) EdgesNms(ctx context.Context, edges, orientation *cvcore.Mat, r, s2 int32, m float32, isParallel bool) result.Result[*cvcore.Mat] {
	return ownedMat(boundary.Invoke[handle.Handle](ctx, s.d, opSEDNms, s.h, edges.Handle(), orientation.Handle(), r, s2, m, isParallel), s.d)
}

// Close releases one ownership of the detector.
func (s *StructuredEdgeDetection) Close(ctx context.Context) {
	boundary.Destroy(ctx, s.d, opSEDDestroy, s.h)
	s.h = 0
}
