package linedesc

import "github.com/wippyai/cv-bridge/boundary"

// Namespace for the line-descriptor surface.
const Namespace = "cv:line-descriptor"

// The declarative operation table for this module. Shapes mirror the
// native signatures; ownership is carried by the op kind.
var (
	// BinaryDescriptor::Params
	opParamsNew = boundary.MustOp(Namespace, "params.new", boundary.KindConstructor,
		nil, boundary.ShapeOwnHandle)
	opParamsGetNumOfOctaves = boundary.MustOp(Namespace, "params.num-of-octaves", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opParamsSetNumOfOctaves = boundary.MustOp(Namespace, "params.set-num-of-octaves", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opParamsGetWidthOfBand = boundary.MustOp(Namespace, "params.width-of-band", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opParamsSetWidthOfBand = boundary.MustOp(Namespace, "params.set-width-of-band", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opParamsGetReductionRatio = boundary.MustOp(Namespace, "params.reduction-ratio", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opParamsSetReductionRatio = boundary.MustOp(Namespace, "params.set-reduction-ratio", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opParamsGetKSize = boundary.MustOp(Namespace, "params.ksize", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opParamsSetKSize = boundary.MustOp(Namespace, "params.set-ksize", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opParamsDestroy = boundary.MustOp(Namespace, "params.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	// BinaryDescriptor
	opBDNew = boundary.MustOp(Namespace, "binary-descriptor.new", boundary.KindConstructor,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opBDCreate = boundary.MustOp(Namespace, "binary-descriptor.create", boundary.KindFactory,
		nil, boundary.ShapeOwnHandle)
	opBDCreateWithParams = boundary.MustOp(Namespace, "binary-descriptor.create-with-params", boundary.KindFactory,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeOwnHandle)
	opBDGetNumOfOctaves = boundary.MustOp(Namespace, "binary-descriptor.num-of-octaves", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDSetNumOfOctaves = boundary.MustOp(Namespace, "binary-descriptor.set-num-of-octaves", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opBDGetWidthOfBand = boundary.MustOp(Namespace, "binary-descriptor.width-of-band", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDSetWidthOfBand = boundary.MustOp(Namespace, "binary-descriptor.set-width-of-band", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opBDGetReductionRatio = boundary.MustOp(Namespace, "binary-descriptor.reduction-ratio", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDSetReductionRatio = boundary.MustOp(Namespace, "binary-descriptor.set-reduction-ratio", boundary.KindSetter,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeI32}, boundary.ShapeUnit)
	opBDDetect = boundary.MustOp(Namespace, "binary-descriptor.detect", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeKeyLineList)
	opBDCompute = boundary.MustOp(Namespace, "binary-descriptor.compute", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeKeyLineList, boundary.ShapeBool}, boundary.ShapeOwnHandle)
	opBDDescriptorSize = boundary.MustOp(Namespace, "binary-descriptor.descriptor-size", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDDescriptorType = boundary.MustOp(Namespace, "binary-descriptor.descriptor-type", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDDefaultNorm = boundary.MustOp(Namespace, "binary-descriptor.default-norm", boundary.KindGetter,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeI32)
	opBDDestroy = boundary.MustOp(Namespace, "binary-descriptor.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	// BinaryDescriptorMatcher
	opBDMNew = boundary.MustOp(Namespace, "matcher.new", boundary.KindConstructor,
		nil, boundary.ShapeOwnHandle)
	opBDMCreate = boundary.MustOp(Namespace, "matcher.create", boundary.KindFactory,
		nil, boundary.ShapeOwnHandle)
	opBDMMatch = boundary.MustOp(Namespace, "matcher.match", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeDMatchList)
	opBDMMatchTrained = boundary.MustOp(Namespace, "matcher.match-trained", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeDMatchList)
	opBDMKnnMatch = boundary.MustOp(Namespace, "matcher.knn-match", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeDMatchListList)
	opBDMKnnMatchTrained = boundary.MustOp(Namespace, "matcher.knn-match-trained", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeBool}, boundary.ShapeDMatchListList)
	opBDMRadiusMatch = boundary.MustOp(Namespace, "matcher.radius-match", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeF32, boundary.ShapeHandle, boundary.ShapeBool}, boundary.ShapeDMatchListList)
	opBDMRadiusMatchTrained = boundary.MustOp(Namespace, "matcher.radius-match-trained", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeF32, boundary.ShapeBool}, boundary.ShapeDMatchListList)
	opBDMAdd = boundary.MustOp(Namespace, "matcher.add", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle}, boundary.ShapeUnit)
	opBDMTrain = boundary.MustOp(Namespace, "matcher.train", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeUnit)
	opBDMClear = boundary.MustOp(Namespace, "matcher.clear", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle}, boundary.ShapeUnit)
	opBDMDestroy = boundary.MustOp(Namespace, "matcher.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	// LSDDetector
	opLSDNew = boundary.MustOp(Namespace, "lsd-detector.new", boundary.KindConstructor,
		nil, boundary.ShapeOwnHandle)
	opLSDCreate = boundary.MustOp(Namespace, "lsd-detector.create", boundary.KindFactory,
		nil, boundary.ShapeOwnHandle)
	opLSDDetect = boundary.MustOp(Namespace, "lsd-detector.detect", boundary.KindMethod,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeHandle, boundary.ShapeI32, boundary.ShapeI32, boundary.ShapeHandle}, boundary.ShapeKeyLineList)
	opLSDDestroy = boundary.MustOp(Namespace, "lsd-detector.destroy", boundary.KindDestroy,
		[]boundary.Shape{boundary.ShapeOwnHandle}, boundary.ShapeUnit)

	// free functions
	opDrawKeylines = boundary.MustOp(Namespace, "draw-keylines", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeKeyLineList, boundary.ShapeHandle, boundary.ShapeScalar, boundary.ShapeI32}, boundary.ShapeUnit)
	opDrawLineMatches = boundary.MustOp(Namespace, "draw-line-matches", boundary.KindFunction,
		[]boundary.Shape{boundary.ShapeHandle, boundary.ShapeKeyLineList, boundary.ShapeHandle, boundary.ShapeKeyLineList, boundary.ShapeDMatchList, boundary.ShapeHandle, boundary.ShapeScalar, boundary.ShapeScalar, boundary.ShapeI32}, boundary.ShapeUnit)
)
