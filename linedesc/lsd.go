package linedesc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// LSDDetector extracts lines with the Line Segment Detector.
type LSDDetector struct {
	d boundary.Dispatcher
	h handle.Handle
}

// NewLSDDetector constructs an exclusively owned detector.
func NewLSDDetector(ctx context.Context, d boundary.Dispatcher) result.Result[*LSDDetector] {
	return wrapLSD(boundary.Invoke[handle.Handle](ctx, d, opLSDNew), d)
}

// CreateLSDDetector builds a shared detector.
func CreateLSDDetector(ctx context.Context, d boundary.Dispatcher) result.Result[*LSDDetector] {
	return wrapLSD(boundary.Invoke[handle.Handle](ctx, d, opLSDCreate), d)
}

func wrapLSD(r result.Result[handle.Handle], d boundary.Dispatcher) result.Result[*LSDDetector] {
	if r.IsErr() {
		return result.Err[*LSDDetector](r.Fault())
	}
	return result.Ok(&LSDDetector{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (l *LSDDetector) Handle() handle.Handle { return l.h }

// Detect extracts lines across numOctaves octaves, downscaling by scale
// between octaves. mask may be nil.
func (l *LSDDetector) Detect(ctx context.Context, image *cvcore.Mat, scale, numOctaves int32, mask *cvcore.Mat) result.Result[[]KeyLine] {
	return boundary.Invoke[[]KeyLine](ctx, l.d, opLSDDetect, l.h, image.Handle(), scale, numOctaves, matHandle(mask))
}

// Close releases one ownership of the detector.
func (l *LSDDetector) Close(ctx context.Context) {
	boundary.Destroy(ctx, l.d, opLSDDestroy, l.h)
	l.h = 0
}
