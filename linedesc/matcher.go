package linedesc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// BinaryDescriptorMatcher matches binary line descriptors. Instances from
// New are exclusively owned; the Create factory result carries shared
// ownership.
type BinaryDescriptorMatcher struct {
	d boundary.Dispatcher
	h handle.Handle
}

// NewBinaryDescriptorMatcher constructs an exclusively owned matcher.
func NewBinaryDescriptorMatcher(ctx context.Context, d boundary.Dispatcher) result.Result[*BinaryDescriptorMatcher] {
	return wrapMatcher(boundary.Invoke[handle.Handle](ctx, d, opBDMNew), d)
}

// CreateBinaryDescriptorMatcher builds a shared matcher.
func CreateBinaryDescriptorMatcher(ctx context.Context, d boundary.Dispatcher) result.Result[*BinaryDescriptorMatcher] {
	return wrapMatcher(boundary.Invoke[handle.Handle](ctx, d, opBDMCreate), d)
}

func wrapMatcher(r result.Result[handle.Handle], d boundary.Dispatcher) result.Result[*BinaryDescriptorMatcher] {
	if r.IsErr() {
		return result.Err[*BinaryDescriptorMatcher](r.Fault())
	}
	return result.Ok(&BinaryDescriptorMatcher{d: d, h: r.Value()})
}

// Handle exposes the raw handle for borrowing calls.
func (m *BinaryDescriptorMatcher) Handle() handle.Handle { return m.h }

// Match pairs each query descriptor with its closest train descriptor.
// mask may be nil.
func (m *BinaryDescriptorMatcher) Match(ctx context.Context, query, train, mask *cvcore.Mat) result.Result[[]DMatch] {
	return boundary.Invoke[[]DMatch](ctx, m.d, opBDMMatch, m.h, query.Handle(), train.Handle(), matHandle(mask))
}

// MatchTrained matches query descriptors against the dataset accumulated
// with Add/Train.
func (m *BinaryDescriptorMatcher) MatchTrained(ctx context.Context, query *cvcore.Mat) result.Result[[]DMatch] {
	return boundary.Invoke[[]DMatch](ctx, m.d, opBDMMatchTrained, m.h, query.Handle())
}

// KnnMatch returns the k best matches per query descriptor.
func (m *BinaryDescriptorMatcher) KnnMatch(ctx context.Context, query, train *cvcore.Mat, k int32, mask *cvcore.Mat, compactResult bool) result.Result[[][]DMatch] {
	return boundary.Invoke[[][]DMatch](ctx, m.d, opBDMKnnMatch, m.h, query.Handle(), train.Handle(), k, matHandle(mask), compactResult)
}

// KnnMatchTrained is KnnMatch against the trained dataset.
func (m *BinaryDescriptorMatcher) KnnMatchTrained(ctx context.Context, query *cvcore.Mat, k int32, compactResult bool) result.Result[[][]DMatch] {
	return boundary.Invoke[[][]DMatch](ctx, m.d, opBDMKnnMatchTrained, m.h, query.Handle(), k, compactResult)
}

// RadiusMatch returns all matches within maxDistance per query descriptor.
func (m *BinaryDescriptorMatcher) RadiusMatch(ctx context.Context, query, train *cvcore.Mat, maxDistance float32, mask *cvcore.Mat, compactResult bool) result.Result[[][]DMatch] {
	return boundary.Invoke[[][]DMatch](ctx, m.d, opBDMRadiusMatch, m.h, query.Handle(), train.Handle(), maxDistance, matHandle(mask), compactResult)
}

// RadiusMatchTrained is RadiusMatch against the trained dataset.
func (m *BinaryDescriptorMatcher) RadiusMatchTrained(ctx context.Context, query *cvcore.Mat, maxDistance float32, compactResult bool) result.Result[[][]DMatch] {
	return boundary.Invoke[[][]DMatch](ctx, m.d, opBDMRadiusMatchTrained, m.h, query.Handle(), maxDistance, compactResult)
}

// Add appends a descriptor matrix to the trained dataset.
func (m *BinaryDescriptorMatcher) Add(ctx context.Context, descriptors *cvcore.Mat) result.Result[result.Unit] {
	return boundary.Exec(ctx, m.d, opBDMAdd, m.h, descriptors.Handle())
}

// Train builds the internal index over added descriptors.
func (m *BinaryDescriptorMatcher) Train(ctx context.Context) result.Result[result.Unit] {
	return boundary.Exec(ctx, m.d, opBDMTrain, m.h)
}

// Clear discards the trained dataset.
func (m *BinaryDescriptorMatcher) Clear(ctx context.Context) result.Result[result.Unit] {
	return boundary.Exec(ctx, m.d, opBDMClear, m.h)
}

// Close releases one ownership of the matcher.
func (m *BinaryDescriptorMatcher) Close(ctx context.Context) {
	boundary.Destroy(ctx, m.d, opBDMDestroy, m.h)
	m.h = 0
}
