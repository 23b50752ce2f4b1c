package linedesc

import (
	"context"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/result"
)

// DrawKeylines renders keylines over image into out, which is mutated in
// place and must be a live mat owned by the caller.
func DrawKeylines(ctx context.Context, d boundary.Dispatcher, image *cvcore.Mat, keylines []KeyLine, out *cvcore.Mat, color cvcore.Scalar, flags int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, d, opDrawKeylines, image.Handle(), keylines, out.Handle(), color, flags)
}

// DrawLineMatches renders matched line pairs from two images into out.
func DrawLineMatches(ctx context.Context, d boundary.Dispatcher, img1 *cvcore.Mat, keylines1 []KeyLine, img2 *cvcore.Mat, keylines2 []KeyLine, matches []DMatch, out *cvcore.Mat, matchColor, singleLineColor cvcore.Scalar, flags int32) result.Result[result.Unit] {
	return boundary.Exec(ctx, d, opDrawLineMatches,
		img1.Handle(), keylines1, img2.Handle(), keylines2, matches,
		out.Handle(), matchColor, singleLineColor, flags)
}
