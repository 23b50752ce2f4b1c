// Package result implements the result transport convention used by every
// boundary operation in cv-bridge.
//
// A boundary operation either completed normally or raised a native fault;
// Result[T] carries exactly one of the two outcomes:
//
//	r := linedesc.CreateBinaryDescriptor(ctx, host)
//	if r.IsErr() {
//	    return r.Fault()
//	}
//	bd := r.Value()
//
// Faults never unwind past the boundary: Of and Do install the single
// outermost recover scope an operation is allowed to have, and From copies
// the classification and message out of whatever was raised. The original
// panic value is not retained past the crossing.
//
// In-process native code raises faults with Raise:
//
//	if img.Empty() {
//	    result.Raise(result.CodeBadArg, "detect: empty input image")
//	}
package result
