// Package boundary defines the declarative operation tables and the
// generic call wrapper that together replace the original one-function-
// per-method binding surface.
//
// Every wrapped native entity contributes Ops - {symbol, kind, argument
// shapes, result shape} - to the Registry at init time. Typed wrappers in
// the surface packages (cvcore, linedesc, ximgproc) then drive
// Invoke[T], which implements the result transport convention once:
//
//	func (bd *BinaryDescriptor) NumOfOctaves(ctx) result.Result[int32] {
//	    return boundary.Invoke[int32](ctx, bd.d, opGetNumOfOctaves, bd.Handle)
//	}
//
// The operation's semantics stay byte-for-byte delegated to the native
// backend behind the Dispatcher interface; this package only translates
// between the Go caller and the backend's tagged results.
//
// Each call is a single atomic request/response: no state persists between
// invocations, no concurrency is added or removed, and no cancellation is
// offered beyond the context plumbed through to the backend.
package boundary
