package result

// Unit is the payload of operations that return no value.
type Unit struct{}

// Result is the tagged value every boundary operation returns: either a
// payload or a fault, never both and never neither.
type Result[T any] struct {
	value T
	fault *Fault
	ok    bool
}

// Ok wraps a successful payload.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Err wraps a fault. A nil fault is normalized to an unknown fault so the
// variant invariant holds even for buggy callers.
func Err[T any](f *Fault) Result[T] {
	if f == nil {
		f = &Fault{Code: CodeUnknown, Message: "unspecified fault"}
	}
	return Result[T]{fault: f}
}

// Void is the Ok result of a void-returning operation.
func Void() Result[Unit] {
	return Ok(Unit{})
}

// IsOk reports whether the Ok variant is populated.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr reports whether the Err variant is populated.
func (r Result[T]) IsErr() bool { return !r.ok }

// Get returns the payload and the fault; exactly one is meaningful,
// selected by the nil-ness of the fault.
func (r Result[T]) Get() (T, *Fault) {
	return r.value, r.fault
}

// Value returns the payload. It is meaningful only when IsOk reports true;
// reading it from an Err result is a caller-side programming error and
// yields the zero value.
func (r Result[T]) Value() T { return r.value }

// Fault returns the fault of an Err result, or nil for Ok.
func (r Result[T]) Fault() *Fault { return r.fault }

// Must returns the payload or panics with the fault. Intended for examples
// and tests where an Err is unrecoverable anyway.
func (r Result[T]) Must() T {
	if !r.ok {
		panic(r.fault)
	}
	return r.value
}

// Of runs fn inside a single recover scope and packages its outcome.
// A panic raised anywhere below fn becomes exactly one Err.
func Of[T any](fn func() T) (r Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Err[T](From(rec))
		}
	}()
	return Ok(fn())
}

// Do is Of for void-returning calls.
func Do(fn func()) Result[Unit] {
	return Of(func() Unit {
		fn()
		return Unit{}
	})
}
