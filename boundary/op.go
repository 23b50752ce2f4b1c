package boundary

import "strings"

// Kind states what a boundary operation does with ownership, mirroring the
// entry-point categories of the wrapped surface.
type Kind uint8

const (
	// KindFunction is a free function; all handle arguments are borrowed.
	KindFunction Kind = iota
	// KindConstructor allocates a native object and transfers ownership
	// of the returned handle to the caller.
	KindConstructor
	// KindFactory is a constructor whose result has shared ownership;
	// destroy releases one reference rather than necessarily freeing.
	KindFactory
	// KindMethod borrows its receiver handle for the duration of the call.
	KindMethod
	// KindGetter is a read-only method; the receiver's observable state is
	// unchanged by the call.
	KindGetter
	// KindSetter mutates the receiver in place; the mutation is committed
	// before the Ok result is constructed.
	KindSetter
	// KindDestroy consumes the receiver handle. It returns nothing and
	// cannot fail; calling it twice on the same handle is undefined.
	KindDestroy
)

// String returns the kind's lower-case name.
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindConstructor:
		return "constructor"
	case KindFactory:
		return "factory"
	case KindMethod:
		return "method"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindDestroy:
		return "destroy"
	default:
		return "invalid"
	}
}

// Shape declares how a single argument or result crosses the boundary.
// The concrete list shapes mirror the per-module vector instantiations of
// the generated native ABI.
type Shape uint8

const (
	ShapeUnit Shape = iota
	ShapeBool
	ShapeI32
	ShapeI64
	ShapeF32
	ShapeF64
	ShapeString
	ShapeBytes
	ShapeHandle    // borrowed
	ShapeOwnHandle // ownership transferred to the caller
	ShapePoint2f
	ShapeScalar
	ShapeKeyLineList
	ShapeDMatchList
	ShapeDMatchListList
	ShapeVec4fList
	ShapeI32List
)

// String returns the shape's wire name.
func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeBool:
		return "bool"
	case ShapeI32:
		return "i32"
	case ShapeI64:
		return "i64"
	case ShapeF32:
		return "f32"
	case ShapeF64:
		return "f64"
	case ShapeString:
		return "string"
	case ShapeBytes:
		return "bytes"
	case ShapeHandle:
		return "handle"
	case ShapeOwnHandle:
		return "own-handle"
	case ShapePoint2f:
		return "point2f"
	case ShapeScalar:
		return "scalar"
	case ShapeKeyLineList:
		return "list<keyline>"
	case ShapeDMatchList:
		return "list<dmatch>"
	case ShapeDMatchListList:
		return "list<list<dmatch>>"
	case ShapeVec4fList:
		return "list<vec4f>"
	case ShapeI32List:
		return "list<i32>"
	default:
		return "invalid"
	}
}

// Op describes one boundary operation: the native symbol it dispatches to
// and the declared shapes of its arguments and result. Ops are immutable
// after registration.
type Op struct {
	Namespace string
	Name      string
	Kind      Kind
	Params    []Shape
	Result    Shape
}

// Symbol returns the fully qualified "namespace#name" symbol.
func (op *Op) Symbol() string {
	return op.Namespace + "#" + op.Name
}

// Export returns the symbol mangled into an identifier exportable from a
// C or wasm build of the shim: ':', '#', '.', '-' and '/' become '_'.
func (op *Op) Export() string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '#', '.', '-', '/':
			return '_'
		}
		return r
	}, op.Symbol())
}
