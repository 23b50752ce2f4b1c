package result

import "fmt"

// Code classifies a native fault. The values mirror the wrapped library's
// status codes so a fault raised on either side of the boundary carries the
// same classification.
type Code int32

const (
	CodeUnknown           Code = 1 // fault with no native classification
	CodeError             Code = -2
	CodeInternal          Code = -3
	CodeNoMem             Code = -4
	CodeBadArg            Code = -5
	CodeBadFunc           Code = -6
	CodeNullPtr           Code = -27
	CodeBadSize           Code = -201
	CodeDivByZero         Code = -202
	CodeUnsupportedFormat Code = -210
	CodeOutOfRange        Code = -211
	CodeAssert            Code = -215
)

// String returns the short name of the code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeError:
		return "error"
	case CodeInternal:
		return "internal"
	case CodeNoMem:
		return "no_mem"
	case CodeBadArg:
		return "bad_arg"
	case CodeBadFunc:
		return "bad_func"
	case CodeNullPtr:
		return "null_ptr"
	case CodeBadSize:
		return "bad_size"
	case CodeDivByZero:
		return "div_by_zero"
	case CodeUnsupportedFormat:
		return "unsupported_format"
	case CodeOutOfRange:
		return "out_of_range"
	case CodeAssert:
		return "assert"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

// Fault describes a native fault caught at the boundary. Message is owned
// by the Fault; it never aliases storage belonging to the fault's origin.
type Fault struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("native fault [%s] %s", f.Code, f.Message)
}

// Is matches faults by code, so errors.Is(err, &Fault{Code: CodeBadArg})
// works regardless of message.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return f.Code == t.Code
}

// Faultf builds a fault with a formatted message.
func Faultf(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Raise panics with a fault. It is how in-process native code signals a
// fault; the boundary's recover scope converts it into an Err result.
func Raise(code Code, format string, args ...any) {
	panic(Faultf(code, format, args...))
}

// From classifies a recovered panic value or an error into a Fault.
// The original value is not retained: only its classification and a copy
// of its message survive the crossing.
func From(rec any) *Fault {
	switch v := rec.(type) {
	case nil:
		return Faultf(CodeUnknown, "unspecified fault")
	case *Fault:
		return &Fault{Code: v.Code, Message: v.Message}
	case error:
		return &Fault{Code: CodeUnknown, Message: v.Error()}
	case string:
		return &Fault{Code: CodeUnknown, Message: v}
	default:
		return &Fault{Code: CodeUnknown, Message: fmt.Sprint(v)}
	}
}
