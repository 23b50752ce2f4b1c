package result

import (
	"errors"
	"fmt"
	"testing"
)

func TestResult_Variants(t *testing.T) {
	ok := Ok(int32(42))
	if !ok.IsOk() || ok.IsErr() {
		t.Fatal("Ok result reports wrong variant")
	}
	if ok.Value() != 42 {
		t.Fatalf("Expected 42, got %v", ok.Value())
	}
	if ok.Fault() != nil {
		t.Fatal("Ok result carries a fault")
	}

	err := Err[int32](Faultf(CodeBadArg, "bad"))
	if err.IsOk() || !err.IsErr() {
		t.Fatal("Err result reports wrong variant")
	}
	if err.Fault().Code != CodeBadArg {
		t.Fatalf("Expected bad_arg, got %s", err.Fault().Code)
	}

	v, f := err.Get()
	if v != 0 || f == nil {
		t.Fatal("Get on Err should return zero value and fault")
	}
}

func TestErr_NilFaultNormalized(t *testing.T) {
	r := Err[string](nil)
	if !r.IsErr() {
		t.Fatal("Expected Err variant")
	}
	if r.Fault() == nil || r.Fault().Code != CodeUnknown {
		t.Fatalf("nil fault should normalize to unknown, got %v", r.Fault())
	}
}

func TestMust_PanicsOnErr(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Must on Err should panic")
		}
	}()
	Err[int](Faultf(CodeError, "boom")).Must()
}

func TestOf_ContainsRaisedFault(t *testing.T) {
	r := Of(func() int32 {
		Raise(CodeBadSize, "empty input: %d rows", 0)
		return 0
	})
	if !r.IsErr() {
		t.Fatal("Expected Err after Raise")
	}
	if r.Fault().Code != CodeBadSize {
		t.Fatalf("Expected bad_size, got %s", r.Fault().Code)
	}
	if r.Fault().Message != "empty input: 0 rows" {
		t.Fatalf("Unexpected message %q", r.Fault().Message)
	}
}

func TestOf_ContainsForeignPanic(t *testing.T) {
	r := Of(func() int { panic("unexpected state") })
	if !r.IsErr() {
		t.Fatal("Expected Err after panic")
	}
	if r.Fault().Code != CodeUnknown {
		t.Fatalf("Foreign panic should classify as unknown, got %s", r.Fault().Code)
	}
	if r.Fault().Message != "unexpected state" {
		t.Fatalf("Unexpected message %q", r.Fault().Message)
	}
}

func TestDo_Ok(t *testing.T) {
	ran := false
	r := Do(func() { ran = true })
	if !ran || !r.IsOk() {
		t.Fatal("Do did not run or reported Err")
	}
}

func TestFrom_Classification(t *testing.T) {
	cases := []struct {
		name string
		in   any
		code Code
		msg  string
	}{
		{"nil", nil, CodeUnknown, "unspecified fault"},
		{"fault", Faultf(CodeNullPtr, "null"), CodeNullPtr, "null"},
		{"error", errors.New("plain"), CodeUnknown, "plain"},
		{"string", "text", CodeUnknown, "text"},
		{"other", 17, CodeUnknown, "17"},
	}
	for _, tc := range cases {
		f := From(tc.in)
		if f.Code != tc.code || f.Message != tc.msg {
			t.Errorf("%s: got [%s] %q, want [%s] %q", tc.name, f.Code, f.Message, tc.code, tc.msg)
		}
	}
}

func TestFrom_CopiesFault(t *testing.T) {
	orig := Faultf(CodeAssert, "assert")
	got := From(orig)
	if got == orig {
		t.Fatal("From should copy the fault, not retain it")
	}
	if got.Code != orig.Code || got.Message != orig.Message {
		t.Fatal("Copy should preserve classification and message")
	}
}

func TestFault_ErrorsIs(t *testing.T) {
	var err error = Faultf(CodeOutOfRange, "index 9 out of range")
	if !errors.Is(err, &Fault{Code: CodeOutOfRange}) {
		t.Fatal("errors.Is should match by code")
	}
	if errors.Is(err, &Fault{Code: CodeBadArg}) {
		t.Fatal("errors.Is should not match a different code")
	}
}

func TestCode_String(t *testing.T) {
	if CodeBadArg.String() != "bad_arg" {
		t.Fatalf("Unexpected name %q", CodeBadArg)
	}
	if got := Code(-999).String(); got != fmt.Sprintf("code(%d)", -999) {
		t.Fatalf("Unexpected fallback %q", got)
	}
}
