package boundary

import "testing"

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	op := &Op{Namespace: "cv:test", Name: "thing.do", Kind: KindMethod,
		Params: []Shape{ShapeHandle, ShapeI32}, Result: ShapeI32}

	if err := reg.Register(op); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got := reg.Lookup("cv:test#thing.do"); got != op {
		t.Fatal("Lookup did not return the registered op")
	}
	if reg.Lookup("cv:test#missing") != nil {
		t.Fatal("Lookup of unknown symbol should return nil")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() == %d, want 1", reg.Len())
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	op := &Op{Namespace: "cv:test", Name: "dup", Kind: KindFunction}
	if err := reg.Register(op); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := reg.Register(op); err == nil {
		t.Fatal("duplicate Register should fail")
	}
}

func TestRegistry_NamespacesAndOps(t *testing.T) {
	reg := NewRegistry()
	for _, spec := range []struct{ ns, name string }{
		{"cv:b", "z"}, {"cv:a", "y"}, {"cv:a", "x"},
	} {
		if err := reg.Register(&Op{Namespace: spec.ns, Name: spec.name}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	ns := reg.Namespaces()
	if len(ns) != 2 || ns[0] != "cv:a" || ns[1] != "cv:b" {
		t.Fatalf("Namespaces() == %v", ns)
	}

	ops := reg.Ops("cv:a")
	if len(ops) != 2 || ops[0].Name != "x" || ops[1].Name != "y" {
		t.Fatalf("Ops(cv:a) misordered: %v", ops)
	}
	if all := reg.Ops(""); len(all) != 3 {
		t.Fatalf("Ops(\"\") returned %d ops, want 3", len(all))
	}
}

func TestMustOp_PanicsOnDuplicate(t *testing.T) {
	MustOp("cv:registry-test", "once", KindFunction, nil, ShapeUnit)
	defer func() {
		if recover() == nil {
			t.Fatal("second MustOp with the same symbol should panic")
		}
	}()
	MustOp("cv:registry-test", "once", KindFunction, nil, ShapeUnit)
}

func TestOp_SymbolAndExport(t *testing.T) {
	op := &Op{Namespace: "cv:line-descriptor", Name: "binary-descriptor.detect"}
	if op.Symbol() != "cv:line-descriptor#binary-descriptor.detect" {
		t.Fatalf("Symbol() == %q", op.Symbol())
	}
	if op.Export() != "cv_line_descriptor_binary_descriptor_detect" {
		t.Fatalf("Export() == %q", op.Export())
	}
}

func TestShapeAndKind_Names(t *testing.T) {
	if ShapeDMatchListList.String() != "list<list<dmatch>>" {
		t.Fatalf("shape name %q", ShapeDMatchListList)
	}
	if KindFactory.String() != "factory" {
		t.Fatalf("kind name %q", KindFactory)
	}
}
