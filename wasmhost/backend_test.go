package wasmhost

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/linedesc"
	"github.com/wippyai/cv-bridge/result"
)

// fakeMemory backs guest memory with a plain byte slice. Only the accessors
// the backend uses are overridden; anything else panics via the embedded nil.
type fakeMemory struct {
	api.Memory
	data []byte
}

func (m *fakeMemory) Read(offset, count uint32) ([]byte, bool) {
	if uint64(offset)+uint64(count) > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[offset : offset+count], true
}

func (m *fakeMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return false
	}
	copy(m.data[offset:], data)
	return true
}

func (m *fakeMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	if uint64(offset)+4 > uint64(len(m.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), true
}

func (m *fakeMemory) ReadUint64Le(offset uint32) (uint64, bool) {
	if uint64(offset)+8 > uint64(len(m.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), true
}

type fakeFunc struct {
	api.Function
	call func(ctx context.Context, params ...uint64) ([]uint64, error)
}

func (f *fakeFunc) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.call(ctx, params...)
}

// fakeGuest is a bump allocator plus an export table.
type fakeGuest struct {
	mem     *fakeMemory
	next    uint32
	frees   []uint32
	exports map[string]*fakeFunc
}

func newFakeGuest() *fakeGuest {
	return &fakeGuest{
		mem:     &fakeMemory{data: make([]byte, 1<<16)},
		next:    16,
		exports: map[string]*fakeFunc{},
	}
}

func (g *fakeGuest) allocFn() *fakeFunc {
	return &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		size, align := uint32(params[0]), uint32(params[1])
		g.next = (g.next + align - 1) &^ (align - 1)
		ptr := g.next
		g.next += size
		return []uint64{uint64(ptr)}, nil
	}}
}

func (g *fakeGuest) freeFn() *fakeFunc {
	return &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		g.frees = append(g.frees, uint32(params[0]))
		return nil, nil
	}}
}

// alloc reserves guest memory directly, for buffers the "guest" hands back.
func (g *fakeGuest) alloc(size uint32) uint32 {
	ptr := g.next
	g.next += size
	return ptr
}

func (g *fakeGuest) freed(ptr uint32) bool {
	for _, p := range g.frees {
		if p == ptr {
			return true
		}
	}
	return false
}

func (g *fakeGuest) backend() *Backend {
	return &Backend{
		mem:   g.mem,
		alloc: g.allocFn(),
		free:  g.freeFn(),
		lookup: func(name string) api.Function {
			fn, ok := g.exports[name]
			if !ok {
				return nil
			}
			return fn
		},
	}
}

func (g *fakeGuest) writeOk(retPtr uint32, wordA, wordB uint64) {
	binary.LittleEndian.PutUint32(g.mem.data[retPtr:], 0)
	binary.LittleEndian.PutUint64(g.mem.data[retPtr+8:], wordA)
	binary.LittleEndian.PutUint64(g.mem.data[retPtr+16:], wordB)
}

func (g *fakeGuest) writeErr(retPtr uint32, code int32, msg string) {
	ptr := g.alloc(uint32(len(msg)))
	copy(g.mem.data[ptr:], msg)
	binary.LittleEndian.PutUint32(g.mem.data[retPtr:], 1)
	binary.LittleEndian.PutUint32(g.mem.data[retPtr+4:], uint32(code))
	binary.LittleEndian.PutUint64(g.mem.data[retPtr+8:], uint64(ptr))
	binary.LittleEndian.PutUint64(g.mem.data[retPtr+16:], uint64(len(msg)))
}

var rowsOp = &boundary.Op{Namespace: "cv:wasm-test", Name: "rows", Kind: boundary.KindGetter,
	Params: []boundary.Shape{boundary.ShapeHandle}, Result: boundary.ShapeI32}

func TestDispatch_OkScalar(t *testing.T) {
	g := newFakeGuest()
	var gotParams []uint64
	g.exports[rowsOp.Export()] = &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		gotParams = params
		g.writeOk(uint32(params[len(params)-1]), uint64(uint32(480)), 0)
		return nil, nil
	}}

	r := boundary.Invoke[int32](context.Background(), g.backend(), rowsOp, handle.Handle(9))
	if !r.IsOk() || r.Value() != 480 {
		t.Fatalf("got %+v", r)
	}
	// Lowered handle word plus the return area pointer.
	if len(gotParams) != 2 || gotParams[0] != 9 {
		t.Fatalf("guest saw params %v", gotParams)
	}
}

func TestDispatch_GuestFault(t *testing.T) {
	g := newFakeGuest()
	var msgPtr uint32
	g.exports[rowsOp.Export()] = &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		retPtr := uint32(params[len(params)-1])
		g.writeErr(retPtr, int32(result.CodeBadArg), "rows: bad matrix")
		msgPtr, _ = g.mem.ReadUint32Le(retPtr + 8)
		return nil, nil
	}}

	r := boundary.Invoke[int32](context.Background(), g.backend(), rowsOp, handle.Handle(9))
	if !r.IsErr() {
		t.Fatal("expected a fault")
	}
	if r.Fault().Code != result.CodeBadArg || r.Fault().Message != "rows: bad matrix" {
		t.Fatalf("got %v", r.Fault())
	}
	if !g.freed(msgPtr) {
		t.Fatal("fault message buffer was not freed")
	}
}

func TestDispatch_MissingExport(t *testing.T) {
	g := newFakeGuest()
	r := boundary.Invoke[int32](context.Background(), g.backend(), rowsOp, handle.Handle(1))
	if !r.IsErr() || r.Fault().Code != result.CodeBadFunc {
		t.Fatalf("got %+v", r)
	}
}

func TestDispatch_GuestTrap(t *testing.T) {
	g := newFakeGuest()
	g.exports[rowsOp.Export()] = &fakeFunc{call: func(context.Context, ...uint64) ([]uint64, error) {
		return nil, context.DeadlineExceeded
	}}

	r := boundary.Invoke[int32](context.Background(), g.backend(), rowsOp, handle.Handle(1))
	if !r.IsErr() || r.Fault().Code != result.CodeError {
		t.Fatalf("got %+v", r)
	}
}

func TestDispatch_ArgumentCount(t *testing.T) {
	g := newFakeGuest()
	g.exports[rowsOp.Export()] = &fakeFunc{call: func(context.Context, ...uint64) ([]uint64, error) {
		t.Fatal("guest must not be called")
		return nil, nil
	}}

	r := boundary.Invoke[int32](context.Background(), g.backend(), rowsOp)
	if !r.IsErr() || r.Fault().Code != result.CodeBadArg {
		t.Fatalf("got %+v", r)
	}
}

func TestDispatch_StringArgumentLowering(t *testing.T) {
	op := &boundary.Op{Namespace: "cv:wasm-test", Name: "load", Kind: boundary.KindFactory,
		Params: []boundary.Shape{boundary.ShapeString, boundary.ShapeF64}, Result: boundary.ShapeOwnHandle}

	g := newFakeGuest()
	var argPtr uint32
	g.exports[op.Export()] = &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		// string lowers as {ptr, len}, then the f64 word, then retPtr.
		if len(params) != 4 {
			t.Fatalf("guest saw %d params", len(params))
		}
		argPtr = uint32(params[0])
		buf, ok := g.mem.Read(argPtr, uint32(params[1]))
		if !ok || string(buf) != "model.yml" {
			t.Fatalf("guest read %q", buf)
		}
		if math.Float64frombits(params[2]) != 0.25 {
			t.Fatalf("f64 word %v", math.Float64frombits(params[2]))
		}
		g.writeOk(uint32(params[3]), 42, 0)
		return nil, nil
	}}

	r := boundary.Invoke[handle.Handle](context.Background(), g.backend(), op, "model.yml", 0.25)
	if !r.IsOk() || r.Value() != 42 {
		t.Fatalf("got %+v", r)
	}
	if !g.freed(argPtr) {
		t.Fatal("argument buffer was not released after the call")
	}
}

func TestDispatch_KeyLineListResult(t *testing.T) {
	op := &boundary.Op{Namespace: "cv:wasm-test", Name: "detect", Kind: boundary.KindMethod,
		Params: []boundary.Shape{boundary.ShapeHandle}, Result: boundary.ShapeKeyLineList}

	want := []linedesc.KeyLine{
		{ClassID: 0, Octave: 0, Pt: cvcore.Point2f{X: 31.5, Y: 8}, StartPointY: 8, EndPointX: 63,
			EndPointY: 8, EPointInOctaveX: 63, LineLength: 63, NumOfPixels: 64},
		{ClassID: 1, Octave: 1, Pt: cvcore.Point2f{X: 15.5, Y: 24}, Angle: 1.5,
			StartPointY: 24, EndPointX: 31, EndPointY: 24, LineLength: 31, NumOfPixels: 32},
	}

	g := newFakeGuest()
	var bufPtr uint32
	g.exports[op.Export()] = &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		enc := encodeKeyLines(want)
		bufPtr = g.alloc(uint32(len(enc)))
		copy(g.mem.data[bufPtr:], enc)
		g.writeOk(uint32(params[len(params)-1]), uint64(bufPtr), uint64(len(want)))
		return nil, nil
	}}

	r := boundary.Invoke[[]linedesc.KeyLine](context.Background(), g.backend(), op, handle.Handle(3))
	if !r.IsOk() {
		t.Fatalf("got %v", r.Fault())
	}
	got := r.Value()
	if len(got) != len(want) {
		t.Fatalf("%d keylines", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keyline %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if !g.freed(bufPtr) {
		t.Fatal("result buffer was not freed")
	}
}

func TestDispatch_NestedDMatchResult(t *testing.T) {
	op := &boundary.Op{Namespace: "cv:wasm-test", Name: "knn", Kind: boundary.KindMethod,
		Params: []boundary.Shape{boundary.ShapeHandle}, Result: boundary.ShapeDMatchListList}

	want := [][]linedesc.DMatch{
		{{QueryIdx: 0, TrainIdx: 0, Distance: 0}, {QueryIdx: 0, TrainIdx: 2, Distance: 14}},
		{{QueryIdx: 1, TrainIdx: 1, Distance: 3}},
	}

	g := newFakeGuest()
	g.exports[op.Export()] = &fakeFunc{call: func(_ context.Context, params ...uint64) ([]uint64, error) {
		outer := g.alloc(uint32(len(want) * pairStride))
		for i, row := range want {
			enc := encodeDMatches(row)
			inner := g.alloc(uint32(len(enc)))
			copy(g.mem.data[inner:], enc)
			binary.LittleEndian.PutUint32(g.mem.data[outer+uint32(i*pairStride):], inner)
			binary.LittleEndian.PutUint32(g.mem.data[outer+uint32(i*pairStride)+4:], uint32(len(row)))
		}
		g.writeOk(uint32(params[len(params)-1]), uint64(outer), uint64(len(want)))
		return nil, nil
	}}

	r := boundary.Invoke[[][]linedesc.DMatch](context.Background(), g.backend(), op, handle.Handle(5))
	if !r.IsOk() {
		t.Fatalf("got %v", r.Fault())
	}
	got := r.Value()
	if len(got) != 2 || len(got[0]) != 2 || len(got[1]) != 1 {
		t.Fatalf("row shape %v", got)
	}
	if got[0][1].TrainIdx != 2 || got[0][1].Distance != 14 {
		t.Fatalf("got %+v", got[0][1])
	}
}

func TestKeyLineCodec_RoundTrip(t *testing.T) {
	in := linedesc.KeyLine{
		Angle: -0.5, ClassID: 7, Octave: 2, Pt: cvcore.Point2f{X: 1, Y: 2},
		Response: 0.9, Size: 128, StartPointX: 3, StartPointY: 4, EndPointX: 5, EndPointY: 6,
		SPointInOctaveX: 7, SPointInOctaveY: 8, EPointInOctaveX: 9, EPointInOctaveY: 10,
		LineLength: 11, NumOfPixels: -12,
	}
	out := decodeKeyLines(encodeKeyLines([]linedesc.KeyLine{in}))
	if len(out) != 1 || out[0] != in {
		t.Fatalf("got %+v", out)
	}
}
