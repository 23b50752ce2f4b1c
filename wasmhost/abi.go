package wasmhost

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/linedesc"
	"github.com/wippyai/cv-bridge/result"
)

// Flat record strides in guest memory. Records are packed little-endian
// f32/i32 fields in declaration order.
const (
	keyLineStride = 68
	dMatchStride  = 16
	vec4fStride   = 16
	pairStride    = 8 // {u32 ptr, u32 len} rows of a nested list
)

type allocation struct {
	ptr  uint32
	size uint32
}

// callFrame tracks guest allocations made while lowering one call so they
// are released when the call completes, successful or not.
type callFrame struct {
	backend *Backend
	ctx     context.Context
	allocs  []allocation
}

func (f *callFrame) allocate(size, align uint32) (uint32, error) {
	res, err := f.backend.alloc.Call(f.ctx, uint64(size), uint64(align))
	if err != nil {
		return 0, result.Faultf(result.CodeNoMem, "guest allocation failed: %v", err)
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		return 0, result.Faultf(result.CodeNoMem, "guest allocator returned null for %d bytes", size)
	}
	f.allocs = append(f.allocs, allocation{ptr: ptr, size: size})
	return ptr, nil
}

func (f *callFrame) release() {
	for i := len(f.allocs) - 1; i >= 0; i-- {
		a := f.allocs[i]
		_, _ = f.backend.free.Call(f.ctx, uint64(a.ptr), uint64(a.size), 1)
	}
	f.allocs = nil
}

// freeGuest releases a guest-allocated result buffer immediately after its
// contents were copied out.
func (f *callFrame) freeGuest(ptr, size uint32) {
	if ptr == 0 || size == 0 {
		return
	}
	_, _ = f.backend.free.Call(f.ctx, uint64(ptr), uint64(size), 1)
}

// writeBuffer copies data into fresh guest memory and returns its pointer.
func (f *callFrame) writeBuffer(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	ptr, err := f.allocate(uint32(len(data)), 1)
	if err != nil {
		return 0, err
	}
	if !f.backend.mem.Write(ptr, data) {
		return 0, result.Faultf(result.CodeInternal, "guest memory write out of range")
	}
	return ptr, nil
}

func (f *callFrame) readBuffer(ptr, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	data, ok := f.backend.mem.Read(ptr, size)
	if !ok {
		return nil, result.Faultf(result.CodeInternal, "guest memory read out of range")
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// lower flattens one argument into its wasm core-type words.
func (f *callFrame) lower(shape boundary.Shape, arg any) ([]uint64, error) {
	badArg := func() ([]uint64, error) {
		return nil, result.Faultf(result.CodeBadArg, "argument has type %T, shape %s expected", arg, shape)
	}

	switch shape {
	case boundary.ShapeBool:
		v, ok := arg.(bool)
		if !ok {
			return badArg()
		}
		if v {
			return []uint64{1}, nil
		}
		return []uint64{0}, nil

	case boundary.ShapeI32:
		v, ok := arg.(int32)
		if !ok {
			return badArg()
		}
		return []uint64{uint64(uint32(v))}, nil

	case boundary.ShapeI64:
		v, ok := arg.(int64)
		if !ok {
			return badArg()
		}
		return []uint64{uint64(v)}, nil

	case boundary.ShapeF32:
		v, ok := arg.(float32)
		if !ok {
			return badArg()
		}
		return []uint64{uint64(math.Float32bits(v))}, nil

	case boundary.ShapeF64:
		v, ok := arg.(float64)
		if !ok {
			return badArg()
		}
		return []uint64{math.Float64bits(v)}, nil

	case boundary.ShapeHandle, boundary.ShapeOwnHandle:
		v, ok := arg.(handle.Handle)
		if !ok {
			return badArg()
		}
		return []uint64{uint64(v)}, nil

	case boundary.ShapeString:
		v, ok := arg.(string)
		if !ok {
			return badArg()
		}
		ptr, err := f.writeBuffer([]byte(v))
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	case boundary.ShapeBytes:
		v, ok := arg.([]byte)
		if !ok {
			return badArg()
		}
		ptr, err := f.writeBuffer(v)
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	case boundary.ShapePoint2f:
		v, ok := arg.(cvcore.Point2f)
		if !ok {
			return badArg()
		}
		return []uint64{uint64(math.Float32bits(v.X)), uint64(math.Float32bits(v.Y))}, nil

	case boundary.ShapeScalar:
		v, ok := arg.(cvcore.Scalar)
		if !ok {
			return badArg()
		}
		return []uint64{
			math.Float64bits(v.V0), math.Float64bits(v.V1),
			math.Float64bits(v.V2), math.Float64bits(v.V3),
		}, nil

	case boundary.ShapeKeyLineList:
		v, ok := arg.([]linedesc.KeyLine)
		if !ok {
			return badArg()
		}
		ptr, err := f.writeBuffer(encodeKeyLines(v))
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	case boundary.ShapeDMatchList:
		v, ok := arg.([]linedesc.DMatch)
		if !ok {
			return badArg()
		}
		ptr, err := f.writeBuffer(encodeDMatches(v))
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	case boundary.ShapeVec4fList:
		v, ok := arg.([]cvcore.Vec4f)
		if !ok {
			return badArg()
		}
		ptr, err := f.writeBuffer(encodeVec4fs(v))
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	case boundary.ShapeI32List:
		v, ok := arg.([]int32)
		if !ok {
			return badArg()
		}
		buf := make([]byte, len(v)*4)
		for i, n := range v {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(n))
		}
		ptr, err := f.writeBuffer(buf)
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(len(v))}, nil

	default:
		return nil, result.Faultf(result.CodeInternal, "shape %s cannot cross as an argument", shape)
	}
}

// liftFault decodes the error arm of the return area. The guest owns the
// message buffer until the host copies and frees it here.
func (f *callFrame) liftFault(retPtr uint32) error {
	code, _ := f.backend.readU32(retPtr + 4)
	wordA, _ := f.backend.readU64(retPtr + 8)
	wordB, _ := f.backend.readU64(retPtr + 16)

	msgPtr, msgLen := uint32(wordA), uint32(wordB)
	msg, err := f.readBuffer(msgPtr, msgLen)
	if err != nil {
		return result.Faultf(result.Code(int32(code)), "(fault message unreadable)")
	}
	f.freeGuest(msgPtr, msgLen)
	return &result.Fault{Code: result.Code(int32(code)), Message: string(msg)}
}

// lift decodes the ok arm of the return area into the shape's Go value.
func (f *callFrame) lift(shape boundary.Shape, retPtr uint32) (any, error) {
	wordA, okA := f.backend.readU64(retPtr + 8)
	wordB, okB := f.backend.readU64(retPtr + 16)
	if !okA || !okB {
		return nil, result.Faultf(result.CodeInternal, "return area out of range")
	}

	switch shape {
	case boundary.ShapeUnit:
		return nil, nil
	case boundary.ShapeBool:
		return wordA != 0, nil
	case boundary.ShapeI32:
		return int32(uint32(wordA)), nil
	case boundary.ShapeI64:
		return int64(wordA), nil
	case boundary.ShapeF32:
		return math.Float32frombits(uint32(wordA)), nil
	case boundary.ShapeF64:
		return math.Float64frombits(wordA), nil
	case boundary.ShapeHandle, boundary.ShapeOwnHandle:
		return handle.Handle(uint32(wordA)), nil
	case boundary.ShapePoint2f:
		return cvcore.Point2f{
			X: math.Float32frombits(uint32(wordA)),
			Y: math.Float32frombits(uint32(wordB)),
		}, nil

	case boundary.ShapeString:
		buf, err := f.liftBuffer(wordA, wordB, 1)
		if err != nil {
			return nil, err
		}
		return string(buf), nil

	case boundary.ShapeBytes:
		return f.liftBuffer(wordA, wordB, 1)

	case boundary.ShapeKeyLineList:
		buf, err := f.liftBuffer(wordA, wordB, keyLineStride)
		if err != nil {
			return nil, err
		}
		return decodeKeyLines(buf), nil

	case boundary.ShapeDMatchList:
		buf, err := f.liftBuffer(wordA, wordB, dMatchStride)
		if err != nil {
			return nil, err
		}
		return decodeDMatches(buf), nil

	case boundary.ShapeVec4fList:
		buf, err := f.liftBuffer(wordA, wordB, vec4fStride)
		if err != nil {
			return nil, err
		}
		return decodeVec4fs(buf), nil

	case boundary.ShapeI32List:
		buf, err := f.liftBuffer(wordA, wordB, 4)
		if err != nil {
			return nil, err
		}
		out := make([]int32, len(buf)/4)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		return out, nil

	case boundary.ShapeDMatchListList:
		outer, err := f.liftBuffer(wordA, wordB, pairStride)
		if err != nil {
			return nil, err
		}
		out := make([][]linedesc.DMatch, 0, len(outer)/pairStride)
		for off := 0; off+pairStride <= len(outer); off += pairStride {
			ptr := binary.LittleEndian.Uint32(outer[off:])
			count := binary.LittleEndian.Uint32(outer[off+4:])
			inner, err := f.liftBuffer(uint64(ptr), uint64(count), dMatchStride)
			if err != nil {
				return nil, err
			}
			out = append(out, decodeDMatches(inner))
		}
		return out, nil

	default:
		return nil, result.Faultf(result.CodeInternal, "shape %s cannot cross as a result", shape)
	}
}

// liftBuffer copies a {ptr, count} result buffer out of guest memory and
// frees it. count is in records of the given stride.
func (f *callFrame) liftBuffer(wordA, wordB uint64, stride uint32) ([]byte, error) {
	ptr, count := uint32(wordA), uint32(wordB)
	size := count * stride
	buf, err := f.readBuffer(ptr, size)
	if err != nil {
		return nil, err
	}
	f.freeGuest(ptr, size)
	return buf, nil
}

func encodeKeyLines(lines []linedesc.KeyLine) []byte {
	buf := make([]byte, len(lines)*keyLineStride)
	for i, kl := range lines {
		putKeyLine(buf[i*keyLineStride:], kl)
	}
	return buf
}

func putKeyLine(b []byte, kl linedesc.KeyLine) {
	putF32 := func(off int, v float32) { binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v)) }
	putI32 := func(off int, v int32) { binary.LittleEndian.PutUint32(b[off:], uint32(v)) }

	putF32(0, kl.Angle)
	putI32(4, kl.ClassID)
	putI32(8, kl.Octave)
	putF32(12, kl.Pt.X)
	putF32(16, kl.Pt.Y)
	putF32(20, kl.Response)
	putF32(24, kl.Size)
	putF32(28, kl.StartPointX)
	putF32(32, kl.StartPointY)
	putF32(36, kl.EndPointX)
	putF32(40, kl.EndPointY)
	putF32(44, kl.SPointInOctaveX)
	putF32(48, kl.SPointInOctaveY)
	putF32(52, kl.EPointInOctaveX)
	putF32(56, kl.EPointInOctaveY)
	putF32(60, kl.LineLength)
	putI32(64, kl.NumOfPixels)
}

func decodeKeyLines(buf []byte) []linedesc.KeyLine {
	out := make([]linedesc.KeyLine, 0, len(buf)/keyLineStride)
	for off := 0; off+keyLineStride <= len(buf); off += keyLineStride {
		b := buf[off:]
		f32 := func(o int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[o:])) }
		i32 := func(o int) int32 { return int32(binary.LittleEndian.Uint32(b[o:])) }
		out = append(out, linedesc.KeyLine{
			Angle:           f32(0),
			ClassID:         i32(4),
			Octave:          i32(8),
			Pt:              cvcore.Point2f{X: f32(12), Y: f32(16)},
			Response:        f32(20),
			Size:            f32(24),
			StartPointX:     f32(28),
			StartPointY:     f32(32),
			EndPointX:       f32(36),
			EndPointY:       f32(40),
			SPointInOctaveX: f32(44),
			SPointInOctaveY: f32(48),
			EPointInOctaveX: f32(52),
			EPointInOctaveY: f32(56),
			LineLength:      f32(60),
			NumOfPixels:     i32(64),
		})
	}
	return out
}

func encodeDMatches(matches []linedesc.DMatch) []byte {
	buf := make([]byte, len(matches)*dMatchStride)
	for i, m := range matches {
		b := buf[i*dMatchStride:]
		binary.LittleEndian.PutUint32(b[0:], uint32(m.QueryIdx))
		binary.LittleEndian.PutUint32(b[4:], uint32(m.TrainIdx))
		binary.LittleEndian.PutUint32(b[8:], uint32(m.ImgIdx))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(m.Distance))
	}
	return buf
}

func decodeDMatches(buf []byte) []linedesc.DMatch {
	out := make([]linedesc.DMatch, 0, len(buf)/dMatchStride)
	for off := 0; off+dMatchStride <= len(buf); off += dMatchStride {
		b := buf[off:]
		out = append(out, linedesc.DMatch{
			QueryIdx: int32(binary.LittleEndian.Uint32(b[0:])),
			TrainIdx: int32(binary.LittleEndian.Uint32(b[4:])),
			ImgIdx:   int32(binary.LittleEndian.Uint32(b[8:])),
			Distance: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		})
	}
	return out
}

func encodeVec4fs(vecs []cvcore.Vec4f) []byte {
	buf := make([]byte, len(vecs)*vec4fStride)
	for i, v := range vecs {
		b := buf[i*vec4fStride:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.V0))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.V1))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.V2))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(v.V3))
	}
	return buf
}

func decodeVec4fs(buf []byte) []cvcore.Vec4f {
	out := make([]cvcore.Vec4f, 0, len(buf)/vec4fStride)
	for off := 0; off+vec4fStride <= len(buf); off += vec4fStride {
		b := buf[off:]
		out = append(out, cvcore.Vec4f{
			V0: math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
			V1: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			V2: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
			V3: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		})
	}
	return out
}
