package hostlib

import (
	"context"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/handle"
	"github.com/wippyai/cv-bridge/result"
)

// mat is the host's stand-in for a native matrix: geometry plus row-major
// interleaved element data.
type mat struct {
	rows    int32
	cols    int32
	matType int32
	data    []byte
}

func (m *mat) empty() bool { return m.rows == 0 || m.cols == 0 }

// elemSize returns the byte size of one element including channels.
func (m *mat) elemSize() int32 {
	depth := m.matType & 7
	channels := (m.matType >> 3) + 1
	var sz int32
	switch depth {
	case 0, 1: // 8U, 8S
		sz = 1
	case 2, 3: // 16U, 16S
		sz = 2
	case 4, 5: // 32S, 32F
		sz = 4
	case 6: // 64F
		sz = 8
	default:
		result.Raise(result.CodeUnsupportedFormat, "unknown mat depth %d", depth)
	}
	return sz * channels
}

func newMat(rows, cols, matType int32) *mat {
	if rows < 0 || cols < 0 {
		result.Raise(result.CodeBadSize, "negative mat dimensions %dx%d", rows, cols)
	}
	m := &mat{rows: rows, cols: cols, matType: matType}
	m.data = make([]byte, int(rows)*int(cols)*int(m.elemSize()))
	return m
}

func (m *mat) clone() *mat {
	c := &mat{rows: m.rows, cols: m.cols, matType: m.matType}
	c.data = make([]byte, len(m.data))
	copy(c.data, m.data)
	return c
}

// matAt fetches the mat behind a handle, faulting on invalid handles.
func (h *Host) matAt(hd handle.Handle) *mat {
	return h.get(hd, typeMat).(*mat)
}

// optMatAt is matAt for optional Mat arguments, where a zero handle means
// "not supplied".
func (h *Host) optMatAt(hd handle.Handle) *mat {
	if hd == 0 {
		return nil
	}
	return h.matAt(hd)
}

// insertMat stores an owned mat and returns its handle.
func (h *Host) insertMat(m *mat) handle.Handle {
	hd := h.table.Insert(typeMat, m)
	if hd == 0 {
		result.Raise(result.CodeError, "handle table closed")
	}
	return hd
}

// requireImage faults if m is unusable as an input image.
func requireImage(m *mat) {
	if m.empty() {
		result.Raise(result.CodeBadSize, "empty input image")
	}
}

// requireGray faults unless m is a non-empty single channel 8-bit image.
func requireGray(m *mat) {
	requireImage(m)
	if m.matType != cvcore.MatType8UC1 {
		result.Raise(result.CodeUnsupportedFormat, "expected 8UC1 image, got type %d", m.matType)
	}
}

func (h *Host) coreFuncs() map[string]hostFunc {
	return map[string]hostFunc{
		"cv:core#mat.new": func(_ context.Context, _ []any) any {
			return h.insertMat(&mat{matType: cvcore.MatType8UC1})
		},
		"cv:core#mat.new-with-size": func(_ context.Context, args []any) any {
			return h.insertMat(newMat(argI32(args, 0), argI32(args, 1), argI32(args, 2)))
		},
		"cv:core#mat.from-bytes": func(_ context.Context, args []any) any {
			rows, cols, matType := argI32(args, 0), argI32(args, 1), argI32(args, 2)
			data := argBytes(args, 3)
			m := newMat(rows, cols, matType)
			if len(data) != len(m.data) {
				result.Raise(result.CodeBadSize,
					"pixel buffer is %d bytes, %dx%d type %d needs %d", len(data), rows, cols, matType, len(m.data))
			}
			copy(m.data, data)
			return h.insertMat(m)
		},
		"cv:core#mat.rows": func(_ context.Context, args []any) any {
			return h.matAt(argHandle(args, 0)).rows
		},
		"cv:core#mat.cols": func(_ context.Context, args []any) any {
			return h.matAt(argHandle(args, 0)).cols
		},
		"cv:core#mat.mat-type": func(_ context.Context, args []any) any {
			return h.matAt(argHandle(args, 0)).matType
		},
		"cv:core#mat.empty": func(_ context.Context, args []any) any {
			return h.matAt(argHandle(args, 0)).empty()
		},
		"cv:core#mat.bytes": func(_ context.Context, args []any) any {
			m := h.matAt(argHandle(args, 0))
			out := make([]byte, len(m.data))
			copy(out, m.data)
			return out
		},
		"cv:core#mat.clone": func(_ context.Context, args []any) any {
			return h.insertMat(h.matAt(argHandle(args, 0)).clone())
		},
		"cv:core#mat.destroy": func(_ context.Context, args []any) any {
			h.remove(argHandle(args, 0))
			return nil
		},
	}
}
