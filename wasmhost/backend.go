// Package wasmhost dispatches boundary operations to a wasm build of the
// native shim running under wazero. Each operation is an exported guest
// function named by Op.Export; results come back through a caller-allocated
// return area so the tagged ok/err convention survives the wasm ABI.
package wasmhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/result"
)

// Return area layout, allocated per call in guest memory:
//
//	offset 0:  u32 tag (0 ok, 1 err)
//	offset 4:  i32 fault code (err only)
//	offset 8:  u64 word A (scalar bits, handle, or buffer ptr)
//	offset 16: u64 word B (buffer length, or 0)
const (
	retAreaSize  = 24
	retAreaAlign = 8
)

// Guest allocator exports, following the canonical ABI naming.
const (
	exportAlloc = "cabi_alloc"
	exportFree  = "cabi_free"
)

// Backend dispatches operations into one instantiated guest module. Guest
// memory is single-threaded, so calls are serialized.
type Backend struct {
	mem    api.Memory
	alloc  api.Function
	free   api.Function
	lookup func(name string) api.Function

	mu sync.Mutex

	rt  wazero.Runtime
	mod api.Module
}

// New compiles and instantiates a guest binary and wires a backend to it.
func New(ctx context.Context, guest []byte) (*Backend, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, guest)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compiling guest module: %w", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("cvshim"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiating guest module: %w", err)
	}

	b, err := FromModule(mod)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	b.rt = rt
	return b, nil
}

// FromModule wires a backend to an already instantiated module.
func FromModule(mod api.Module) (*Backend, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("guest module exports no memory")
	}
	alloc := mod.ExportedFunction(exportAlloc)
	free := mod.ExportedFunction(exportFree)
	if alloc == nil || free == nil {
		return nil, fmt.Errorf("guest module must export %s and %s", exportAlloc, exportFree)
	}
	return &Backend{
		mem:    mem,
		alloc:  alloc,
		free:   free,
		lookup: mod.ExportedFunction,
		mod:    mod,
	}, nil
}

// Close tears down the guest instance.
func (b *Backend) Close(ctx context.Context) error {
	if b.rt != nil {
		return b.rt.Close(ctx)
	}
	if b.mod != nil {
		return b.mod.Close(ctx)
	}
	return nil
}

// Dispatch implements boundary.Dispatcher.
func (b *Backend) Dispatch(ctx context.Context, op *boundary.Op, args []any) (any, error) {
	fn := b.lookup(op.Export())
	if fn == nil {
		return nil, result.Faultf(result.CodeBadFunc, "guest exports no %s", op.Export())
	}
	if len(args) != len(op.Params) {
		return nil, result.Faultf(result.CodeBadArg, "%s: got %d arguments, want %d", op.Symbol(), len(args), len(op.Params))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	frame := &callFrame{backend: b, ctx: ctx}
	defer frame.release()

	words := make([]uint64, 0, len(args)*2+1)
	for i, shape := range op.Params {
		w, err := frame.lower(shape, args[i])
		if err != nil {
			return nil, err
		}
		words = append(words, w...)
	}

	retPtr, err := frame.allocate(retAreaSize, retAreaAlign)
	if err != nil {
		return nil, err
	}
	words = append(words, uint64(retPtr))

	Logger().Debug("guest call", zap.String("export", op.Export()))
	if _, err := fn.Call(ctx, words...); err != nil {
		return nil, result.Faultf(result.CodeError, "%s: guest trap: %v", op.Symbol(), err)
	}

	tag, ok := b.readU32(retPtr)
	if !ok {
		return nil, result.Faultf(result.CodeInternal, "%s: return area out of range", op.Symbol())
	}
	if tag != 0 {
		return nil, frame.liftFault(retPtr)
	}
	return frame.lift(op.Result, retPtr)
}

func (b *Backend) readU32(ptr uint32) (uint32, bool) {
	return b.mem.ReadUint32Le(ptr)
}

func (b *Backend) readU64(ptr uint32) (uint64, bool) {
	return b.mem.ReadUint64Le(ptr)
}
