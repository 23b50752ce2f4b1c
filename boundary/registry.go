package boundary

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry holds every declared boundary operation keyed by its
// "namespace#name" symbol. One process-wide registry exists; surface
// packages populate it from their declarative tables at init time.
type Registry struct {
	ops map[string]*Op
	mu  sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Op)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds an op, rejecting duplicate symbols.
func (r *Registry) Register(op *Op) error {
	sym := op.Symbol()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.ops[sym]; dup {
		return fmt.Errorf("boundary: duplicate operation %q", sym)
	}
	r.ops[sym] = op
	Logger().Debug("registered boundary op",
		zap.String("symbol", sym),
		zap.Stringer("kind", op.Kind))
	return nil
}

// Lookup returns the op for a symbol, or nil.
func (r *Registry) Lookup(symbol string) *Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[symbol]
}

// Namespaces returns the sorted distinct namespaces with registered ops.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, op := range r.ops {
		seen[op.Namespace] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Ops returns the ops in a namespace, sorted by name. An empty namespace
// selects everything.
func (r *Registry) Ops(namespace string) []*Op {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Op
	for _, op := range r.ops {
		if namespace == "" || op.Namespace == namespace {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered ops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

// MustOp builds an op, registers it in the default registry, and returns
// it. Surface packages use it in their package-level operation tables, so
// a colliding symbol fails at init.
func MustOp(namespace, name string, kind Kind, params []Shape, res Shape) *Op {
	op := &Op{
		Namespace: namespace,
		Name:      name,
		Kind:      kind,
		Params:    params,
		Result:    res,
	}
	if err := defaultRegistry.Register(op); err != nil {
		panic(err)
	}
	return op
}
