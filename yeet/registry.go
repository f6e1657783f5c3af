package yeet

import (
	"sort"
	"strings"

	"github.com/kbukum/yeet/errors"
	"github.com/kbukum/yeet/result"
	"github.com/kbukum/yeet/validation"
)

// ReservedPrefix marks names kept for internal bookkeeping. Neither
// operations nor bindings may start with it.
const ReservedPrefix = "_"

// Operation is a registered, fallible function.
type Operation func(args ...any) result.Result

// Operations maps operation names to their functions.
type Operations map[string]Operation

// Registry is an immutable set of named operations.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry validates ops and copies them into a read-only Registry.
func NewRegistry(ops Operations) (*Registry, error) {
	copied := make(map[string]Operation, len(ops))
	for name, fn := range ops {
		if err := checkName("operation", name); err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, errors.NilOperation(name)
		}
		copied[name] = fn
	}
	return &Registry{ops: copied}, nil
}

// Has reports whether name is a registered operation.
func (r *Registry) Has(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Get retrieves an operation by name.
func (r *Registry) Get(name string) (Operation, bool) {
	fn, ok := r.ops[name]
	return fn, ok
}

// Names returns sorted names of all registered operations.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkName(kind, name string) *errors.Error {
	if strings.HasPrefix(name, ReservedPrefix) {
		return errors.ReservedName(kind, name)
	}
	if !validation.Identifier(name) {
		return errors.InvalidName(kind, name)
	}
	return nil
}
