package yeet

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/yeet/errors"
	"github.com/kbukum/yeet/logger"
	"github.com/kbukum/yeet/observability"
	"github.com/kbukum/yeet/result"
)

// ErrNoOperation is the stop reason returned when a call names no
// registered operation.
var ErrNoOperation = stderrors.New("yeet: no operation to invoke")

// Entry is one recorded result.
type Entry struct {
	Name  string
	Value any
}

// Stack mediates calls to registered operations, resolves string arguments
// against earlier results and records results under pending bindings.
type Stack struct {
	ctx      context.Context
	registry *Registry
	entries  []Entry

	// pending is the binding waiting for the next call; empty when none.
	pending string

	policy  PendingPolicy
	log     *logger.Logger
	metrics *observability.Metrics
}

// New builds a Stack over a fresh registry of ops.
func New(ctx context.Context, ops Operations, opts ...Option) (*Stack, error) {
	reg, err := NewRegistry(ops)
	if err != nil {
		return nil, err
	}
	return NewWithRegistry(ctx, reg, opts...)
}

// MustNew is like New but panics on error.
func MustNew(ctx context.Context, ops Operations, opts ...Option) *Stack {
	s, err := New(ctx, ops, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithRegistry builds a Stack over an existing registry. Registries are
// immutable and may back any number of stacks.
func NewWithRegistry(ctx context.Context, reg *Registry, opts ...Option) (*Stack, error) {
	s := &Stack{
		ctx:      ctx,
		registry: reg,
		policy:   PendingReject,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch s.policy {
	case PendingReject, PendingOverwrite:
	default:
		return nil, errors.InvalidConfig("unknown pending policy: " + string(s.policy)).
			WithDetail("pending_policy", string(s.policy))
	}

	if s.log == nil {
		s.log = logger.Get("yeet")
	}
	s.log = s.log.WithContext(ctx)
	if s.metrics == nil {
		s.metrics = observability.MetricsFromContext(ctx)
	}
	return s, nil
}

// Registry returns the operations backing the Stack.
func (s *Stack) Registry() *Registry { return s.registry }

// Bind opens a binding: the result of the next call is recorded under name.
//
// Bind panics with a RESERVED_NAME or INVALID_NAME error for unusable
// names, with NAME_CONFLICT when name is a registered operation, and with
// PENDING_OPEN when another binding is still pending under PendingReject.
func (s *Stack) Bind(name string) *Binding {
	if err := checkName("binding", name); err != nil {
		panic(err)
	}
	if s.registry.Has(name) {
		panic(errors.NameConflict(name))
	}

	if s.pending != "" {
		if s.policy == PendingReject {
			panic(errors.PendingOpen(s.pending, name))
		}
		s.log.Warn("pending binding discarded", logger.Fields(
			logger.FieldBinding, s.pending,
			"replaced_by", name,
		))
	}

	s.pending = name
	s.log.Debug("binding opened", logger.Fields(logger.FieldBinding, name))
	return &Binding{stack: s}
}

// Pending returns the binding waiting for the next call.
func (s *Stack) Pending() (string, bool) {
	return s.pending, s.pending != ""
}

// Call invokes the named operation and consumes the pending binding, if any.
//
// String arguments naming a recorded entry are replaced by its value. When
// a binding is pending, the result payload is recorded under it whether
// the result is a success or a stop. Without a binding nothing is
// recorded. An unknown operation yields result.Stop(ErrNoOperation).
func (s *Stack) Call(op string, args ...any) result.Result {
	binding := s.pending
	s.pending = ""

	fn, ok := s.registry.Get(op)
	if !ok {
		s.log.Debug("no operation to invoke", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldBinding, binding,
		))
		return result.Stop(ErrNoOperation)
	}

	res := s.invoke(op, binding, fn, s.resolve(args))
	if res == nil {
		panic(errors.NilResult("operation " + op))
	}

	if binding != "" {
		s.entries = append(s.entries, Entry{Name: binding, Value: res.Extract()})
		s.log.Debug("result recorded", logger.Fields(
			logger.FieldOperation, op,
			logger.FieldBinding, binding,
			logger.FieldStopped, res.IsStop(),
		))
	}
	return res
}

func (s *Stack) invoke(op, binding string, fn Operation, args []any) result.Result {
	ctx, span := observability.StartSpan(s.ctx, observability.SpanOperation)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrOperation, op)
	if binding != "" {
		observability.SetSpanAttribute(ctx, observability.AttrBinding, binding)
	}

	start := time.Now()
	res := fn(args...)
	duration := time.Since(start)

	if res == nil {
		return nil
	}
	observability.SetSpanAttribute(ctx, observability.AttrStopped, res.IsStop())
	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, op, res.IsStop(), duration)
	}
	return res
}

// resolve substitutes recorded values for string arguments naming them.
func (s *Stack) resolve(args []any) []any {
	resolved := make([]any, len(args))
	for i, arg := range args {
		resolved[i] = arg
		if name, ok := arg.(string); ok {
			if v, found := s.Lookup(name); found {
				resolved[i] = v
			}
		}
	}
	return resolved
}

// Binding is the handle returned by Bind. It completes the binding with a
// call, or chains another Bind.
type Binding struct {
	stack *Stack
}

// Bind opens another binding on the same Stack. Under PendingReject this
// panics, since the first binding is still pending.
func (b *Binding) Bind(name string) *Binding {
	return b.stack.Bind(name)
}

// Call invokes op and records its result under the pending binding.
func (b *Binding) Call(op string, args ...any) result.Result {
	return b.stack.Call(op, args...)
}
