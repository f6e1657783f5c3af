package result

import "fmt"

// Result is the protocol consumed by yeet stacks and runners.
type Result interface {
	// IsStop reports whether the result ends the run.
	IsStop() bool
	// Extract returns the carried value or stop reason.
	Extract() any
}

type outcome struct {
	value any
	stop  bool
}

func (o outcome) IsStop() bool { return o.stop }
func (o outcome) Extract() any { return o.value }

func (o outcome) String() string {
	if o.stop {
		return fmt.Sprintf("Stop(%v)", o.value)
	}
	return fmt.Sprintf("Success(%v)", o.value)
}

// Success wraps a value in a non-stopping Result.
func Success(value any) Result {
	return outcome{value: value}
}

// Stop wraps a reason in a stopping Result.
func Stop(reason any) Result {
	return outcome{value: reason, stop: true}
}

// FromError returns Stop(err) when err is non-nil and Success(value) otherwise.
func FromError(value any, err error) Result {
	if err != nil {
		return Stop(err)
	}
	return Success(value)
}

// FlatMap applies fn to the payload of a success. A stop is returned
// unchanged and fn is not called.
func FlatMap(r Result, fn func(any) Result) Result {
	if r.IsStop() {
		return r
	}
	return fn(r.Extract())
}

// Map transforms the payload of a success.
func Map(r Result, fn func(any) any) Result {
	if r.IsStop() {
		return r
	}
	return Success(fn(r.Extract()))
}

// Value extracts the payload as a T. ok is false when the payload has a
// different type; it is true for stops whose reason is a T.
func Value[T any](r Result) (T, bool) {
	v, ok := r.Extract().(T)
	return v, ok
}

// Lift adapts an ordinary (value, error) function into a Result-returning one.
func Lift(fn func(args ...any) (any, error)) func(args ...any) Result {
	return func(args ...any) Result {
		return FromError(fn(args...))
	}
}
