// Package runner drives a sequence of yeet operations to completion or to
// its first stop.
//
// A Sequence yields each operation Result at the point it wants it
// inspected. The runner resumes the sequence after every success and
// cancels it on the first stop, so any deferred cleanup in the sequence
// runs before Run returns:
//
//	out, err := runner.Run(ctx, func(ctx context.Context, yield runner.Yield, args ...any) any {
//	    s := yeet.MustNew(ctx, ops)
//	    if !yield(s.Bind("user").Call("getUser", args[0])) {
//	        return nil
//	    }
//	    if !yield(s.Bind("address").Call("getAddress", "user")) {
//	        return nil
//	    }
//	    return s.Yoink()
//	}, 7)
//
// Stops are reported through Outcome.Status. The error return is reserved
// for broken contracts (nil results, panics, step limits) and cancellation.
package runner
