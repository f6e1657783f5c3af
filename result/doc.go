// Package result defines the two-variant outcome every yeet operation
// returns.
//
// A Result is either a success carrying a value or a stop carrying a
// reason. Extract yields the payload for both variants, so callers must
// check IsStop to tell them apart:
//
//	r := result.Success(user)
//	if r.IsStop() {
//	    return r
//	}
//	u, _ := result.Value[User](r)
//
// Stops are data, not errors: they flow through ordinary return values and
// end a run in the runner package without being raised.
package result
