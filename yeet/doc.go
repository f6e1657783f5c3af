// Package yeet sequences named, fallible operations and remembers their
// results.
//
// A Stack is built from a set of registered operations. Each call may first
// open a binding, naming the slot its result will be recorded under; later
// calls can pass that name as a string argument and receive the stored
// value instead:
//
//	s, err := yeet.New(ctx, yeet.Operations{
//	    "getUser":    getUser,
//	    "getAddress": getAddress,
//	})
//	s.Bind("user").Call("getUser", 7)
//	s.Bind("address").Call("getAddress", "user") // receives the stored user
//	profile := s.Yoink()                           // {"user": ..., "address": ...}
//
// Only one binding may be pending at a time. A Stack belongs to a single
// run and is not safe for concurrent use; create one per run.
package yeet
