// Package errors defines the programming-error taxonomy used by yeet.
//
// Expected operation failures never surface here: they travel as
// result.Stop values. An *Error reports a broken contract between the
// caller and the library, such as a nil Result, a reserved binding name or
// a panic inside a sequence.
package errors
