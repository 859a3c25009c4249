// Package errors defines error types for the shim bridge.
//
// This package provides structured error types for every way a bridged call
// can fail: caller validation, channel availability, envelope encoding,
// response timeouts and failures reported by the worker. All error types
// support error unwrapping and can be checked using errors.Is, errors.As,
// and errors.AsType.
package errors
