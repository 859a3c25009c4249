package errors

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*ValidationError)(nil)
	_ BridgeError = (*ChannelUnavailableError)(nil)
	_ BridgeError = (*SerializationError)(nil)
	_ BridgeError = (*TimeoutError)(nil)
	_ BridgeError = (*WorkerError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrRequestTimeout indicates no matching reply arrived before the deadline.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrControllerStopped indicates the correlator stopped while a call was waiting.
	ErrControllerStopped = errors.New("protocol controller stopped")

	// ErrControllerNotStarted indicates a dispatch-mode call was made before Start.
	ErrControllerNotStarted = errors.New("protocol controller not started")

	// ErrBridgeNotStarted indicates a call was made before Start.
	ErrBridgeNotStarted = errors.New("bridge not started")

	// ErrBridgeAlreadyStarted indicates Start was called twice.
	ErrBridgeAlreadyStarted = errors.New("bridge already started")

	// ErrBridgeClosed indicates the bridge has been closed and cannot be reused.
	ErrBridgeClosed = errors.New("bridge closed: bridges are single-use, create a new one with New()")

	// ErrUnsupportedPlatform indicates FIFO operations are unavailable on this OS.
	ErrUnsupportedPlatform = errors.New("named pipes are not supported on this platform")
)

// ValidationError indicates a caller-supplied argument was missing or invalid.
// Validation errors never reach the channel.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Field + " is required"
}

// IsBridgeError implements BridgeError.
func (e *ValidationError) IsBridgeError() bool { return true }

// ChannelUnavailableError indicates a channel endpoint is not present.
type ChannelUnavailableError struct {
	Path string
	Err  error
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("Named pipe %s not available", e.Path)
}

func (e *ChannelUnavailableError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ChannelUnavailableError) IsBridgeError() bool { return true }

// SerializationError indicates an envelope could not be encoded or decoded.
// RawData holds the offending line for decode failures.
type SerializationError struct {
	Op      string
	RawData string
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to %s envelope: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *SerializationError) IsBridgeError() bool { return true }

// TimeoutError indicates no matching reply arrived within the call's deadline.
type TimeoutError struct {
	Method string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout waiting for response (waited %ss)", FormatSeconds(e.Waited))
}

// Is reports whether target is ErrRequestTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrRequestTimeout
}

// IsBridgeError implements BridgeError.
func (e *TimeoutError) IsBridgeError() bool { return true }

// WorkerError indicates the worker matched the request but failed the operation.
type WorkerError struct {
	Method  string
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}

// IsBridgeError implements BridgeError.
func (e *WorkerError) IsBridgeError() bool { return true }

// FormatSeconds renders a duration as seconds without trailing zeros,
// e.g. 300s -> "300", 250ms -> "0.25".
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
