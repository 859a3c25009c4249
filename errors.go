package shimbridge

import "github.com/wagiedev/shim-bridge-go/internal/errors"

// Re-export error types from internal package

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// ValidationError indicates an argument was missing or invalid. No request
// was sent.
type ValidationError = errors.ValidationError

// ChannelUnavailableError indicates a channel endpoint is not present.
type ChannelUnavailableError = errors.ChannelUnavailableError

// SerializationError indicates an envelope could not be encoded or decoded.
type SerializationError = errors.SerializationError

// TimeoutError indicates no matching reply arrived before the deadline.
type TimeoutError = errors.TimeoutError

// WorkerError indicates the worker reported a failure for the request.
type WorkerError = errors.WorkerError

// Re-export sentinel errors from internal package.
var (
	// ErrRequestTimeout matches any TimeoutError.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrBridgeNotStarted indicates a call was made before Start.
	ErrBridgeNotStarted = errors.ErrBridgeNotStarted

	// ErrBridgeAlreadyStarted indicates Start was called twice.
	ErrBridgeAlreadyStarted = errors.ErrBridgeAlreadyStarted

	// ErrBridgeClosed indicates the bridge has been closed and cannot be reused.
	ErrBridgeClosed = errors.ErrBridgeClosed

	// ErrControllerStopped indicates the bridge closed while a call was waiting.
	ErrControllerStopped = errors.ErrControllerStopped
)
