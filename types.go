package shimbridge

import (
	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// Options configures a Bridge.
type Options = config.Options

// Call describes one bridged operation with optional per-call overrides.
type Call = protocol.Call

// Outcome is the result of a call: success with a result, or failure with a
// non-empty error message.
type Outcome = protocol.Outcome

// ResponseMode selects how replies are awaited.
type ResponseMode = config.ResponseMode

// RequestIDStyle selects how request ids are generated.
type RequestIDStyle = config.RequestIDStyle

// Response modes.
const (
	ResponseModeDispatch = config.ResponseModeDispatch
	ResponseModePoll     = config.ResponseModePoll
)

// Request id styles.
const (
	RequestIDTimestamp = config.RequestIDTimestamp
	RequestIDULID      = config.RequestIDULID
)

// Compatibility defaults.
const (
	DefaultRequestPipe  = config.DefaultRequestPipe
	DefaultResponsePipe = config.DefaultResponsePipe
	DefaultTimeout      = config.DefaultTimeout
	DefaultPollInterval = config.DefaultPollInterval
)
