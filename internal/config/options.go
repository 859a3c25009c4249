package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Compatibility defaults shared by convention with the worker process.
const (
	// DefaultRequestPipe is the channel the bridge writes requests to.
	DefaultRequestPipe = "/tmp/dreambot_shim_pipe"
	// DefaultResponsePipe is the channel the bridge reads replies from.
	DefaultResponsePipe = "/tmp/dreambot_shim_response_pipe"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 300 * time.Second
	// DefaultPollInterval is the delay between empty reads of the response channel.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultServerName is the MCP implementation name advertised to the agent.
	DefaultServerName = "runescape-bot"
	// DefaultServerVersion is the MCP implementation version.
	DefaultServerVersion = "1.0.0"
)

// ResponseMode selects how the correlator waits for replies.
type ResponseMode string

const (
	// ResponseModeDispatch runs one reader per process that routes replies to
	// waiting calls by id.
	ResponseModeDispatch ResponseMode = "dispatch"
	// ResponseModePoll makes every call re-open and poll the response channel
	// on its own, discarding replies meant for other calls.
	ResponseModePoll ResponseMode = "poll"
)

// RequestIDStyle selects how request ids are generated.
type RequestIDStyle string

const (
	// RequestIDTimestamp produces "<method>_<epoch-ms>".
	RequestIDTimestamp RequestIDStyle = "timestamp"
	// RequestIDULID produces "<method>_<ULID>".
	RequestIDULID RequestIDStyle = "ulid"
)

// NormalizeResponseMode maps legacy and alternate names to a ResponseMode.
//
// Legacy mappings:
//   - "polling", "legacy" -> "poll"
//   - "table", "" -> "dispatch"
func NormalizeResponseMode(mode string) ResponseMode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "poll", "polling", "legacy":
		return ResponseModePoll
	case "", "dispatch", "table":
		return ResponseModeDispatch
	default:
		return ResponseMode(mode)
	}
}

// Options configures the bridge.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// RequestPipe is the path of the channel requests are written to.
	RequestPipe string

	// ResponsePipe is the path of the channel replies are read from.
	ResponsePipe string

	// Timeout bounds each call that does not set its own.
	Timeout time.Duration

	// PollInterval is the delay between empty reads of a channel.
	PollInterval time.Duration

	// ResponseMode selects dispatch (default) or legacy polling.
	ResponseMode ResponseMode

	// RequestIDStyle selects timestamp (default) or ulid request ids.
	RequestIDStyle RequestIDStyle

	// RequestsPerSecond limits writes to the request channel. Zero disables the limit.
	RequestsPerSecond float64

	// Burst is the limiter burst size. Values below 1 are treated as 1.
	Burst int

	// ServerName and ServerVersion are advertised to the calling agent.
	ServerName    string
	ServerVersion string

	// LogLevel is used by the bridge binary: debug, info, warn or error.
	LogLevel string
}

// Default returns Options populated with the compatibility defaults.
func Default() *Options {
	return &Options{
		RequestPipe:    DefaultRequestPipe,
		ResponsePipe:   DefaultResponsePipe,
		Timeout:        DefaultTimeout,
		PollInterval:   DefaultPollInterval,
		ResponseMode:   ResponseModeDispatch,
		RequestIDStyle: RequestIDTimestamp,
		ServerName:     DefaultServerName,
		ServerVersion:  DefaultServerVersion,
		LogLevel:       "info",
	}
}

// Clone returns a shallow copy so callers can derive variants without
// mutating a shared value.
func (o *Options) Clone() *Options {
	clone := *o

	return &clone
}

// FillDefaults replaces zero values with the compatibility defaults.
func (o *Options) FillDefaults() {
	def := Default()

	if o.RequestPipe == "" {
		o.RequestPipe = def.RequestPipe
	}

	if o.ResponsePipe == "" {
		o.ResponsePipe = def.ResponsePipe
	}

	if o.Timeout == 0 {
		o.Timeout = def.Timeout
	}

	if o.PollInterval == 0 {
		o.PollInterval = def.PollInterval
	}

	o.ResponseMode = NormalizeResponseMode(string(o.ResponseMode))

	if o.RequestIDStyle == "" {
		o.RequestIDStyle = def.RequestIDStyle
	}

	if o.ServerName == "" {
		o.ServerName = def.ServerName
	}

	if o.ServerVersion == "" {
		o.ServerVersion = def.ServerVersion
	}

	if o.LogLevel == "" {
		o.LogLevel = def.LogLevel
	}
}

// Validate checks that the options are usable.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.RequestPipe) == "" {
		return fmt.Errorf("request_pipe is required")
	}

	if strings.TrimSpace(o.ResponsePipe) == "" {
		return fmt.Errorf("response_pipe is required")
	}

	if o.RequestPipe == o.ResponsePipe {
		return fmt.Errorf("request_pipe and response_pipe must differ (both %q)", o.RequestPipe)
	}

	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}

	if o.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", o.PollInterval)
	}

	switch o.ResponseMode {
	case ResponseModeDispatch, ResponseModePoll:
	default:
		return fmt.Errorf("unknown response_mode %q", o.ResponseMode)
	}

	switch o.RequestIDStyle {
	case RequestIDTimestamp, RequestIDULID:
	default:
		return fmt.Errorf("unknown request_id_style %q", o.RequestIDStyle)
	}

	if o.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %v", o.RequestsPerSecond)
	}

	if _, err := ParseLevel(o.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel converts a log level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level

	if level == "" {
		return slog.LevelInfo, nil
	}

	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", level, err)
	}

	return l, nil
}
