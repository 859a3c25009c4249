package shimbridge

import (
	"log/slog"
	"os"
	"time"

	"github.com/wagiedev/shim-bridge-go/internal/config"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options on top of the compatibility defaults.
func applyOptions(opts []Option) *Options {
	options := config.Default()
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithOptions replaces all settings with a copy of base. Options listed after
// it still apply. A nil base is ignored.
func WithOptions(base *Options) Option {
	return func(o *Options) {
		if base != nil {
			*o = *base.Clone()
		}
	}
}

// ===== Channels =====

// WithRequestPipe sets the path of the request channel.
func WithRequestPipe(path string) Option {
	return func(o *Options) {
		o.RequestPipe = path
	}
}

// WithResponsePipe sets the path of the response channel.
func WithResponsePipe(path string) Option {
	return func(o *Options) {
		o.ResponsePipe = path
	}
}

// ===== Timing =====

// WithTimeout sets the default per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithPollInterval sets the delay between empty reads of a channel.
func WithPollInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = interval
	}
}

// WithRateLimit limits writes to the request channel. A zero rate disables
// the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *Options) {
		o.RequestsPerSecond = perSecond
		o.Burst = burst
	}
}

// ===== Correlation =====

// WithResponseMode selects dispatch (default) or legacy poll mode.
func WithResponseMode(mode ResponseMode) Option {
	return func(o *Options) {
		o.ResponseMode = mode
	}
}

// WithRequestIDStyle selects timestamp (default) or ULID request ids.
func WithRequestIDStyle(style RequestIDStyle) Option {
	return func(o *Options) {
		o.RequestIDStyle = style
	}
}

// ===== Loading =====

// LoadOptions builds Options from the compatibility defaults, the file at
// path (TOML or YAML, skipped when path is empty) and SHIMBRIDGE_*
// environment variables, in that order.
func LoadOptions(path string) (*Options, error) {
	options := config.Default()

	if path != "" {
		if err := config.LoadFile(path, options); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(options, os.LookupEnv); err != nil {
		return nil, err
	}

	return options, nil
}
