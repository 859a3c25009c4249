package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// fileOptions is the on-disk shape of Options. Absent keys leave the
// corresponding option untouched.
type fileOptions struct {
	RequestPipe       *string      `toml:"request_pipe" yaml:"request_pipe"`
	ResponsePipe      *string      `toml:"response_pipe" yaml:"response_pipe"`
	Timeout           fileDuration `toml:"timeout" yaml:"timeout"`
	PollInterval      fileDuration `toml:"poll_interval" yaml:"poll_interval"`
	ResponseMode      *string      `toml:"response_mode" yaml:"response_mode"`
	RequestIDStyle    *string      `toml:"request_id_style" yaml:"request_id_style"`
	RequestsPerSecond *float64     `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             *int         `toml:"burst" yaml:"burst"`
	ServerName        *string      `toml:"server_name" yaml:"server_name"`
	ServerVersion     *string      `toml:"server_version" yaml:"server_version"`
	LogLevel          *string      `toml:"log_level" yaml:"log_level"`
}

func (f *fileOptions) apply(opts *Options) {
	setIf(&opts.RequestPipe, f.RequestPipe)
	setIf(&opts.ResponsePipe, f.ResponsePipe)
	setIf(&opts.ServerName, f.ServerName)
	setIf(&opts.ServerVersion, f.ServerVersion)
	setIf(&opts.LogLevel, f.LogLevel)
	setIf(&opts.RequestsPerSecond, f.RequestsPerSecond)
	setIf(&opts.Burst, f.Burst)

	if f.Timeout.set {
		opts.Timeout = f.Timeout.d
	}

	if f.PollInterval.set {
		opts.PollInterval = f.PollInterval.d
	}

	if f.ResponseMode != nil {
		opts.ResponseMode = NormalizeResponseMode(*f.ResponseMode)
	}

	if f.RequestIDStyle != nil {
		opts.RequestIDStyle = RequestIDStyle(*f.RequestIDStyle)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// fileDuration reads a duration written either as a Go duration string
// ("90s", "250ms") or as a bare number of seconds (300, 0.5), the same forms
// the environment accepts.
type fileDuration struct {
	d   time.Duration
	set bool
}

// UnmarshalTOML implements toml.Unmarshaler.
func (f *fileDuration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		f.d = time.Duration(x) * time.Second
	case float64:
		f.d = time.Duration(x * float64(time.Second))
	case string:
		d, err := parseDurationOrSeconds(x)
		if err != nil {
			return err
		}

		f.d = d
	default:
		return fmt.Errorf("invalid duration %v (%T)", v, v)
	}

	f.set = true

	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *fileDuration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}

	d, err := parseDurationOrSeconds(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	f.d, f.set = d, true

	return nil
}
