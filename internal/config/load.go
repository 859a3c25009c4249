package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file and default values.
const (
	EnvRequestPipe  = "SHIMBRIDGE_REQUEST_PIPE"
	EnvResponsePipe = "SHIMBRIDGE_RESPONSE_PIPE"
	EnvTimeout      = "SHIMBRIDGE_TIMEOUT"
	EnvPollInterval = "SHIMBRIDGE_POLL_INTERVAL"
	EnvResponseMode = "SHIMBRIDGE_RESPONSE_MODE"
	EnvLogLevel     = "SHIMBRIDGE_LOG_LEVEL"
)

// LoadFile overlays the file at path onto opts. The format is chosen by
// extension: .toml, .yaml or .yml. Unknown keys are rejected.
func LoadFile(path string, opts *Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return loadTOML(path, opts)
	case ".yaml", ".yml":
		return loadYAML(path, opts)
	default:
		return fmt.Errorf("config load failed (%s): unsupported extension", path)
	}
}

func loadTOML(path string, opts *Options) error {
	var file fileOptions

	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return fmt.Errorf("config parse failed (%s): unknown keys: %s", path, strings.Join(keys, ", "))
	}

	file.apply(opts)

	return nil
}

func loadYAML(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file fileOptions

	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	file.apply(opts)

	return nil
}

// ApplyEnv overlays SHIMBRIDGE_* environment variables onto opts using the
// supplied lookup (normally os.LookupEnv).
func ApplyEnv(opts *Options, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRequestPipe); ok && v != "" {
		opts.RequestPipe = v
	}

	if v, ok := lookup(EnvResponsePipe); ok && v != "" {
		opts.ResponsePipe = v
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseDurationOrSeconds(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}

		opts.Timeout = d
	}

	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := parseDurationOrSeconds(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}

		opts.PollInterval = d
	}

	if v, ok := lookup(EnvResponseMode); ok && v != "" {
		opts.ResponseMode = NormalizeResponseMode(v)
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		opts.LogLevel = v
	}

	return nil
}

// parseDurationOrSeconds accepts Go durations ("90s") and bare seconds ("300").
func parseDurationOrSeconds(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}

	return d, nil
}
