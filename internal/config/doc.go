// Package config provides the immutable configuration shared by the bridge's
// transport, correlator and servers.
//
// Options are built from Default(), optionally overlaid with a TOML or YAML
// file (LoadFile) and SHIMBRIDGE_* environment variables (ApplyEnv), and then
// checked with Validate. Once handed to a component, Options are treated as
// read-only.
package config
