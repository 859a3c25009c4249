// Package pipe implements the channel transport between the bridge and the
// worker: two one-directional, line-framed byte streams identified by path.
//
// A channel is normally a named FIFO created by the worker, but regular files
// work too (they are appended to on send and tailed on read), which keeps
// tests and non-unix development setups simple.
//
// The package provides:
//   - Transport.Send: one JSON line per open/write/close, failing fast when the
//     channel path does not exist
//   - TryReadLine: best-effort one-shot read used by the legacy polling mode
//   - Reader: a continuous line reader that survives the channel appearing,
//     disappearing and writers coming and going
package pipe
