// Package bridge wires the channel transport, the correlator and the
// operation catalog into one start/close lifecycle.
//
// A Bridge is single-use: Start validates the options, builds the transport
// and controller and, in dispatch mode, starts the reply reader. Close stops
// the reader and fails any waiting calls.
package bridge
