// Package worker implements the worker side of the channel protocol.
//
// A Worker reads request lines from the request channel, runs the handler
// registered for each method on its own goroutine and writes a reply carrying
// the request id to the response channel. Replies may therefore arrive out of
// order. Requests without an id are fire-and-forget and get no reply.
//
// It stands in for the real automation worker during development and in
// end-to-end tests.
package worker
