// Package protocol implements request/response correlation between the bridge
// and the worker.
//
// The protocol package provides a Controller that turns a (method, args) pair
// into an Outcome: it builds a Request envelope with a unique id, writes it to
// the request channel and waits for the Response bearing the same id.
//
// The Controller handles:
//   - Generating request ids ("<method>_<epoch-ms>" by default)
//   - Routing replies to waiting calls through a table keyed by id, fed by a
//     single read loop (dispatch mode)
//   - Legacy per-call polling of the response channel (poll mode)
//   - Deadline, context and shutdown handling for every waiting call
//   - Fire-and-forget requests without an id (Notify)
//
// Example usage:
//
//	transport := pipe.NewTransport(log, options)
//
//	controller := protocol.NewController(log, transport, options)
//	controller.Start(ctx)
//	defer controller.Stop()
//
//	out := controller.Invoke(ctx, protocol.Call{
//	    Method: "calculate",
//	    Args:   []any{3, 4, "add"},
//	})
package protocol
