package shimbridge

import "context"

// Bridge is a started connection to one worker over a request/response
// channel pair.
//
// Lifecycle: bridges are single-use. After Close(), create a new one with New().
type Bridge interface {
	// Start validates options and starts the reply reader.
	// Must be called before any other methods.
	Start(ctx context.Context, opts ...Option) error

	// Invoke calls method on the worker with args and waits for the outcome.
	Invoke(ctx context.Context, method string, args ...any) Outcome

	// Call is Invoke with a per-call timeout or request channel override.
	Call(ctx context.Context, call Call) Outcome

	// CallTool runs a catalog operation by name and returns its summary text
	// and whether it failed.
	CallTool(ctx context.Context, name string, args map[string]any) (string, bool)

	// Tools lists the catalog operation names in registration order.
	Tools() []string

	// Notify sends a request that expects no reply.
	Notify(ctx context.Context, method string, args ...any) error

	// Done returns a channel closed when the bridge stops. Nil before Start.
	Done() <-chan struct{}

	// Close stops the reply reader and fails waiting calls.
	// Safe to call multiple times.
	Close() error
}

// New creates a bridge. Call Start with options before use:
//
//	b := New()
//	defer b.Close()
//
//	if err := b.Start(ctx, WithRequestPipe("/tmp/req"), WithResponsePipe("/tmp/resp")); err != nil {
//	    return err
//	}
func New() Bridge {
	return newBridgeImpl()
}
