package shimbridge

import (
	"context"

	"github.com/wagiedev/shim-bridge-go/internal/bridge"
	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// bridgeImpl adapts the internal bridge to the public interface.
type bridgeImpl struct {
	inner *bridge.Bridge
}

// Compile-time verification that bridgeImpl implements Bridge.
var _ Bridge = (*bridgeImpl)(nil)

func newBridgeImpl() *bridgeImpl {
	return &bridgeImpl{inner: bridge.New()}
}

// Start implements Bridge.
func (b *bridgeImpl) Start(ctx context.Context, opts ...Option) error {
	return b.inner.Start(ctx, applyOptions(opts))
}

// Invoke implements Bridge.
func (b *bridgeImpl) Invoke(ctx context.Context, method string, args ...any) Outcome {
	return b.inner.Invoke(ctx, protocol.Call{Method: method, Args: args})
}

// Call implements Bridge.
func (b *bridgeImpl) Call(ctx context.Context, call Call) Outcome {
	return b.inner.Invoke(ctx, call)
}

// CallTool implements Bridge.
func (b *bridgeImpl) CallTool(ctx context.Context, name string, args map[string]any) (string, bool) {
	return b.inner.CallTool(ctx, name, args)
}

// Tools implements Bridge.
func (b *bridgeImpl) Tools() []string {
	d := b.inner.Dispatcher()
	if d == nil {
		return nil
	}

	ops := d.Operations()
	names := make([]string, 0, len(ops))

	for _, op := range ops {
		names = append(names, op.Name)
	}

	return names
}

// Notify implements Bridge.
func (b *bridgeImpl) Notify(ctx context.Context, method string, args ...any) error {
	return b.inner.Notify(ctx, method, args...)
}

// Done implements Bridge.
func (b *bridgeImpl) Done() <-chan struct{} {
	return b.inner.Done()
}

// Close implements Bridge.
func (b *bridgeImpl) Close() error {
	return b.inner.Close()
}
