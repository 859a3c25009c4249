package shimbridge

import (
	"context"
	"fmt"
)

// WithBridge manages bridge lifecycle with automatic cleanup.
//
// It creates a bridge, starts it with opts, runs fn and closes the bridge.
// The callback's error is returned; a Close failure is only logged.
//
//	err := shimbridge.WithBridge(ctx, func(b shimbridge.Bridge) error {
//	    out := b.Invoke(ctx, "getInventory")
//	    if !out.Success {
//	        return errors.New(out.Error)
//	    }
//	    return nil
//	},
//	    shimbridge.WithLogger(log),
//	    shimbridge.WithTimeout(10*time.Second),
//	)
func WithBridge(ctx context.Context, fn func(Bridge) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	b := New()
	if err := b.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}

	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			log.Warn("failed to close bridge", "error", closeErr)
		}
	}()

	return fn(b)
}
