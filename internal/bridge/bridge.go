package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wagiedev/shim-bridge-go/internal/catalog"
	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/errors"
	"github.com/wagiedev/shim-bridge-go/internal/pipe"
	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// Bridge owns one controller and the catalog dispatcher built on it.
type Bridge struct {
	log        *slog.Logger
	options    *config.Options
	transport  *pipe.Transport
	controller *protocol.Controller
	dispatcher *catalog.Dispatcher

	// Lifecycle management
	mu        sync.Mutex
	started   bool
	closed    bool
	closeOnce sync.Once
}

// New creates a bridge. Call Start before use.
func New() *Bridge {
	return &Bridge{}
}

// Start validates options and starts the correlator.
//
// Missing option values take the compatibility defaults. The options are
// copied; later changes by the caller have no effect.
func (b *Bridge) Start(ctx context.Context, options *config.Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.ErrBridgeClosed
	}

	if b.started {
		return errors.ErrBridgeAlreadyStarted
	}

	if options == nil {
		options = config.Default()
	}

	options = options.Clone()
	options.FillDefaults()

	if err := options.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b.log = log.With("component", "bridge")
	b.options = options

	b.transport = pipe.NewTransport(log, options)
	b.controller = protocol.NewController(log, b.transport, options)
	b.dispatcher = catalog.NewDispatcher(log, b.controller, catalog.Operations())

	// The reply reader must outlive the caller's ctx, which may only bound
	// startup; Close stops it.
	if err := b.controller.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start controller: %w", err)
	}

	b.started = true

	b.log.Info("Bridge started",
		"request_pipe", options.RequestPipe,
		"response_pipe", options.ResponsePipe,
		"mode", options.ResponseMode,
		"timeout", options.Timeout,
	)

	return nil
}

// controllerIfStarted returns the controller, or an error if the bridge is
// not usable.
func (b *Bridge) controllerIfStarted() (*protocol.Controller, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.closed:
		return nil, errors.ErrBridgeClosed
	case !b.started:
		return nil, errors.ErrBridgeNotStarted
	default:
		return b.controller, nil
	}
}

// Invoke sends call to the worker and waits for its outcome.
func (b *Bridge) Invoke(ctx context.Context, call protocol.Call) protocol.Outcome {
	controller, err := b.controllerIfStarted()
	if err != nil {
		return protocol.Failed(err)
	}

	return controller.Invoke(ctx, call)
}

// Notify sends a fire-and-forget request.
func (b *Bridge) Notify(ctx context.Context, method string, args ...any) error {
	controller, err := b.controllerIfStarted()
	if err != nil {
		return err
	}

	return controller.Notify(ctx, method, args...)
}

// CallTool runs a catalog operation by name and returns its summary text.
func (b *Bridge) CallTool(ctx context.Context, name string, args map[string]any) (string, bool) {
	if _, err := b.controllerIfStarted(); err != nil {
		return "Error: " + err.Error(), true
	}

	return b.dispatcher.Call(ctx, name, args)
}

// Dispatcher returns the catalog dispatcher, or nil before Start.
func (b *Bridge) Dispatcher() *catalog.Dispatcher {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dispatcher
}

// Options returns the effective options, or nil before Start.
func (b *Bridge) Options() *config.Options {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.options
}

// Done returns a channel closed when the bridge has been closed. Before
// Start it returns nil.
func (b *Bridge) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.controller == nil {
		return nil
	}

	return b.controller.Done()
}

// Close stops the correlator. Waiting calls fail with ErrControllerStopped.
// The bridge cannot be reused. Safe to call multiple times.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		wasStarted := b.started
		b.started = false
		b.mu.Unlock()

		if !wasStarted {
			return
		}

		b.log.Info("Closing bridge")

		b.controller.Stop()

		b.log.Info("Bridge closed")
	})

	return nil
}
