package protocol

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// Transport defines the minimal interface needed for protocol operations.
//
// This interface is satisfied by pipe.Transport but allows for testing
// with mock transports.
type Transport interface {
	// Send writes payload as one line to the channel at path.
	Send(ctx context.Context, path string, payload any) error

	// ReadLines streams reply lines until ctx ends (dispatch mode).
	ReadLines(ctx context.Context) <-chan []byte

	// TryReadLine makes one attempt to read a reply line (poll mode).
	TryReadLine() ([]byte, bool)
}

// Controller correlates requests written to the request channel with replies
// read from the response channel.
//
// In dispatch mode the Controller must be started with Start() before use; it
// then runs its own goroutine that reads every reply and routes it to the
// waiting call by id. In poll mode each call reads the response channel
// itself and Start() is optional.
type Controller struct {
	log       *slog.Logger
	transport Transport

	requestPath    string
	defaultTimeout time.Duration
	pollInterval   time.Duration
	mode           config.ResponseMode
	newID          IDGenerator
	now            func() time.Time

	// Request tracking
	pendingMu sync.Mutex
	pending   map[string]*pendingRequest
	seq       uint64
	started   bool

	// Lifecycle management
	cancelRead context.CancelFunc
	closeOnce  sync.Once
	done       chan struct{}
	wg         sync.WaitGroup
}

// pendingRequest tracks an outgoing request awaiting its reply.
type pendingRequest struct {
	method   string
	seq      uint64
	response chan *Response
}

// NewController creates a new protocol controller.
//
// The logger will receive debug, info, warn, and error messages during
// protocol operations. Options are read once; later changes have no effect.
func NewController(log *slog.Logger, transport Transport, options *config.Options) *Controller {
	return &Controller{
		log:            log.With("component", "protocol"),
		transport:      transport,
		requestPath:    options.RequestPipe,
		defaultTimeout: options.Timeout,
		pollInterval:   options.PollInterval,
		mode:           options.ResponseMode,
		newID:          idGeneratorFor(options.RequestIDStyle),
		now:            time.Now,
		pending:        make(map[string]*pendingRequest, 10),
		done:           make(chan struct{}),
	}
}

// Mode returns the response mode the controller was built with.
func (c *Controller) Mode() config.ResponseMode {
	return c.mode
}

// Done returns a channel that is closed when the controller stops.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start begins reading replies from the transport and routing them to
// waiting calls.
//
// In poll mode there is nothing to start and Start only marks the controller
// as started. Calling Start more than once has no further effect.
func (c *Controller) Start(ctx context.Context) error {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if c.started {
		return nil
	}

	select {
	case <-c.done:
		return errors.ErrControllerStopped
	default:
	}

	c.started = true

	if c.mode == config.ResponseModePoll {
		c.log.Info("Protocol controller started", "mode", c.mode)

		return nil
	}

	readCtx, cancel := context.WithCancel(ctx)
	c.cancelRead = cancel

	lines := c.transport.ReadLines(readCtx)

	c.wg.Add(1)

	go c.readLoop(readCtx, lines)

	c.log.Info("Protocol controller started", "mode", c.mode)

	return nil
}

// Stop gracefully shuts down the controller.
//
// Waiting calls fail with ErrControllerStopped. It's safe to call Stop
// multiple times.
func (c *Controller) Stop() {
	c.log.Debug("Stopping protocol controller")

	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.pendingMu.Lock()
	cancel := c.cancelRead
	c.pendingMu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.wg.Wait()
	c.log.Info("Protocol controller stopped")
}

// Invoke sends a request and waits for its reply.
//
// Invoke never returns an error value: every failure (validation, transport,
// decode, timeout, worker error, cancellation) is reported as a failed
// Outcome. No step is retried.
func (c *Controller) Invoke(ctx context.Context, call Call) Outcome {
	if call.Method == "" {
		return Failed(&errors.ValidationError{Field: "method_name"})
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	path := call.RequestPath
	if path == "" {
		path = c.requestPath
	}

	args := call.Args
	if args == nil {
		args = []any{}
	}

	if c.mode == config.ResponseModePoll {
		return c.invokePoll(ctx, call.Method, args, path, timeout)
	}

	return c.invokeDispatch(ctx, call.Method, args, path, timeout)
}

// Notify sends a request without an id and does not wait for a reply.
func (c *Controller) Notify(ctx context.Context, method string, args ...any) error {
	if method == "" {
		return &errors.ValidationError{Field: "method_name"}
	}

	if args == nil {
		args = []any{}
	}

	c.log.Debug("Sending notification", "method", method)

	return c.transport.Send(ctx, c.requestPath, &Request{Method: method, Args: args})
}

func (c *Controller) invokeDispatch(
	ctx context.Context,
	method string,
	args []any,
	path string,
	timeout time.Duration,
) Outcome {
	// Create pending request tracker before sending so a fast reply is not lost.
	c.pendingMu.Lock()

	if !c.started {
		c.pendingMu.Unlock()

		return Failed(errors.ErrControllerNotStarted)
	}

	select {
	case <-c.done:
		c.pendingMu.Unlock()

		return Failed(errors.ErrControllerStopped)
	default:
	}

	requestID := c.newID(method, c.now(), func(id string) bool {
		_, taken := c.pending[id]

		return taken
	})

	c.seq++
	pending := &pendingRequest{
		method:   method,
		seq:      c.seq,
		response: make(chan *Response, 1),
	}
	c.pending[requestID] = pending

	c.pendingMu.Unlock()

	defer c.removePending(requestID, pending)

	// Sending and waiting share one budget.
	deadline := time.Now().Add(timeout)

	log := c.log.With("request_id", requestID, "method", method)
	log.Debug("Sending request")

	req := &Request{Method: method, Args: args, ID: requestID}
	if err := c.send(ctx, path, req, deadline, timeout); err != nil {
		log.Warn("Failed to send request", "error", err)

		return Failed(err)
	}

	log.Debug("Request sent, waiting for response", "timeout", timeout)

	timer := time.NewTimer(max(time.Until(deadline), 0))
	defer timer.Stop()

	select {
	case resp := <-pending.response:
		log.Debug("Received response", "is_error", resp.IsError())

		return outcomeFromResponse(method, resp)

	case <-timer.C:
		log.Warn("Request timed out", "timeout", timeout)

		return Failed(&errors.TimeoutError{Method: method, Waited: timeout})

	case <-c.done:
		log.Debug("Controller stopped during request")

		return Failed(errors.ErrControllerStopped)

	case <-ctx.Done():
		log.Debug("Request cancelled", "error", ctx.Err())

		return Failed(ctx.Err())
	}
}

// send writes req before deadline. Opening a FIFO blocks until the worker
// reads it, so a worker that never attaches surfaces as a TimeoutError.
func (c *Controller) send(ctx context.Context, path string, req *Request, deadline time.Time, timeout time.Duration) error {
	sendCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	err := c.transport.Send(sendCtx, path, req)
	if err != nil && ctx.Err() == nil && sendCtx.Err() != nil {
		return &errors.TimeoutError{Method: req.Method, Waited: timeout}
	}

	return err
}

// removePending drops the tracker unless the reader already claimed it and
// the id has since been reused by another call.
func (c *Controller) removePending(requestID string, pending *pendingRequest) {
	c.pendingMu.Lock()
	if c.pending[requestID] == pending {
		delete(c.pending, requestID)
	}
	c.pendingMu.Unlock()
}

// readLoop reads reply lines from the transport and routes them.
func (c *Controller) readLoop(ctx context.Context, lines <-chan []byte) {
	defer c.wg.Done()
	defer c.log.Debug("Protocol read loop stopped")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				c.log.Debug("Reply channel closed")

				return
			}

			c.handleLine(line)

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleLine decodes one reply and delivers it to the waiting call.
func (c *Controller) handleLine(line []byte) {
	resp, err := DecodeResponse(line)
	if err != nil {
		c.log.Warn("Discarding undecodable response", "error", err, "line", string(line))

		return
	}

	// Find and claim pending request atomically
	c.pendingMu.Lock()

	requestID, pending := c.claim(resp)

	c.pendingMu.Unlock()

	if pending == nil {
		if resp.HasID() {
			c.log.Warn("No pending request for response", "request_id", *resp.ID)
		} else {
			c.log.Warn("Discarding id-less response with no pending request")
		}

		return
	}

	c.log.Debug("Routing response", "request_id", requestID, "method", pending.method, "legacy", !resp.HasID())

	// We own it now; the channel is buffered so this never blocks.
	pending.response <- resp
}

// claim removes and returns the pending request a response answers.
// Id-less responses go to the oldest waiting call. Callers hold pendingMu.
func (c *Controller) claim(resp *Response) (string, *pendingRequest) {
	if resp.HasID() {
		pending, ok := c.pending[*resp.ID]
		if !ok {
			return "", nil
		}

		delete(c.pending, *resp.ID)

		return *resp.ID, pending
	}

	var (
		oldestID string
		oldest   *pendingRequest
	)

	for id, p := range c.pending {
		if oldest == nil || p.seq < oldest.seq {
			oldestID, oldest = id, p
		}
	}

	if oldest != nil {
		delete(c.pending, oldestID)
	}

	return oldestID, oldest
}

// PendingCount returns the number of calls waiting for a reply.
func (c *Controller) PendingCount() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	return len(c.pending)
}
