package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/pipe"
	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// DefaultConcurrency bounds the number of requests handled at once.
const DefaultConcurrency = 16

// Handler runs one request. A returned error is sent as the reply's error.
type Handler func(ctx context.Context, args []any) (any, error)

// Worker serves requests from a request channel.
type Worker struct {
	log          *slog.Logger
	requestPath  string
	responsePath string
	reader       *pipe.Reader
	transport    *pipe.Transport
	concurrency  int

	mu       sync.RWMutex
	handlers map[string]Handler
}

// reply is the response envelope as written by the worker.
type reply struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// New creates a worker that reads options.RequestPipe and answers on
// options.ResponsePipe.
func New(log *slog.Logger, options *config.Options) *Worker {
	log = log.With("component", "worker")

	// Replies are never rate limited.
	replyOptions := options.Clone()
	replyOptions.RequestsPerSecond = 0

	return &Worker{
		log:          log,
		requestPath:  options.RequestPipe,
		responsePath: options.ResponsePipe,
		reader:       pipe.NewReader(log, options.RequestPipe, options.PollInterval),
		transport:    pipe.NewTransport(log, replyOptions),
		concurrency:  DefaultConcurrency,
		handlers:     make(map[string]Handler, 8),
	}
}

// SetConcurrency changes how many requests run at once. Values below 1 are
// treated as 1. It must be called before Run.
func (w *Worker) SetConcurrency(n int) {
	w.concurrency = max(n, 1)
}

// Handle registers h for method, replacing any earlier handler.
func (w *Worker) Handle(method string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers[method] = h
}

func (w *Worker) handler(method string) (Handler, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h, ok := w.handlers[method]

	return h, ok
}

// Run serves requests until ctx ends, then waits for in-flight handlers to
// finish.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Worker started", "request_pipe", w.requestPath, "response_pipe", w.responsePath)

	var g errgroup.Group

	g.SetLimit(w.concurrency)

	for line := range w.reader.ReadLines(ctx) {
		var req protocol.Request
		if err := json.Unmarshal(line, &req); err != nil {
			w.log.Warn("Discarding undecodable request", "error", err, "line", string(line))

			continue
		}

		g.Go(func() error {
			w.serve(ctx, &req)

			return nil
		})
	}

	_ = g.Wait()

	w.log.Info("Worker stopped")

	return nil
}

// serve runs one request and writes its reply.
func (w *Worker) serve(ctx context.Context, req *protocol.Request) {
	log := w.log.With("method", req.Method, "request_id", req.ID)

	result, err := w.call(ctx, req)
	if err != nil {
		log.Debug("Handler failed", "error", err)
	}

	if req.ID == "" {
		return
	}

	rep := reply{ID: req.ID, Result: result}
	if err != nil {
		rep = reply{ID: req.ID, Error: err.Error()}
		if rep.Error == "" {
			rep.Error = "handler failed"
		}
	}

	if err := w.transport.Send(ctx, w.responsePath, rep); err != nil {
		log.Warn("Failed to send reply", "error", err)
	}
}

func (w *Worker) call(ctx context.Context, req *protocol.Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	h, ok := w.handler(req.Method)
	if !ok {
		return nil, fmt.Errorf("unknown method: %s", req.Method)
	}

	return h(ctx, req.Args)
}
