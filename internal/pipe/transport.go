package pipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// Transport writes request lines to a channel and reads reply lines from the
// configured response channel.
type Transport struct {
	log          *slog.Logger
	responsePath string
	pollInterval time.Duration
	limiter      *rate.Limiter
	mu           sync.Mutex // Serializes open/write/close so frames never interleave

	readMu     sync.Mutex
	readOffset int64 // Consumed position of a regular-file response channel
}

// NewTransport creates a transport for the channels named in options.
//
// When options.RequestsPerSecond is positive, Send waits on a token bucket
// before each write.
func NewTransport(log *slog.Logger, options *config.Options) *Transport {
	t := &Transport{
		log:          log.With("component", "pipe_transport"),
		responsePath: options.ResponsePipe,
		pollInterval: options.PollInterval,
	}

	if options.RequestsPerSecond > 0 {
		burst := max(options.Burst, 1)
		t.limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return t
}

// ResponsePath returns the channel replies are read from.
func (t *Transport) ResponsePath() string {
	return t.responsePath
}

// Send encodes payload as a single JSON line and writes it to the channel at path.
//
// Returns SerializationError if payload cannot be encoded and
// ChannelUnavailableError if path does not exist (the worker is not listening).
//
// Opening a FIFO for writing blocks until a reader is attached. The write runs
// in its own goroutine so that Send returns ctx.Err() when the context ends
// first; the abandoned write completes or fails on its own.
func (t *Transport) Send(ctx context.Context, path string, payload any) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.log.Error("Failed to encode payload", "error", err)

		return &errors.SerializationError{Op: "encode", Err: err}
	}

	data = append(data, '\n')

	if _, err := os.Stat(path); err != nil {
		t.log.Warn("Request channel not available", "path", path, "error", err)

		return &errors.ChannelUnavailableError{Path: path, Err: err}
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending line", "path", path, "data_len", len(data))

	done := make(chan error, 1)

	go func() {
		done <- t.write(path, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write line", "path", path, "error", err)

			return err
		}

		t.log.Debug("Line sent successfully", "path", path)

		return nil

	case <-ctx.Done():
		t.log.Warn("Context ended while writing, abandoning blocked write", "path", path)

		return ctx.Err()
	}
}

func (t *Transport) write(path string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return &errors.ChannelUnavailableError{Path: path, Err: err}
		}

		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// ReadLines continuously reads reply lines from the response channel until
// ctx ends. See Reader.
func (t *Transport) ReadLines(ctx context.Context) <-chan []byte {
	return NewReader(t.log, t.responsePath, t.pollInterval).ReadLines(ctx)
}

// TryReadLine makes a single attempt to read one reply line from the
// response channel, waiting at most one poll interval for data. On a regular
// file each call consumes the next line.
func (t *Transport) TryReadLine() ([]byte, bool) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	return tryReadLine(t.log, t.responsePath, t.pollInterval, &t.readOffset)
}
