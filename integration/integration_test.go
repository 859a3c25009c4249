//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	shimbridge "github.com/wagiedev/shim-bridge-go"
	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/pipe"
	"github.com/wagiedev/shim-bridge-go/internal/worker"
)

// fifoPair creates a request and response FIFO in a temp dir.
func fifoPair(t *testing.T) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("named pipes are not supported on this platform")
	}

	dir := t.TempDir()
	req := filepath.Join(dir, "request")
	resp := filepath.Join(dir, "response")

	require.NoError(t, pipe.MakeFIFO(req, 0o600))
	require.NoError(t, pipe.MakeFIFO(resp, 0o600))
	require.True(t, pipe.IsFIFO(req))

	return req, resp
}

// startWorker runs the development worker on the given channels until the
// test ends. It returns the worker so tests can add handlers.
func startWorker(t *testing.T, req, resp string) *worker.Worker {
	t.Helper()

	opts := config.Default()
	opts.RequestPipe = req
	opts.ResponsePipe = resp
	opts.PollInterval = 10 * time.Millisecond

	w := worker.New(testLogger(), opts)
	w.RegisterBuiltins()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = w.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return w
}

// startBridge starts a bridge on the channels and closes it with the test.
func startBridge(t *testing.T, req, resp string, opts ...shimbridge.Option) shimbridge.Bridge {
	t.Helper()

	all := append([]shimbridge.Option{
		shimbridge.WithLogger(testLogger()),
		shimbridge.WithRequestPipe(req),
		shimbridge.WithResponsePipe(resp),
		shimbridge.WithPollInterval(10 * time.Millisecond),
		shimbridge.WithTimeout(10 * time.Second),
	}, opts...)

	b := shimbridge.New()
	require.NoError(t, b.Start(context.Background(), all...))
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func testLogger() *slog.Logger {
	if os.Getenv("SHIMBRIDGE_TEST_DEBUG") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return shimbridge.NopLogger()
}
