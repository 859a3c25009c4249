// Command echoworker is a development worker. It reads requests from the
// request channel, runs the built-in handlers (greet, calculate, logMessage,
// echo and wait) and writes id-tagged replies to the response channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/pipe"
	"github.com/wagiedev/shim-bridge-go/internal/worker"
)

func main() {
	var (
		requestPipe  = flag.String("request-pipe", config.DefaultRequestPipe, "request channel path")
		responsePipe = flag.String("response-pipe", config.DefaultResponsePipe, "response channel path")
		pollInterval = flag.Duration("poll-interval", config.DefaultPollInterval, "delay between empty channel reads")
		concurrency  = flag.Int("concurrency", worker.DefaultConcurrency, "max requests handled at once")
		mkfifo       = flag.Bool("mkfifo", true, "create both channels as FIFOs if missing")
		logLevel     = flag.String("log-level", "info", "log level: debug, info, warn or error")
	)

	flag.Parse()

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "echoworker: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := config.Default()
	opts.RequestPipe = *requestPipe
	opts.ResponsePipe = *responsePipe
	opts.PollInterval = *pollInterval

	if err := opts.Validate(); err != nil {
		logger.Error("Invalid options", "error", err)
		os.Exit(2)
	}

	if *mkfifo {
		for _, path := range []string{opts.RequestPipe, opts.ResponsePipe} {
			if err := pipe.MakeFIFO(path, 0o600); err != nil {
				logger.Error("Failed to create channel", "path", path, "error", err)
				os.Exit(1)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.New(logger, opts)
	w.SetConcurrency(*concurrency)
	w.RegisterBuiltins()

	start := time.Now()

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker exited", "uptime", time.Since(start).Round(time.Millisecond))
}
