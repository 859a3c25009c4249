// Command shimbridge serves the operation catalog to an agent over MCP on
// stdio and forwards each tool call to the worker over the request and
// response channels.
//
// Settings are layered: built-in defaults, then -config (TOML or YAML), then
// SHIMBRIDGE_* environment variables, then flags given on the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/shim-bridge-go/internal/bridge"
	"github.com/wagiedev/shim-bridge-go/internal/config"
	bridgemcp "github.com/wagiedev/shim-bridge-go/internal/mcp"
)

type flags struct {
	configPath   string
	requestPipe  string
	responsePipe string
	timeout      time.Duration
	pollInterval time.Duration
	mode         string
	idStyle      string
	logLevel     string
	rate         float64
	burst        int
}

func parseFlags(args []string) (*flags, *flag.FlagSet, error) {
	f := &flags{}
	fs := flag.NewFlagSet("shimbridge", flag.ContinueOnError)

	fs.StringVar(&f.configPath, "config", "", "path to a TOML or YAML config file")
	fs.StringVar(&f.requestPipe, "request-pipe", config.DefaultRequestPipe, "request channel path")
	fs.StringVar(&f.responsePipe, "response-pipe", config.DefaultResponsePipe, "response channel path")
	fs.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "default per-call timeout")
	fs.DurationVar(&f.pollInterval, "poll-interval", config.DefaultPollInterval, "delay between empty channel reads")
	fs.StringVar(&f.mode, "mode", string(config.ResponseModeDispatch), "response mode: dispatch or poll")
	fs.StringVar(&f.idStyle, "id-style", string(config.RequestIDTimestamp), "request id style: timestamp or ulid")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.Float64Var(&f.rate, "rate", 0, "max requests per second, 0 for unlimited")
	fs.IntVar(&f.burst, "burst", 1, "rate limiter burst size")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs, nil
}

// loadOptions layers defaults, file, environment and explicitly set flags.
func loadOptions(f *flags, fs *flag.FlagSet, lookup func(string) (string, bool)) (*config.Options, error) {
	opts := config.Default()

	if f.configPath != "" {
		if err := config.LoadFile(f.configPath, opts); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(opts, lookup); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "request-pipe":
			opts.RequestPipe = f.requestPipe
		case "response-pipe":
			opts.ResponsePipe = f.responsePipe
		case "timeout":
			opts.Timeout = f.timeout
		case "poll-interval":
			opts.PollInterval = f.pollInterval
		case "mode":
			opts.ResponseMode = config.NormalizeResponseMode(f.mode)
		case "id-style":
			opts.RequestIDStyle = config.RequestIDStyle(f.idStyle)
		case "log-level":
			opts.LogLevel = f.logLevel
		case "rate":
			opts.RequestsPerSecond = f.rate
		case "burst":
			opts.Burst = f.burst
		}
	})

	return opts, nil
}

func run(ctx context.Context, args []string) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	opts, err := loadOptions(f, fs, os.LookupEnv)
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}

	// stdout carries the MCP session.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts.Logger = logger

	b := bridge.New()
	if err := b.Start(ctx, opts); err != nil {
		return err
	}

	defer b.Close()

	server := bridgemcp.NewServer(logger, opts.ServerName, opts.ServerVersion)
	server.RegisterCatalog(b.Dispatcher())

	logger.Info("Serving MCP on stdio", "name", server.Name(), "version", server.Version())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	// The agent closing stdin ends the session and the process.
	g.Go(func() error {
		defer cancel()

		return server.Run(gctx, &mcp.StdioTransport{})
	})

	g.Go(func() error {
		select {
		case <-b.Done():
			return errors.New("bridge stopped")
		case <-gctx.Done():
			return nil
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "shimbridge: %v\n", err)
		os.Exit(1)
	}
}
