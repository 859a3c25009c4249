// Package shimbridge correlates requests and replies exchanged with a worker
// process over a pair of FIFO channels and exposes a catalog of operations to
// an agent over MCP.
//
// A request is one JSON line written to the request channel:
//
//	{"method": "calculate", "args": [3, 4, "add"], "id": "calculate_1729000000000"}
//
// The worker answers with one JSON line on the response channel carrying the
// same id and either a result or an error:
//
//	{"id": "calculate_1729000000000", "result": 7}
//
// # Basic Usage
//
//	b := shimbridge.New()
//	if err := b.Start(ctx,
//	    shimbridge.WithLogger(slog.Default()),
//	    shimbridge.WithTimeout(30*time.Second),
//	); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	out := b.Invoke(ctx, "calculate", 3, 4, "add")
//	if !out.Success {
//	    log.Fatal(out.Error)
//	}
//
// Or with the WithBridge helper:
//
//	err := shimbridge.WithBridge(ctx, func(b shimbridge.Bridge) error {
//	    text, isError := b.CallTool(ctx, "get_inventory", nil)
//	    ...
//	})
//
// # Response Modes
//
// In dispatch mode (the default) one reader per bridge routes replies to
// waiting calls by id, so concurrent calls never receive each other's
// replies. Poll mode makes every call read the response channel on its own
// and is kept for workers that do not echo ids.
//
// # Error Handling
//
// Invoke never returns a Go error; failures are reported in the Outcome.
// Outcome.Err keeps the typed cause:
//
//	out := b.Invoke(ctx, "withdrawItem", "Lobster", 5)
//	if errors.Is(out.Err, shimbridge.ErrRequestTimeout) {
//	    ...
//	}
//	if workerErr, ok := errors.AsType[*shimbridge.WorkerError](out.Err); ok {
//	    log.Printf("worker failed %s: %s", workerErr.Method, workerErr.Message)
//	}
package shimbridge
