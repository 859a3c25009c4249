package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// Invoker performs one worker call. It is satisfied by *protocol.Controller.
type Invoker interface {
	Invoke(ctx context.Context, call protocol.Call) protocol.Outcome
}

// Dispatcher routes tool calls by name to catalog operations.
type Dispatcher struct {
	log     *slog.Logger
	invoker Invoker
	ops     []Operation
	byName  map[string]*Operation
}

// NewDispatcher creates a dispatcher over ops. Later operations with a
// duplicate name replace earlier ones.
func NewDispatcher(log *slog.Logger, invoker Invoker, ops []Operation) *Dispatcher {
	d := &Dispatcher{
		log:     log.With("component", "catalog"),
		invoker: invoker,
		ops:     ops,
		byName:  make(map[string]*Operation, len(ops)),
	}

	for i := range d.ops {
		d.byName[d.ops[i].Name] = &d.ops[i]
	}

	return d
}

// Operations returns the operations in listing order.
func (d *Dispatcher) Operations() []Operation {
	return d.ops
}

// Lookup returns the operation registered under name.
func (d *Dispatcher) Lookup(name string) (*Operation, bool) {
	op, ok := d.byName[name]

	return op, ok
}

// Call runs the named tool and renders its summary text. isError reports
// whether the call failed for any reason. Call never panics.
func (d *Dispatcher) Call(ctx context.Context, name string, args Args) (text string, isError bool) {
	log := d.log.With("tool", name)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Tool call panicked", "panic", r)

			text, isError = fmt.Sprintf("Error: %v", r), true
		}
	}()

	op, ok := d.byName[name]
	if !ok {
		log.Warn("Unknown tool")

		return "Unknown tool: " + name, true
	}

	call, err := op.Prepare(args)
	if err != nil {
		log.Debug("Rejected tool arguments", "error", err)

		return err.Error(), true
	}

	log.Debug("Invoking operation", "method", call.Method, "args", len(call.Args))

	out := d.invoker.Invoke(ctx, call)
	if !out.Success {
		log.Warn("Operation failed", "method", call.Method, "error", out.Error)

		return op.failure(args, out.Error), true
	}

	return op.summary(args, out.Result), false
}

func (op *Operation) summary(args Args, result any) string {
	if op.Summarize == nil {
		return formatResult(result)
	}

	return op.Summarize(args, result)
}

func (op *Operation) failure(args Args, msg string) string {
	if op.Failure == nil {
		return "Error: " + msg
	}

	return op.Failure(args, msg)
}
