package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RegisterBuiltins installs the development handlers:
//
//	greet(name)               -> "Hello, <name>!"
//	calculate(a, b, op)       -> a op b, op in add/subtract/multiply/divide
//	logMessage(level, msg)    -> logs msg, returns "[LEVEL] msg"
//	echo(args...)             -> args
//	wait(ms)                  -> sleeps ms milliseconds, returns ms
func (w *Worker) RegisterBuiltins() {
	w.Handle("greet", greet)
	w.Handle("calculate", calculate)
	w.Handle("logMessage", w.logMessage)
	w.Handle("echo", echo)
	w.Handle("wait", wait)
}

func greet(_ context.Context, args []any) (any, error) {
	name, err := stringArg(args, 0, "name")
	if err != nil {
		return nil, err
	}

	return "Hello, " + name + "!", nil
}

func calculate(_ context.Context, args []any) (any, error) {
	a, err := numberArg(args, 0, "a")
	if err != nil {
		return nil, err
	}

	b, err := numberArg(args, 1, "b")
	if err != nil {
		return nil, err
	}

	op, err := stringArg(args, 2, "operation")
	if err != nil {
		return nil, err
	}

	switch op {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	case "divide":
		if b == 0 {
			return nil, errors.New("division by zero")
		}

		return a / b, nil
	default:
		return nil, fmt.Errorf("unknown operation: %s", op)
	}
}

func (w *Worker) logMessage(ctx context.Context, args []any) (any, error) {
	level, err := stringArg(args, 0, "level")
	if err != nil {
		return nil, err
	}

	msg, err := stringArg(args, 1, "message")
	if err != nil {
		return nil, err
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}

	w.log.Log(ctx, l, msg, "source", "agent")

	return fmt.Sprintf("[%s] %s", strings.ToUpper(level), msg), nil
}

func echo(_ context.Context, args []any) (any, error) {
	return args, nil
}

func wait(ctx context.Context, args []any) (any, error) {
	ms, err := numberArg(args, 0, "ms")
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return ms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func stringArg(args []any, i int, name string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %s", name)
	}

	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", name)
	}

	return s, nil
}

func numberArg(args []any, i int, name string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %s", name)
	}

	n, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("argument %s must be a number", name)
	}

	return n, nil
}
