package protocol

import (
	"context"
	"time"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// invokePoll is the legacy wait: the call itself re-reads the response
// channel every poll interval until a matching reply or the deadline.
//
// Replies carrying another call's id are discarded, not re-offered, so
// concurrent calls sharing one response channel can lose each other's
// replies. Dispatch mode does not have this limitation.
func (c *Controller) invokePoll(
	ctx context.Context,
	method string,
	args []any,
	path string,
	timeout time.Duration,
) Outcome {
	select {
	case <-c.done:
		return Failed(errors.ErrControllerStopped)
	default:
	}

	start := c.now()
	requestID := c.newID(method, start, nil)

	// Sending and polling share one budget.
	deadline := time.Now().Add(timeout)

	log := c.log.With("request_id", requestID, "method", method)
	log.Debug("Sending request")

	req := &Request{Method: method, Args: args, ID: requestID}
	if err := c.send(ctx, path, req, deadline, timeout); err != nil {
		log.Warn("Failed to send request", "error", err)

		return Failed(err)
	}

	attempts := 0

	for {
		attempts++
		attemptStart := time.Now()

		if line, ok := c.transport.TryReadLine(); ok && len(line) > 0 {
			resp, err := DecodeResponse(line)

			switch {
			case err != nil:
				log.Warn("Discarding undecodable response", "error", err, "line", string(line))
			case resp.Matches(requestID):
				log.Debug("Received response", "attempts", attempts, "legacy", !resp.HasID())

				return outcomeFromResponse(method, resp)
			default:
				log.Debug("Discarding response for another request", "other_id", *resp.ID)
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		// A FIFO probe already blocks up to one interval waiting for data;
		// only the rest of the interval is slept.
		wait := max(min(c.pollInterval-time.Since(attemptStart), remaining), 0)

		select {
		case <-time.After(wait):
		case <-c.done:
			log.Debug("Controller stopped during request")

			return Failed(errors.ErrControllerStopped)
		case <-ctx.Done():
			log.Debug("Request cancelled", "error", ctx.Err())

			return Failed(ctx.Err())
		}
	}

	log.Warn("Request timed out", "timeout", timeout, "attempts", attempts)

	return Failed(&errors.TimeoutError{Method: method, Waited: timeout})
}
