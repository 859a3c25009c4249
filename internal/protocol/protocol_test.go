package protocol

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/shim-bridge-go/internal/config"
	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// mockTransport records sent requests and serves scripted reply lines.
type mockTransport struct {
	sent    chan *Request
	lines   chan []byte
	sendErr error

	readLinesCalls atomic.Int32
	tryCalls       atomic.Int32

	mu      sync.Mutex
	pollBuf [][]byte
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		sent:  make(chan *Request, 128),
		lines: make(chan []byte, 128),
	}
}

func (m *mockTransport) Send(_ context.Context, _ string, payload any) error {
	if m.sendErr != nil {
		return m.sendErr
	}

	req, ok := payload.(*Request)
	if !ok {
		return &errors.SerializationError{Op: "encode"}
	}

	m.sent <- req

	return nil
}

func (m *mockTransport) ReadLines(ctx context.Context) <-chan []byte {
	m.readLinesCalls.Add(1)

	out := make(chan []byte)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case line := <-m.lines:
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (m *mockTransport) TryReadLine() ([]byte, bool) {
	m.tryCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pollBuf) == 0 {
		return nil, false
	}

	line := m.pollBuf[0]
	m.pollBuf = m.pollBuf[1:]

	return line, true
}

// reply queues a line for whichever read path the controller uses.
func (m *mockTransport) reply(line string) {
	m.lines <- []byte(line)
}

func (m *mockTransport) queuePoll(line string) {
	m.mu.Lock()
	m.pollBuf = append(m.pollBuf, []byte(line))
	m.mu.Unlock()
}

func (m *mockTransport) nextRequest(t *testing.T) *Request {
	t.Helper()

	select {
	case req := <-m.sent:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a request")

		return nil
	}
}

func testOptions(mode config.ResponseMode) *config.Options {
	opts := config.Default()
	opts.RequestPipe = "/tmp/test_request"
	opts.ResponsePipe = "/tmp/test_response"
	opts.Timeout = 2 * time.Second
	opts.PollInterval = 5 * time.Millisecond
	opts.ResponseMode = mode

	return opts
}

func newStartedController(t *testing.T, transport *mockTransport, opts *config.Options) *Controller {
	t.Helper()

	controller := NewController(slog.Default(), transport, opts)
	controller.now = func() time.Time { return time.UnixMilli(1000) }

	require.NoError(t, controller.Start(context.Background()))
	t.Cleanup(controller.Stop)

	return controller
}

func invokeAsync(ctx context.Context, c *Controller, call Call) <-chan Outcome {
	result := make(chan Outcome, 1)

	go func() {
		result <- c.Invoke(ctx, call)
	}()

	return result
}

func waitOutcome(t *testing.T, result <-chan Outcome) Outcome {
	t.Helper()

	select {
	case out := <-result:
		return out
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")

		return Outcome{}
	}
}

func TestController_Invoke_RoundTrip(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	result := invokeAsync(context.Background(), controller, Call{
		Method: "calculate",
		Args:   []any{3, 4, "add"},
	})

	req := transport.nextRequest(t)
	require.Equal(t, "calculate", req.Method)
	require.Equal(t, "calculate_1000", req.ID)
	require.Equal(t, []any{3, 4, "add"}, req.Args)

	transport.reply(`{"id": "calculate_1000", "result": 7}`)

	out := waitOutcome(t, result)
	require.True(t, out.Success)
	require.EqualValues(t, 7, out.Result)
	require.Empty(t, out.Error)
	require.Zero(t, controller.PendingCount())
}

func TestController_Invoke_NilArgsSentAsEmptyList(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	result := invokeAsync(context.Background(), controller, Call{Method: "isBankOpen"})

	req := transport.nextRequest(t)
	require.NotNil(t, req.Args)
	require.Empty(t, req.Args)

	transport.reply(`{"id": "isBankOpen_1000", "result": true}`)

	out := waitOutcome(t, result)
	require.True(t, out.Success)
	require.Equal(t, true, out.Result)
}

func TestController_Invoke_EmptySuccess(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	result := invokeAsync(context.Background(), controller, Call{Method: "openBank"})

	req := transport.nextRequest(t)
	transport.reply(`{"id": "` + req.ID + `"}`)

	out := waitOutcome(t, result)
	require.True(t, out.Success)
	require.Nil(t, out.Result)
}

func TestController_Invoke_WorkerError(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	result := invokeAsync(context.Background(), controller, Call{Method: "withdrawItem", Args: []any{"Coins", 10}})

	req := transport.nextRequest(t)
	transport.reply(`{"id": "` + req.ID + `", "error": "bank is closed"}`)

	out := waitOutcome(t, result)
	require.False(t, out.Success)
	require.Equal(t, "bank is closed", out.Error)

	var workerErr *errors.WorkerError
	require.ErrorAs(t, out.Err, &workerErr)
	require.Equal(t, "withdrawItem", workerErr.Method)
}

func TestController_Invoke_LegacyReplyGoesToOldestCall(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	ctx := context.Background()

	first := invokeAsync(ctx, controller, Call{Method: "getPlayerPosition"})
	firstReq := transport.nextRequest(t)

	second := invokeAsync(ctx, controller, Call{Method: "getPlayerPosition"})
	secondReq := transport.nextRequest(t)

	require.NotEqual(t, firstReq.ID, secondReq.ID)

	transport.reply(`{"result": "first"}`)
	require.Equal(t, "first", waitOutcome(t, first).Result)

	transport.reply(`{"id": "` + secondReq.ID + `", "result": "second"}`)
	require.Equal(t, "second", waitOutcome(t, second).Result)
}

func TestController_Invoke_ConcurrentCallsNeverCrossDelivered(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	const numCalls = 20

	ctx := context.Background()
	results := make([]<-chan Outcome, numCalls)

	for i := range numCalls {
		results[i] = invokeAsync(ctx, controller, Call{Method: "calculate", Args: []any{i}})
	}

	requests := make([]*Request, 0, numCalls)
	ids := make(map[string]struct{}, numCalls)

	for range numCalls {
		req := transport.nextRequest(t)
		requests = append(requests, req)
		ids[req.ID] = struct{}{}
	}

	require.Len(t, ids, numCalls, "ids must be unique among waiting calls")

	// Reply in reverse order with the call's own argument as the result.
	for i := len(requests) - 1; i >= 0; i-- {
		req := requests[i]

		line, err := json.Marshal(map[string]any{"id": req.ID, "result": req.Args[0]})
		require.NoError(t, err)

		transport.reply(string(line))
	}

	for i, result := range results {
		out := waitOutcome(t, result)
		require.True(t, out.Success)
		require.EqualValues(t, i, out.Result)
	}
}

func TestController_Invoke_DiscardsUnknownAndMalformedReplies(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	result := invokeAsync(context.Background(), controller, Call{Method: "getInventory"})
	req := transport.nextRequest(t)

	transport.reply(`not json`)
	transport.reply(`null`)
	transport.reply(`42`)
	transport.reply(`{"id": "someoneElse_1", "result": "wrong"}`)
	transport.reply(`{"id": "` + req.ID + `", "result": ["Coins"]}`)

	out := waitOutcome(t, result)
	require.True(t, out.Success)
	require.Equal(t, []any{"Coins"}, out.Result)
}

func TestController_Invoke_Timeout(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	out := controller.Invoke(context.Background(), Call{Method: "walkToLocation", Timeout: 50 * time.Millisecond})

	require.False(t, out.Success)
	require.Equal(t, "Timeout waiting for response (waited 0.05s)", out.Error)
	require.ErrorIs(t, out.Err, errors.ErrRequestTimeout)
	require.Zero(t, controller.PendingCount())
}

func TestController_Invoke_ReplyAfterTimeoutIsDropped(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	out := controller.Invoke(context.Background(), Call{Method: "slow", Timeout: 20 * time.Millisecond})
	require.ErrorIs(t, out.Err, errors.ErrRequestTimeout)

	req := transport.nextRequest(t)
	transport.reply(`{"id": "` + req.ID + `", "result": 1}`)

	// A fresh call is not handed the stale reply.
	result := invokeAsync(context.Background(), controller, Call{Method: "fresh"})
	freshReq := transport.nextRequest(t)
	transport.reply(`{"id": "` + freshReq.ID + `", "result": 2}`)

	fresh := waitOutcome(t, result)
	require.True(t, fresh.Success)
	require.EqualValues(t, 2, fresh.Result)
}

func TestController_Invoke_EmptyMethod(t *testing.T) {
	for _, mode := range []config.ResponseMode{config.ResponseModeDispatch, config.ResponseModePoll} {
		t.Run(string(mode), func(t *testing.T) {
			transport := newMockTransport()
			controller := newStartedController(t, transport, testOptions(mode))

			out := controller.Invoke(context.Background(), Call{Method: ""})

			require.False(t, out.Success)
			require.Equal(t, "method_name is required", out.Error)
			require.Empty(t, transport.sent)
		})
	}
}

func TestController_Invoke_ChannelUnavailable(t *testing.T) {
	for _, mode := range []config.ResponseMode{config.ResponseModeDispatch, config.ResponseModePoll} {
		t.Run(string(mode), func(t *testing.T) {
			transport := newMockTransport()
			transport.sendErr = &errors.ChannelUnavailableError{Path: "/tmp/missing_pipe"}
			controller := newStartedController(t, transport, testOptions(mode))

			out := controller.Invoke(context.Background(), Call{Method: "getInventory"})

			require.False(t, out.Success)
			require.Equal(t, "Named pipe /tmp/missing_pipe not available", out.Error)
			require.Zero(t, transport.tryCalls.Load(), "no reply read should be attempted")
			require.Zero(t, controller.PendingCount())
		})
	}
}

func TestController_Invoke_NotStarted(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	out := controller.Invoke(context.Background(), Call{Method: "getInventory"})

	require.False(t, out.Success)
	require.ErrorIs(t, out.Err, errors.ErrControllerNotStarted)
	require.Empty(t, transport.sent)
}

func TestController_Invoke_StopFailsWaitingCalls(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))
	require.NoError(t, controller.Start(context.Background()))

	result := invokeAsync(context.Background(), controller, Call{Method: "walkToLocation"})
	transport.nextRequest(t)

	controller.Stop()

	out := waitOutcome(t, result)
	require.False(t, out.Success)
	require.ErrorIs(t, out.Err, errors.ErrControllerStopped)

	after := controller.Invoke(context.Background(), Call{Method: "walkToLocation"})
	require.ErrorIs(t, after.Err, errors.ErrControllerStopped)
}

func TestController_Invoke_ContextCancelled(t *testing.T) {
	for _, mode := range []config.ResponseMode{config.ResponseModeDispatch, config.ResponseModePoll} {
		t.Run(string(mode), func(t *testing.T) {
			transport := newMockTransport()
			controller := newStartedController(t, transport, testOptions(mode))

			ctx, cancel := context.WithCancel(context.Background())

			result := invokeAsync(ctx, controller, Call{Method: "walkToLocation"})
			transport.nextRequest(t)
			cancel()

			out := waitOutcome(t, result)
			require.False(t, out.Success)
			require.ErrorIs(t, out.Err, context.Canceled)
		})
	}
}

func TestController_Invoke_RequestPathOverride(t *testing.T) {
	transport := &pathRecordingTransport{mockTransport: newMockTransport()}
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModePoll))

	transport.queuePoll(`{"id": "calculate_1000", "result": 1}`)
	controller.now = func() time.Time { return time.UnixMilli(1000) }

	out := controller.Invoke(context.Background(), Call{Method: "calculate", RequestPath: "/tmp/other_pipe"})
	require.True(t, out.Success)

	out = controller.Invoke(context.Background(), Call{Method: "missing", Timeout: 10 * time.Millisecond})
	require.False(t, out.Success)

	require.Equal(t, []string{"/tmp/other_pipe", "/tmp/test_request"}, transport.paths)
}

type pathRecordingTransport struct {
	*mockTransport

	paths []string
}

func (p *pathRecordingTransport) Send(ctx context.Context, path string, payload any) error {
	p.paths = append(p.paths, path)

	return p.mockTransport.Send(ctx, path, payload)
}

func TestController_Poll_RoundTrip(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModePoll))

	require.Zero(t, transport.readLinesCalls.Load(), "poll mode must not start a reader")

	transport.queuePoll(`{"id": "otherCall_1", "result": "not mine"}`)
	transport.queuePoll(`garbage`)
	transport.queuePoll(`{"id": "calculate_1000", "result": 12}`)

	out := controller.Invoke(context.Background(), Call{Method: "calculate", Args: []any{3, 4, "multiply"}})

	require.True(t, out.Success)
	require.EqualValues(t, 12, out.Result)
	require.Equal(t, "calculate_1000", transport.nextRequest(t).ID)
}

func TestController_Poll_LegacyReplyAccepted(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModePoll))

	transport.queuePoll(`{"result": "Hello, Ada!"}`)

	out := controller.Invoke(context.Background(), Call{Method: "greet", Args: []any{"Ada"}})

	require.True(t, out.Success)
	require.Equal(t, "Hello, Ada!", out.Result)
}

func TestController_Poll_DiscardsNonObjectReplies(t *testing.T) {
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModePoll))

	transport.queuePoll(`null`)
	transport.queuePoll(`"done"`)
	transport.queuePoll(`{"id": "withdrawItem_1000", "error": "bank is closed"}`)

	out := controller.Invoke(context.Background(), Call{Method: "withdrawItem", Args: []any{"Lobster", 5}})

	require.False(t, out.Success)
	require.Equal(t, "bank is closed", out.Error)
}

func TestController_Poll_TimeoutAttempts(t *testing.T) {
	transport := newMockTransport()

	opts := testOptions(config.ResponseModePoll)
	opts.PollInterval = 20 * time.Millisecond

	controller := newStartedController(t, transport, opts)

	out := controller.Invoke(context.Background(), Call{Method: "walkToLocation", Timeout: 200 * time.Millisecond})

	require.False(t, out.Success)
	require.Equal(t, "Timeout waiting for response (waited 0.2s)", out.Error)

	attempts := int(transport.tryCalls.Load())
	assert.GreaterOrEqual(t, attempts, 8)
	assert.LessOrEqual(t, attempts, 11)
}

func TestController_Notify(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	require.NoError(t, controller.Notify(context.Background(), "logMessage", "hi", "INFO"))

	req := transport.nextRequest(t)
	require.Equal(t, "logMessage", req.Method)
	require.Empty(t, req.ID)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NotContains(t, string(data), `"id"`)

	var validationErr *errors.ValidationError
	require.ErrorAs(t, controller.Notify(context.Background(), ""), &validationErr)
}

func TestController_ULIDRequestIDs(t *testing.T) {
	transport := newMockTransport()

	opts := testOptions(config.ResponseModeDispatch)
	opts.RequestIDStyle = config.RequestIDULID

	controller := newStartedController(t, transport, opts)

	result := invokeAsync(context.Background(), controller, Call{Method: "getInventory"})
	req := transport.nextRequest(t)

	suffix, ok := strings.CutPrefix(req.ID, "getInventory_")
	require.True(t, ok, "id %q should start with the method", req.ID)

	_, err := ulid.Parse(suffix)
	require.NoError(t, err)

	transport.reply(`{"id": "` + req.ID + `", "result": []}`)
	require.True(t, waitOutcome(t, result).Success)
}

func TestController_Start_Idempotent(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	require.NoError(t, controller.Start(context.Background()))
	require.NoError(t, controller.Start(context.Background()))
	require.EqualValues(t, 1, transport.readLinesCalls.Load())

	controller.Stop()

	select {
	case <-controller.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestController_Start_AfterStop(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	controller.Stop()

	require.ErrorIs(t, controller.Start(context.Background()), errors.ErrControllerStopped)
}

func TestController_Stop_MultipleCalls(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	require.NoError(t, controller.Start(context.Background()))

	controller.Stop()
	controller.Stop()
	controller.Stop()

	select {
	case <-controller.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestController_Stop_ConcurrentWithInvoke(t *testing.T) {
	// Run with: go test -race -count=100
	for range 50 {
		transport := newMockTransport()
		controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))
		require.NoError(t, controller.Start(context.Background()))

		var wg sync.WaitGroup

		wg.Go(func() {
			_ = controller.Invoke(context.Background(), Call{Method: "test", Timeout: time.Millisecond})
		})

		wg.Go(controller.Stop)

		wg.Wait()

		select {
		case <-controller.Done():
		default:
			t.Fatal("done channel should be closed")
		}
	}
}

func TestController_ResponseDeliveryRace(t *testing.T) {
	// Many calls racing their own short timeouts against immediate replies.
	// Run with: go test -race -count=10 -run TestController_ResponseDeliveryRace
	transport := newMockTransport()
	controller := newStartedController(t, transport, testOptions(config.ResponseModeDispatch))

	var (
		wg      sync.WaitGroup
		replies sync.WaitGroup
	)

	const numRequests = 50

	replies.Go(func() {
		for range numRequests {
			req := <-transport.sent
			transport.reply(`{"id": "` + req.ID + `"}`)
		}
	})

	for range numRequests {
		wg.Go(func() {
			_ = controller.Invoke(context.Background(), Call{Method: "test", Timeout: 100 * time.Microsecond})
		})
	}

	wg.Wait()
	replies.Wait()
}

func TestController_RemovePendingKeepsReusedID(t *testing.T) {
	transport := newMockTransport()
	controller := NewController(slog.Default(), transport, testOptions(config.ResponseModeDispatch))

	claimed := &pendingRequest{method: "calculate", seq: 1, response: make(chan *Response, 1)}
	reused := &pendingRequest{method: "calculate", seq: 2, response: make(chan *Response, 1)}

	controller.pending["calculate_1000"] = reused
	controller.removePending("calculate_1000", claimed)

	require.Equal(t, 1, controller.PendingCount())

	controller.removePending("calculate_1000", reused)
	require.Zero(t, controller.PendingCount())
}

// blockedSendTransport never completes a write, like a FIFO with no reader.
type blockedSendTransport struct {
	*mockTransport
}

func (b *blockedSendTransport) Send(ctx context.Context, _ string, _ any) error {
	<-ctx.Done()

	return ctx.Err()
}

func TestController_Invoke_BlockedSendTimesOut(t *testing.T) {
	for _, mode := range []config.ResponseMode{config.ResponseModeDispatch, config.ResponseModePoll} {
		t.Run(string(mode), func(t *testing.T) {
			transport := &blockedSendTransport{mockTransport: newMockTransport()}

			c := NewController(slog.Default(), transport, testOptions(mode))
			require.NoError(t, c.Start(context.Background()))
			t.Cleanup(c.Stop)

			out := c.Invoke(context.Background(), Call{Method: "walkToLocation", Timeout: 50 * time.Millisecond})
			require.False(t, out.Success)
			require.ErrorIs(t, out.Err, errors.ErrRequestTimeout)
			require.Equal(t, "Timeout waiting for response (waited 0.05s)", out.Error)
			require.Zero(t, c.PendingCount())
		})
	}
}

// slowSendTransport delivers each request only after delay.
type slowSendTransport struct {
	*mockTransport

	delay time.Duration
}

func (s *slowSendTransport) Send(ctx context.Context, path string, payload any) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.mockTransport.Send(ctx, path, payload)
}

func TestController_Invoke_SlowSendSharesTimeout(t *testing.T) {
	for _, mode := range []config.ResponseMode{config.ResponseModeDispatch, config.ResponseModePoll} {
		t.Run(string(mode), func(t *testing.T) {
			transport := &slowSendTransport{mockTransport: newMockTransport(), delay: 80 * time.Millisecond}

			c := NewController(slog.Default(), transport, testOptions(mode))
			require.NoError(t, c.Start(context.Background()))
			t.Cleanup(c.Stop)

			start := time.Now()
			out := c.Invoke(context.Background(), Call{Method: "walkToLocation", Timeout: 100 * time.Millisecond})
			elapsed := time.Since(start)

			require.False(t, out.Success)
			require.ErrorIs(t, out.Err, errors.ErrRequestTimeout)
			require.Equal(t, "Timeout waiting for response (waited 0.1s)", out.Error)
			assert.GreaterOrEqual(t, elapsed, 95*time.Millisecond)
			assert.Less(t, elapsed, 160*time.Millisecond)
			require.Zero(t, c.PendingCount())
		})
	}
}
