package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// Request is the envelope written to the request channel.
//
// Wire format:
//
//	{"method": "calculate", "args": [3, 4, "add"], "id": "calculate_1000"}
//
// Legacy fire-and-forget requests omit the id.
type Request struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
	ID     string `json:"id,omitempty"`
}

// Response is the envelope read from the response channel.
//
// Wire format:
//
//	{"id": "calculate_1000", "result": 7}
//	{"id": "withdrawItem_1001", "error": "bank is closed"}
//
// A missing or null id marks a reply to a legacy request.
type Response struct {
	ID     *string         `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// DecodeResponse parses one response line. Anything but a JSON object,
// including a bare null, is rejected.
func DecodeResponse(line []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &errors.SerializationError{
			Op:      "decode",
			RawData: string(line),
			Err:     fmt.Errorf("response is not a JSON object"),
		}
	}

	var resp Response

	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, &errors.SerializationError{Op: "decode", RawData: string(line), Err: err}
	}

	return &resp, nil
}

// HasID reports whether the response carries a correlation id.
func (r *Response) HasID() bool {
	return r.ID != nil
}

// Matches reports whether the response answers the request with id.
// Id-less responses match any request.
func (r *Response) Matches(id string) bool {
	return r.ID == nil || *r.ID == id
}

// IsError reports whether the worker failed the request.
func (r *Response) IsError() bool {
	return !isNull(r.Error)
}

// ErrorMessage returns the worker's error text. Non-string error values are
// rendered as JSON.
func (r *Response) ErrorMessage() string {
	if !r.IsError() {
		return ""
	}

	var msg string
	if err := json.Unmarshal(r.Error, &msg); err != nil {
		msg = string(r.Error)
	}

	if msg == "" {
		return "worker reported an error"
	}

	return msg
}

// Payload decodes the result. An absent or null result yields nil.
func (r *Response) Payload() (any, error) {
	if isNull(r.Result) {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(r.Result, &v); err != nil {
		return nil, &errors.SerializationError{Op: "decode", RawData: string(r.Result), Err: err}
	}

	return v, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Call describes one bridged operation.
type Call struct {
	// Method names the remote operation. Required.
	Method string

	// Args are passed to the worker in order.
	Args []any

	// Timeout bounds the wait for a reply. Zero uses the configured default.
	Timeout time.Duration

	// RequestPath overrides the configured request channel for this call.
	RequestPath string
}

// Outcome is the result of a call.
//
// Exactly one of Result (when Success) or Error (when not) is meaningful.
// A failed Outcome always carries a non-empty Error; Err keeps the typed cause
// for errors.Is and errors.As and is not serialized.
type Outcome struct {
	Success bool
	Result  any
	Error   string
	Err     error
}

// Succeeded builds a successful outcome.
func Succeeded(result any) Outcome {
	return Outcome{Success: true, Result: result}
}

// Failed builds a failed outcome from err.
func Failed(err error) Outcome {
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}

	return Outcome{Success: false, Error: msg, Err: err}
}

type outcomeJSON struct {
	Success bool    `json:"success"`
	Result  any     `json:"result"`
	Error   *string `json:"error"`
}

// MarshalJSON renders {"success": bool, "result": any|null, "error": string|null}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Success: o.Success}

	if o.Success {
		out.Result = o.Result
	} else {
		msg := o.Error
		out.Error = &msg
	}

	return json.Marshal(out)
}

// outcomeFromResponse maps a matched response to an outcome.
func outcomeFromResponse(method string, resp *Response) Outcome {
	if resp.IsError() {
		return Failed(&errors.WorkerError{Method: method, Message: resp.ErrorMessage()})
	}

	result, err := resp.Payload()
	if err != nil {
		return Failed(err)
	}

	return Succeeded(result)
}
