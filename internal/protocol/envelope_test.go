package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantID     string
		wantLegacy bool
		wantError  string
		wantResult any
	}{
		{
			name:       "result",
			line:       `{"id": "calculate_1", "result": 7}`,
			wantID:     "calculate_1",
			wantResult: float64(7),
		},
		{
			name:       "null id is legacy",
			line:       `{"id": null, "result": "ok"}`,
			wantLegacy: true,
			wantResult: "ok",
		},
		{
			name:       "missing id is legacy",
			line:       `{"result": {"x": 1}}`,
			wantLegacy: true,
			wantResult: map[string]any{"x": float64(1)},
		},
		{
			name:      "string error",
			line:      `{"id": "a_1", "error": "bank is closed"}`,
			wantID:    "a_1",
			wantError: "bank is closed",
		},
		{
			name:      "structured error",
			line:      `{"id": "a_1", "error": {"code": 3}}`,
			wantID:    "a_1",
			wantError: `{"code": 3}`,
		},
		{
			name:      "empty error string",
			line:      `{"id": "a_1", "error": ""}`,
			wantID:    "a_1",
			wantError: "worker reported an error",
		},
		{
			name:   "null error and result",
			line:   `{"id": "a_1", "error": null, "result": null}`,
			wantID: "a_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.line))
			require.NoError(t, err)

			require.Equal(t, !tt.wantLegacy, resp.HasID())

			if !tt.wantLegacy {
				require.Equal(t, tt.wantID, *resp.ID)
			}

			require.Equal(t, tt.wantError, resp.ErrorMessage())
			require.Equal(t, tt.wantError != "", resp.IsError())

			if tt.wantError == "" {
				payload, err := resp.Payload()
				require.NoError(t, err)
				require.Equal(t, tt.wantResult, payload)
			}
		})
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	for _, line := range []string{`{"id": `, `null`, ` null `, `7`, `"ok"`, `["x"]`, `true`} {
		t.Run(line, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(line))
			require.Nil(t, resp)

			var serErr *errors.SerializationError
			require.ErrorAs(t, err, &serErr)
			require.Equal(t, "decode", serErr.Op)
			require.Equal(t, line, serErr.RawData)
		})
	}
}

func TestResponse_Matches(t *testing.T) {
	id := "walkToLocation_5"
	resp := &Response{ID: &id}

	require.True(t, resp.Matches("walkToLocation_5"))
	require.False(t, resp.Matches("walkToLocation_6"))
	require.True(t, (&Response{}).Matches("anything"))
}

func TestOutcome_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "success with result",
			outcome: Succeeded(map[string]any{"x": 3200}),
			want:    `{"success": true, "result": {"x": 3200}, "error": null}`,
		},
		{
			name:    "success without result",
			outcome: Succeeded(nil),
			want:    `{"success": true, "result": null, "error": null}`,
		},
		{
			name:    "failure",
			outcome: Failed(&errors.TimeoutError{Method: "m", Waited: 300 * time.Second}),
			want:    `{"success": false, "result": null, "error": "Timeout waiting for response (waited 300s)"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.outcome)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestFailed_NeverEmpty(t *testing.T) {
	out := Failed(&errors.WorkerError{Method: "m"})

	require.False(t, out.Success)
	require.Equal(t, "unknown error", out.Error)
}

func TestTimestampIDs(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	require.Equal(t, "calculate_1700000000000", TimestampIDs("calculate", now, nil))

	taken := map[string]bool{
		"calculate_1700000000000": true,
		"calculate_1700000000001": true,
	}

	id := TimestampIDs("calculate", now, func(id string) bool { return taken[id] })
	require.Equal(t, "calculate_1700000000002", id)
}

func TestULIDIDs_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})

	for range 100 {
		seen[ULIDIDs("getInventory", now, nil)] = struct{}{}
	}

	require.Len(t, seen, 100)
}
