package protocol

import (
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/shim-bridge-go/internal/config"
)

// IDGenerator produces request ids. taken reports whether a candidate id is
// already in use by a waiting call.
type IDGenerator func(method string, now time.Time, taken func(string) bool) string

// TimestampIDs generates "<method>_<epoch-ms>". If that id is taken, the
// millisecond is advanced until a free one is found.
func TimestampIDs(method string, now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()

	for {
		id := method + "_" + strconv.FormatInt(ms, 10)
		if taken == nil || !taken(id) {
			return id
		}

		ms++
	}
}

// ULIDIDs generates "<method>_<ULID>".
func ULIDIDs(method string, now time.Time, _ func(string) bool) string {
	return method + "_" + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// idGeneratorFor selects the generator for a configured style.
func idGeneratorFor(style config.RequestIDStyle) IDGenerator {
	if style == config.RequestIDULID {
		return ULIDIDs
	}

	return TimestampIDs
}
