package pipe

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"time"
)

// TryReadLine opens path, reads a single newline-terminated line and closes it.
//
// It returns the trimmed line (possibly empty) and true when a line was read,
// or nil and false for "no data". A missing path, a read error or a timeout
// are logged at debug level and reported as no data so that polling callers
// simply try again. For FIFOs the read waits at most wait for a writer's data.
//
// Any bytes buffered past the first line are dropped with the file handle.
// A regular file is always read from its start.
func TryReadLine(log *slog.Logger, path string, wait time.Duration) ([]byte, bool) {
	return tryReadLine(log, path, wait, nil)
}

// tryReadLine is TryReadLine with an optional read position for regular
// files. When offset is non-nil the line is read at *offset and *offset moves
// past it, so repeated calls consume successive lines. A trailing partial
// line is left for a later call.
func tryReadLine(log *slog.Logger, path string, wait time.Duration, offset *int64) ([]byte, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		log.Debug("Response channel not present", "path", path, "error", err)

		return nil, false
	}

	var f *os.File

	isFIFO := fi.Mode()&os.ModeNamedPipe != 0

	if isFIFO {
		f, err = openFIFOProbe(path)
		if err == nil && wait > 0 {
			// Regular files do not support deadlines; FIFOs are pollable.
			_ = f.SetReadDeadline(time.Now().Add(wait))
		}
	} else {
		f, err = os.Open(path)
		if err == nil && offset != nil {
			if fi.Size() < *offset {
				*offset = 0
			}

			if _, err = f.Seek(*offset, io.SeekStart); err != nil {
				_ = f.Close()
			}
		}
	}

	if err != nil {
		log.Debug("Failed to open response channel", "path", path, "error", err)

		return nil, false
	}

	defer f.Close()

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if len(line) == 0 {
		if err != nil {
			log.Debug("No response line available", "path", path, "error", err)
		}

		return nil, false
	}

	if offset != nil && !isFIFO {
		if line[len(line)-1] != '\n' {
			return nil, false
		}

		*offset += int64(len(line))
	}

	return bytes.TrimSpace(line), true
}
