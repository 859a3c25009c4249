package pipe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// maxLineSize is the maximum size of a single framed line.
const maxLineSize = 1024 * 1024 // 1MB

// Reader continuously reads lines from one channel.
//
// FIFOs are opened read-write so that the read side never sees EOF between
// writers, and closing the file on context cancellation unblocks a pending
// read. Regular files are tailed from the last consumed offset. When the path
// is missing or reading fails, the Reader waits one poll interval and
// re-opens it.
type Reader struct {
	log          *slog.Logger
	path         string
	pollInterval time.Duration
	offset       int64
}

// NewReader creates a Reader for path.
func NewReader(log *slog.Logger, path string, pollInterval time.Duration) *Reader {
	return &Reader{
		log:          log.With("component", "pipe_reader", "path", path),
		path:         path,
		pollInterval: pollInterval,
	}
}

// ReadLines starts a goroutine that emits each non-blank line read from the
// channel. The returned channel is closed when ctx ends.
func (r *Reader) ReadLines(ctx context.Context) <-chan []byte {
	lines := make(chan []byte)

	go func() {
		defer close(lines)
		defer r.log.Debug("ReadLines goroutine stopped")

		missingLogged := false

		for ctx.Err() == nil {
			err := r.drain(ctx, lines)

			switch {
			case ctx.Err() != nil:
				return
			case errors.Is(err, os.ErrNotExist):
				if !missingLogged {
					r.log.Info("Waiting for channel to appear")

					missingLogged = true
				}
			case err != nil:
				missingLogged = false

				r.log.Warn("Channel read failed, reopening", "error", err)
			default:
				missingLogged = false
			}

			select {
			case <-ctx.Done():
			case <-time.After(r.pollInterval):
			}
		}
	}()

	return lines
}

// drain opens the channel once and forwards lines until the file is exhausted
// (regular files only), an error occurs, or ctx ends.
func (r *Reader) drain(ctx context.Context, lines chan<- []byte) error {
	fi, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	fifo := fi.Mode()&os.ModeNamedPipe != 0

	var f *os.File

	if fifo {
		f, err = openFIFOReader(r.path)
	} else {
		f, err = os.Open(r.path)
	}

	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	defer f.Close()

	stop := context.AfterFunc(ctx, func() {
		// Closing unblocks a read parked in the poller.
		_ = f.Close()
	})
	defer stop()

	var src io.Reader = f

	if !fifo {
		if fi.Size() < r.offset {
			r.log.Debug("Channel file truncated, rewinding", "offset", r.offset, "size", fi.Size())
			r.offset = 0
		}

		if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
			return fmt.Errorf("seek channel: %w", err)
		}

		src = &tailReader{ctx: ctx, f: f, interval: r.pollInterval, offset: &r.offset}
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineCount := 0

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		lineCount++
		r.log.Debug("Read line from channel", "line_count", lineCount)

		select {
		case lines <- bytes.Clone(line):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("scan channel: %w", err)
	}

	return nil
}

// tailReader turns EOF on a regular file into a wait-and-retry, like tail -f.
// It records how many bytes were consumed so a re-open resumes in place.
type tailReader struct {
	ctx      context.Context
	f        *os.File
	interval time.Duration
	offset   *int64
}

func (t *tailReader) Read(p []byte) (int, error) {
	for {
		n, err := t.f.Read(p)
		*t.offset += int64(n)

		if n > 0 || !errors.Is(err, io.EOF) {
			return n, err
		}

		if fi, statErr := t.f.Stat(); statErr == nil && fi.Size() < *t.offset {
			// Truncated underneath us; let the Reader re-open and rewind.
			return 0, io.EOF
		}

		select {
		case <-t.ctx.Done():
			return 0, io.EOF
		case <-time.After(t.interval):
		}
	}
}
