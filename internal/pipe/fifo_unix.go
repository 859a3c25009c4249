//go:build unix

package pipe

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MakeFIFO creates a named pipe at path. An existing FIFO is left in place.
func MakeFIFO(path string, mode uint32) error {
	if IsFIFO(path) {
		return nil
	}

	if err := unix.Mkfifo(path, mode); err != nil {
		return fmt.Errorf("mkfifo %s: %w", path, err)
	}

	return nil
}

// openFIFOReader opens a FIFO read-write so the reader never observes EOF
// while no writer is connected. The runtime poller makes reads interruptible
// by Close.
func openFIFOReader(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
}

// openFIFOProbe opens a FIFO for a single non-blocking read attempt.
func openFIFOProbe(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
}
