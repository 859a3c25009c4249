//go:build !unix

package pipe

import (
	"os"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// MakeFIFO is not supported on this platform.
func MakeFIFO(path string, _ uint32) error {
	return &errors.ChannelUnavailableError{Path: path, Err: errors.ErrUnsupportedPlatform}
}

func openFIFOReader(path string) (*os.File, error) {
	return os.Open(path)
}

func openFIFOProbe(path string) (*os.File, error) {
	return os.Open(path)
}
