package pipe

import (
	"os"
)

// Exists reports whether a channel endpoint is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// IsFIFO reports whether path is a named pipe.
func IsFIFO(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fi.Mode()&os.ModeNamedPipe != 0
}
