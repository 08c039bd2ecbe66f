package types

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewDefaultLogger creates the logger used when the user does not
// provide one. Debug messages are only written when debug is true.
func NewDefaultLogger(name string, debug bool) hclog.Logger {
	level := hclog.Info
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: os.Stderr,
	})
}
