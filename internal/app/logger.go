package app

import (
	"strings"

	"github.com/seistore/seistore/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level,
// defaulting to info. Dev mode switches to the human-readable console encoder.
func ConfigureLogging(level string, dev bool) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, dev)
}
