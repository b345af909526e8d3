// Package cli implements the archdiagram command-line interface.
//
// The commands cover the whole diagram pipeline: rendering and validating
// schema files, generating diagrams from descriptions, serving the HTTP API
// and chatting with the architecture assistant. The CLI is built on cobra
// and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Draw a JSON diagram schema to PNG
//   - validate: Check a schema and print its size
//   - types: List the supported node types
//   - generate: Turn a description into a diagram through the model API
//   - serve: Run the HTTP API
//   - chat: Talk to the assistant through a running server
//
// # Configuration
//
// Settings come from archdiagram.toml, a .env file and the environment (see
// internal/config). --config selects another file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// overrides the configured log level.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
