// Package logging installs the process-wide terminal logger of the symgen
// commands.
package logging

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
)

// DefaultVerbosity is the legacy level used when no flag is given (info).
const DefaultVerbosity = 3

// Setup routes the default logger to stderr at the legacy verbosity level
// (0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace). Colour follows the
// terminal detection of fatih/color.
func Setup(verbosity int) {
	SetupWriter(os.Stderr, verbosity, !color.NoColor)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, verbosity int, useColor bool) {
	h := log.NewTerminalHandlerWithLevel(w, log.FromLegacyLevel(verbosity), useColor)
	log.SetDefault(log.NewLogger(h))
}
