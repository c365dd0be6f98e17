package fletch

import (
	"os"

	"github.com/fletch-http/fletch/log"
)

// logger is the package-global sink the Reactors and the Server log
// into. Kept out of the request/response data flow and injectable so
// tests can capture output.
var logger *log.Logger

func init() {
	initLogger(log.InfoLevel)
}

// initLogger (re)initializes the global logger at the given level.
func initLogger(level log.Level) {
	console := log.DefaultConsoleWriter()
	console.Out = os.Stdout

	logger = log.New(console, level)
	log.SetOutput(console)
	log.SetLevel(level)
}

// SetLogger replaces the global logger sink, letting an embedder (or a
// test) capture or redirect core log output.
func SetLogger(l *log.Logger) {
	logger = l
}

// displayStartupMessage logs the startup banner unless disabled.
func displayStartupMessage(addr string, numReactors int) {
	logger.Info().Msg("  __ _      _       _")
	logger.Info().Msg(" / _| | ___| |_ ___| |__")
	logger.Info().Msg("| |_| |/ _ \\ __/ __| '_ \\")
	logger.Info().Msg("|  _| |  __/ || (__| | | |")
	logger.Info().Msg("|_| |_|\\___|\\__\\___|_| |_|")
	logger.Info().Msg(" ")
	logger.Info().Msgf("listening on %s with %d reactors", addr, numReactors)
	logger.Info().Msg("press Ctrl+C to stop")
}
