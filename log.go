package lingoquiz

import (
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// SetVerbose switches the default logger between info and debug level
func SetVerbose(verbose bool) {
	if verbose {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelInfo)
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(msg string, args ...any) {
	slog.Debug(msg, args...)
}
