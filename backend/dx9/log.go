package dx9

import (
	"log/slog"
	"os"
)

// overlayLogLevel controls the log level for backend debug logging.
// Default is LevelInfo, which suppresses Debug messages.
// SetVerbose(true) sets it to LevelDebug.
var overlayLogLevel = new(slog.LevelVar)

// SetVerbose enables or disables verbose/debug logging for the backend.
// Call this from main() after parsing flags.
func SetVerbose(v bool) {
	if v {
		overlayLogLevel.Set(slog.LevelDebug)
	} else {
		overlayLogLevel.Set(slog.LevelInfo)
	}
}

// defaultLogger is used unless WithLogger supplies a replacement.
var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: overlayLogLevel}))
