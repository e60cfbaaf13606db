package nodestore

import (
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

// ConfigureLogging sets up the global default logger with a TextHandler
// and configures the log level based on the NODESTORE_LOG_LEVEL environment variable.
// It defaults to Info level if not specified.
//
// Applications embedding the node stores should call this once at startup if they want
// the default logging configuration; libraries in this module only ever log through slog's default logger.
func ConfigureLogging() {
	logLevel.Set(slog.LevelInfo)

	switch os.Getenv("NODESTORE_LOG_LEVEL") {
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLogLevel sets the logging level for the logger configured by ConfigureLogging.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}
