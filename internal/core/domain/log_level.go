package domain

import "log/slog"

// LogLevel is the severity of a line written into a step's output.
type LogLevel = slog.Level

// Levels understood by step output. They print as DEBUG, INFO, WARN and ERROR.
const (
	LogLevelDebug = slog.LevelDebug
	LogLevelInfo  = slog.LevelInfo
	LogLevelWarn  = slog.LevelWarn
	LogLevelError = slog.LevelError
)
