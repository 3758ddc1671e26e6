// Package logger configures the application's slog-based structured
// logging and carries request-scoped loggers through context.
package logger
