package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey ContextKey = "request_id"
	// WorkspaceIDKey is the context key for workspace IDs
	WorkspaceIDKey ContextKey = "workspace_id"
	// UserIDKey is the context key for user IDs
	UserIDKey ContextKey = "user_id"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// New creates a new zerolog logger based on config.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	output := out

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// WithContext returns a logger carrying the request, workspace and user ids
// found in ctx.
func WithContext(ctx context.Context, log zerolog.Logger) zerolog.Logger {
	c := log.With()

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		c = c.Str("request_id", requestID)
	}

	if workspaceID, ok := ctx.Value(WorkspaceIDKey).(string); ok && workspaceID != "" {
		c = c.Str("workspace_id", workspaceID)
	}

	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		c = c.Str("user_id", userID)
	}

	return c.Logger()
}

// WorkspaceID returns the workspace id stored in ctx.
func WorkspaceID(ctx context.Context) string {
	id, _ := ctx.Value(WorkspaceIDKey).(string)
	return id
}

// WithWorkspaceID stores the workspace id in ctx.
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, WorkspaceIDKey, workspaceID)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
