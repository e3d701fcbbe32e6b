// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithLead returns a logger with the lead ID attached.
func (l *Logger) WithLead(leadID uuid.UUID) *Logger {
	return &Logger{
		Logger: l.With(slog.String("lead_id", leadID.String())),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// EnrichmentStageFailed logs a pipeline stage failure for one lead.
func (l *Logger) EnrichmentStageFailed(stage string, leadID uuid.UUID, err error) {
	l.Error("enrichment_stage_failed",
		slog.String("stage", stage),
		slog.String("lead_id", leadID.String()),
		slog.String("error", err.Error()),
	)
}

// RuleConfigInvalid logs a rule whose config blob could not be decoded.
// The pipeline falls back to defaults; this is the only trace of the problem.
func (l *Logger) RuleConfigInvalid(ruleID uuid.UUID, ruleType string, err error) {
	l.Warn("rule_config_invalid",
		slog.String("rule_id", ruleID.String()),
		slog.String("rule_type", ruleType),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
