package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sitecost/internal/errors"
)

// AuditEntry records one estimate request for later replay
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	EstimateID string    `json:"estimate_id,omitempty"`
	InputHash  string    `json:"input_hash,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Saved      bool      `json:"saved"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	ErrorCode  string    `json:"error_code,omitempty"`
}

// AuditLogger receives an entry for every estimate request
type AuditLogger interface {
	Log(entry AuditEntry)
}

// ZapAuditLogger writes entries to a zap logger
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger creates an audit logger on l
func NewZapAuditLogger(l *zap.Logger) *ZapAuditLogger {
	return &ZapAuditLogger{logger: l.Named("audit")}
}

// Log implements AuditLogger
func (l *ZapAuditLogger) Log(e AuditEntry) {
	l.logger.Info("estimate",
		zap.Time("timestamp", e.Timestamp),
		zap.String("request_id", e.RequestID),
		zap.String("estimate_id", e.EstimateID),
		zap.String("input_hash", e.InputHash),
		zap.String("client_ip", e.ClientIP),
		zap.String("user_agent", e.UserAgent),
		zap.Bool("saved", e.Saved),
		zap.Int64("duration_ms", e.DurationMs),
		zap.Bool("success", e.Success),
		zap.String("error_code", e.ErrorCode),
	)
}

func newAuditEntry(r *http.Request) AuditEntry {
	return AuditEntry{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
		ClientIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

func (e *AuditEntry) markFailed(err error) {
	e.Success = false
	e.ErrorCode = string(errors.TypeOf(err))
	if e.ErrorCode == "" {
		e.ErrorCode = string(errors.TypeInternal)
	}
}

func (e *AuditEntry) finish(start time.Time) {
	e.DurationMs = time.Since(start).Milliseconds()
}
