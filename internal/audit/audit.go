// Package audit records security-relevant flow events (login completed,
// account registered, tier rejected) for operational follow-up.
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// Event names emitted by the login flow.
const (
	EventLoginStarted      = "login.started"
	EventLoginCompleted    = "login.completed"
	EventTierRejected      = "login.tier_rejected"
	EventAccountRegistered = "crm.account_registered"
	EventAccountLinked     = "crm.account_linked"
	EventFlowFailed        = "login.flow_failed"
)

// Recorder persists audit events. Implementations must never block the
// request path on sink trouble: record best-effort, log the failure.
type Recorder interface {
	Record(ctx context.Context, event string, fields map[string]any)
	Close()
}

// logRecorder writes events to the structured log. Default sink.
type logRecorder struct{}

// NewLogRecorder returns the log-backed recorder.
func NewLogRecorder() Recorder { return logRecorder{} }

func (logRecorder) Record(ctx context.Context, event string, fields map[string]any) {
	log := logger.From(ctx).With(logger.Component("audit"), logger.String("event", event))
	log.Info("audit", logger.Any("fields", fields), logger.Any("ts", time.Now().UTC()))
}

func (logRecorder) Close() {}
