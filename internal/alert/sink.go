// Package alert carries low-agreement signals out of the advisory core.
// Alerts are produced, not stored; delivery belongs to the receiving system.
package alert

import (
	"context"
	"log/slog"

	"github.com/finadvisorhq/advisory/pkg/models"
)

// Sink receives alerts emitted by the advice service.
type Sink interface {
	Emit(ctx context.Context, a models.Alert) error
}

// LogSink logs alerts. The default sink when no delivery system is wired.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Emit(_ context.Context, a models.Alert) error {
	slog.Warn("advisor disagreement alert",
		"user_id", a.UserID,
		"analysis_type", a.AnalysisType,
		"agreement_score", a.AgreementScore.String(),
		"reason", a.Reason,
	)
	return nil
}

// Compile-time check that LogSink implements Sink.
var _ Sink = (*LogSink)(nil)
