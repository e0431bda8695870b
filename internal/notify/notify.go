package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/events"
)

// Notifier pushes alerts and reports to the on-call surface. Implementations
// must not block the pipeline; failures are logged, never returned upstream.
type Notifier interface {
	Alert(ctx context.Context, caseRecord *domain.CaseRecord, decision *domain.TriageDecision, reason string)
	DailyReport(ctx context.Context, markdown string)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Alert logs a human-attention notification.
func (n *LogNotifier) Alert(_ context.Context, caseRecord *domain.CaseRecord, decision *domain.TriageDecision, reason string) {
	fields := []zap.Field{zap.String("reason", reason)}
	if caseRecord != nil {
		fields = append(fields,
			zap.String("case_id", caseRecord.CaseID),
			zap.String("status", string(caseRecord.Status)),
		)
	}
	if decision != nil {
		fields = append(fields,
			zap.String("category", string(decision.Category)),
			zap.String("severity", string(decision.Severity)),
		)
	}
	n.logger.Warn("escalation alert", fields...)
}

// DailyReport logs the rendered digest.
func (n *LogNotifier) DailyReport(_ context.Context, markdown string) {
	n.logger.Info("daily digest", zap.String("report", markdown))
}

// Register subscribes the notifier to escalation and alert events.
func Register(dispatcher events.Dispatcher, notifier Notifier) {
	handler := func(ctx context.Context, event events.Event) error {
		notifier.Alert(ctx, event.Case, event.Decision, event.Message)
		return nil
	}
	dispatcher.Subscribe(events.EventCaseEscalated, handler)
	dispatcher.Subscribe(events.EventCriticalAlert, handler)
}
