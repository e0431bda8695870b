package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/connector"
	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/events"
	"github.com/frostline-games/support-agent/internal/knowledge"
	"github.com/frostline-games/support-agent/internal/observability"
	"github.com/frostline-games/support-agent/internal/repository"
	"github.com/frostline-games/support-agent/internal/triage"
)

// Orchestrator drives the per-message pipeline: normalize, triage, case
// transition, guardrailed reply or escalation. It is the single writer of
// case state.
type Orchestrator struct {
	connector  connector.InboxConnector
	cases      repository.CaseRepository
	kb         knowledge.KnowledgeBase
	triage     *triage.Service
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewOrchestrator wires the pipeline.
func NewOrchestrator(
	conn connector.InboxConnector,
	cases repository.CaseRepository,
	kb knowledge.KnowledgeBase,
	triageSvc *triage.Service,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		connector:  conn,
		cases:      cases,
		kb:         kb,
		triage:     triageSvc,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// RunPoll fetches messages newer than sinceMs and processes them in order,
// returning the advanced watermark. A failure in one message is logged and
// does not abort the batch; an expired-credential fetch error propagates so
// the caller can halt the loop.
func (o *Orchestrator) RunPoll(ctx context.Context, sinceMs int64) (int64, error) {
	batch, err := o.connector.FetchNewMessages(ctx, sinceMs)
	if err != nil {
		return sinceMs, fmt.Errorf("fetch messages: %w", err)
	}

	maxTs := sinceMs
	for _, ev := range batch {
		if ev.TimestampMs > maxTs {
			maxTs = ev.TimestampMs
		}
		if err := o.HandleMessage(ctx, ev); err != nil {
			o.metrics.Incr(observability.CounterMessageFailures)
			o.logger.Error("message handling failed",
				zap.String("channel", string(ev.Channel)),
				zap.String("thread_id", ev.ThreadID),
				zap.String("message_id", ev.MessageID),
				zap.Error(err))
		}
	}
	return maxTs, nil
}

// HandleMessage runs the full pipeline for one inbound message. Replaying an
// already-recorded message id is a silent no-op.
func (o *Orchestrator) HandleMessage(ctx context.Context, ev domain.MessageEvent) error {
	normalized := Normalize(ev)
	decision := o.triage.Triage(ctx, normalized.Text)

	rec, err := o.cases.GetCaseByThread(ctx, ev.Channel, ev.ThreadID)
	if err != nil {
		return fmt.Errorf("lookup case: %w", err)
	}

	var prevStatus domain.CaseStatus
	if rec == nil {
		assigned := domain.AssigneeAgent
		if !decision.AutoAllowed {
			assigned = domain.AssigneeHuman
		}
		rec = &domain.CaseRecord{
			CaseID:          domain.CaseID(ev.Channel, ev.ThreadID),
			Channel:         ev.Channel,
			ThreadID:        ev.ThreadID,
			UserID:          ev.FromUserID,
			Status:          domain.CaseStatusNew,
			Category:        decision.Category,
			Severity:        decision.Severity,
			LastMessageAtMs: ev.TimestampMs,
			AssignedTo:      assigned,
			Language:        decision.Language,
			Confidence:      decision.Confidence,
		}
		prevStatus = domain.CaseStatusNew
	} else {
		prevStatus = rec.Status
		rec.LastMessageAtMs = ev.TimestampMs
		rec.Language = decision.Language
		rec.Confidence = decision.Confidence
		if rec.Status == domain.CaseStatusWaitingUser {
			// The user replied; the thread is being worked again.
			rec.Status = domain.CaseStatusInProgress
		}
	}

	if err := o.cases.UpsertCase(ctx, rec); err != nil {
		return fmt.Errorf("upsert case: %w", err)
	}

	// Idempotence boundary: a replayed message id stops here, before any
	// audit entries or outbound replies.
	if err := o.cases.RecordMessage(ctx, rec.CaseID, normalized); err != nil {
		if errors.Is(err, repository.ErrDuplicateMessage) {
			o.metrics.Incr(observability.CounterDuplicatesSkipped)
			o.logger.Info("skipping duplicate message",
				zap.String("case_id", rec.CaseID),
				zap.String("message_id", ev.MessageID))
			return nil
		}
		return fmt.Errorf("record message: %w", err)
	}

	o.metrics.Incr(observability.CounterMessagesProcessed)

	if err := o.appendAction(ctx, rec.CaseID, domain.ActionTriaged, decision); err != nil {
		return err
	}
	o.publish(ctx, events.EventCaseTriaged, rec, &decision, "")

	if prevStatus == domain.CaseStatusWaitingUser && rec.Status == domain.CaseStatusInProgress {
		if err := o.appendAction(ctx, rec.CaseID, domain.ActionStatusChanged, domain.StatusChangePayload{From: prevStatus, To: rec.Status}); err != nil {
			return err
		}
		o.publish(ctx, events.EventStatusChanged, rec, &decision, "")
	}

	if decision.Severity == domain.SeverityCritical {
		o.publish(ctx, events.EventCriticalAlert, rec, &decision,
			fmt.Sprintf("critical issue on thread %s", ev.ThreadID))
	}

	if !decision.AutoAllowed {
		reason := decision.EscalationReason
		if reason == "" {
			reason = "policy gate"
		}
		return o.escalate(ctx, rec, decision, reason)
	}

	evidence, err := o.kb.Search(ctx, decision.Category, normalized.Text)
	if err != nil {
		o.logger.Warn("evidence retrieval failed", zap.Error(err))
		evidence = domain.EvidencePack{}
	}

	draft := ComposeReply(normalized, decision, evidence)
	approved, ok := Guardrails(draft, decision)
	if !ok {
		return o.escalate(ctx, rec, decision, "guardrails rejected reply")
	}

	if err := o.connector.SendReply(ctx, ev.ThreadID, approved.Text); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	rec.LastAgentActionAtMs = o.now().UnixMilli()
	o.metrics.Incr(observability.CounterAutoReplies)

	if err := o.appendAction(ctx, rec.CaseID, domain.ActionAutoReplied, domain.AutoReplyPayload{Text: truncate(approved.Text, 100)}); err != nil {
		return err
	}
	o.publish(ctx, events.EventAutoReplied, rec, &decision, "")

	from := rec.Status
	if len(approved.RequiresUserInfo) > 0 {
		rec.Status = domain.CaseStatusWaitingUser
	} else {
		rec.Status = domain.CaseStatusResolved
	}
	if err := o.cases.UpsertCase(ctx, rec); err != nil {
		return fmt.Errorf("upsert case: %w", err)
	}

	if from != rec.Status {
		if err := o.appendAction(ctx, rec.CaseID, domain.ActionStatusChanged, domain.StatusChangePayload{From: from, To: rec.Status}); err != nil {
			return err
		}
		o.publish(ctx, events.EventStatusChanged, rec, &decision, "")
	}

	return o.cases.AppendCaseNote(ctx, rec.CaseID, fmt.Sprintf("Auto-replied. Status=%s", rec.Status))
}

// RunRescan visits every non-terminal case and stamps a rescan note.
func (o *Orchestrator) RunRescan(ctx context.Context, nowMs int64) error {
	open, err := o.cases.ListOpenCasesForRescan(ctx, nowMs)
	if err != nil {
		return fmt.Errorf("list open cases: %w", err)
	}
	stamp := time.UnixMilli(nowMs).UTC().Format(time.RFC3339)
	for _, rec := range open {
		if err := o.cases.AppendCaseNote(ctx, rec.CaseID, fmt.Sprintf("Rescan tick at %s", stamp)); err != nil {
			o.logger.Warn("rescan note failed", zap.String("case_id", rec.CaseID), zap.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) escalate(ctx context.Context, rec *domain.CaseRecord, decision domain.TriageDecision, reason string) error {
	rec.Status = domain.CaseStatusEscalated
	rec.AssignedTo = domain.AssigneeHuman
	if err := o.cases.UpsertCase(ctx, rec); err != nil {
		return fmt.Errorf("upsert case: %w", err)
	}
	if err := o.appendAction(ctx, rec.CaseID, domain.ActionEscalated, domain.EscalationPayload{Reason: reason}); err != nil {
		return err
	}
	if err := o.cases.AppendCaseNote(ctx, rec.CaseID, fmt.Sprintf("Escalated: %s", reason)); err != nil {
		return err
	}
	o.metrics.Incr(observability.CounterEscalations)
	o.publish(ctx, events.EventCaseEscalated, rec, &decision, reason)
	return nil
}

func (o *Orchestrator) appendAction(ctx context.Context, caseID string, kind domain.ActionType, payload any) error {
	err := o.cases.AppendAction(ctx, domain.CaseAction{
		CaseID:  caseID,
		Type:    kind,
		AtMs:    o.now().UnixMilli(),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("append %s action: %w", kind, err)
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, kind events.EventType, rec *domain.CaseRecord, decision *domain.TriageDecision, message string) {
	snapshot := *rec
	_ = o.dispatcher.Publish(ctx, events.Event{
		Type:     kind,
		CaseID:   rec.CaseID,
		Case:     &snapshot,
		Decision: decision,
		Message:  message,
	})
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
