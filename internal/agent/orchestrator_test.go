package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/classifier"
	"github.com/frostline-games/support-agent/internal/connector"
	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/events"
	"github.com/frostline-games/support-agent/internal/knowledge"
	"github.com/frostline-games/support-agent/internal/observability"
	"github.com/frostline-games/support-agent/internal/repository"
	"github.com/frostline-games/support-agent/internal/triage"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *connector.MockConnector, *repository.MemoryCaseRepository) {
	t.Helper()
	conn := connector.NewMockConnector()
	cases := repository.NewMemoryCaseRepository()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	triageSvc := triage.NewService(nil, classifier.NewKeywordClassifier(), triage.NewPolicy(0.1), true, logger, metrics)
	orch := NewOrchestrator(conn, cases, knowledge.NewStaticKB(), triageSvc, events.NewInMemoryDispatcher(), logger, metrics)
	return orch, conn, cases
}

func pushAndHandle(t *testing.T, orch *Orchestrator, conn *connector.MockConnector, ev domain.MessageEvent) domain.MessageEvent {
	t.Helper()
	ev = conn.Push(ev)
	require.NoError(t, orch.HandleMessage(context.Background(), ev))
	return ev
}

func TestPaymentMessageGetsReplyAndWaitsForUser(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:   "t1",
		FromUserID: "u1",
		FromName:   "Ana",
		Text:       "I paid but didn't receive my item",
	})

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.CategoryPayment, rec.Category)
	assert.Equal(t, domain.CaseStatusWaitingUser, rec.Status)

	replies := conn.SentReplies()
	require.Len(t, replies, 1)
	assert.Equal(t, "t1", replies[0].ThreadID)
	assert.Contains(t, replies[0].Text, "Hi Ana,")
	assert.Contains(t, replies[0].Text, "Transaction ID")
}

func TestRefundEscalatesWithoutReply(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:   "t2",
		FromUserID: "u2",
		Text:       "I want a refund immediately!",
	})

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.CategoryRefund, rec.Category)
	assert.Equal(t, domain.CaseStatusEscalated, rec.Status)
	assert.Equal(t, domain.AssigneeHuman, rec.AssignedTo)
	assert.Empty(t, conn.SentReplies())

	actions, err := cases.ListActions(context.Background(), rec.CaseID)
	require.NoError(t, err)
	var escalated bool
	for _, a := range actions {
		if a.Type == domain.ActionEscalated {
			escalated = true
		}
	}
	assert.True(t, escalated)
}

func TestDuplicateMessageIsIdempotent(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	ev := pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:   "t3",
		FromUserID: "u3",
		Text:       "I paid but didn't receive my item",
	})

	// Replay the exact same event.
	require.NoError(t, orch.HandleMessage(context.Background(), ev))

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t3")
	require.NoError(t, err)
	require.NotNil(t, rec)

	actions, err := cases.ListActions(context.Background(), rec.CaseID)
	require.NoError(t, err)
	var triaged int
	for _, a := range actions {
		if a.Type == domain.ActionTriaged {
			triaged++
		}
	}
	assert.Equal(t, 1, triaged, "replay must not re-triage")
	assert.Len(t, conn.SentReplies(), 1, "replay must not re-reply")
}

func TestSecondMessageMovesWaitingUserToInProgress(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:    "t4",
		FromUserID:  "u4",
		Text:        "I paid but didn't receive my item",
		TimestampMs: 1000,
	})

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t4")
	require.NoError(t, err)
	require.Equal(t, domain.CaseStatusWaitingUser, rec.Status)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:    "t4",
		FromUserID:  "u4",
		Text:        "Payment was via Google Play, transaction GPA-1234-5678, uid 99887",
		TimestampMs: 2000,
	})

	rec, err = cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t4")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEqual(t, domain.CaseStatusNew, rec.Status)

	actions, err := cases.ListActions(context.Background(), rec.CaseID)
	require.NoError(t, err)
	var sawTransition bool
	for _, a := range actions {
		if a.Type != domain.ActionStatusChanged {
			continue
		}
		if p, ok := a.Payload.(domain.StatusChangePayload); ok &&
			p.From == domain.CaseStatusWaitingUser && p.To == domain.CaseStatusInProgress {
			sawTransition = true
		}
	}
	assert.True(t, sawTransition, "expected WAITING_USER -> IN_PROGRESS audit entry")
}

func TestKeywordSourceRecordedInAudit(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:   "t5",
		FromUserID: "u5",
		Text:       "充值了但没到账",
	})

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t5")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.CategoryPayment, rec.Category)
	assert.Equal(t, domain.LanguageSimplifiedChinese, rec.Language)

	actions, err := cases.ListActions(context.Background(), rec.CaseID)
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	decision, ok := actions[0].Payload.(domain.TriageDecision)
	require.True(t, ok)
	assert.Equal(t, domain.SourceKeyword, decision.Source)
}

func TestRunPollAdvancesWatermarkAndIsolatesFailures(t *testing.T) {
	orch, conn, _ := newTestOrchestrator(t)

	conn.Push(domain.MessageEvent{ThreadID: "a", FromUserID: "u", Text: "hello", TimestampMs: 100})
	conn.Push(domain.MessageEvent{ThreadID: "b", FromUserID: "u", Text: "crash with error: ABC123", TimestampMs: 200})

	mark, err := orch.RunPoll(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), mark)

	// Nothing newer than the watermark: no work, watermark unchanged.
	mark, err = orch.RunPoll(context.Background(), mark)
	require.NoError(t, err)
	assert.Equal(t, int64(200), mark)
}

func TestRunRescanStampsOpenCases(t *testing.T) {
	orch, conn, cases := newTestOrchestrator(t)

	pushAndHandle(t, orch, conn, domain.MessageEvent{
		ThreadID:   "t6",
		FromUserID: "u6",
		Text:       "I paid but didn't receive my item",
	})

	require.NoError(t, orch.RunRescan(context.Background(), 1700000000000))

	rec, err := cases.GetCaseByThread(context.Background(), domain.ChannelMock, "t6")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotEmpty(t, rec.Notes)
	assert.Contains(t, rec.Notes[len(rec.Notes)-1], "Rescan tick at")
}
