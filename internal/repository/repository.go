package repository

import (
	"context"
	"errors"

	"github.com/frostline-games/support-agent/internal/domain"
)

// ErrDuplicateMessage signals that a messageId was already recorded for a
// case. Callers distinguish it with errors.Is; it is the idempotence boundary
// for at-least-once delivery from connectors.
var ErrDuplicateMessage = errors.New("duplicate message")

// CaseFilter captures dashboard list parameters.
type CaseFilter struct {
	Category domain.Category
	Status   domain.CaseStatus
	Limit    int
	Offset   int
}

// CaseRepository encapsulates case persistence. GetCaseByThread returns
// (nil, nil) when no case exists for the thread.
type CaseRepository interface {
	GetCaseByThread(ctx context.Context, channel domain.Channel, threadID string) (*domain.CaseRecord, error)
	GetCaseByID(ctx context.Context, caseID string) (*domain.CaseRecord, error)
	UpsertCase(ctx context.Context, rec *domain.CaseRecord) error
	AppendCaseNote(ctx context.Context, caseID, note string) error
	AppendAction(ctx context.Context, action domain.CaseAction) error
	ListActions(ctx context.Context, caseID string) ([]domain.CaseAction, error)
	RecordMessage(ctx context.Context, caseID string, msg domain.NormalizedMessage) error
	ListOpenCasesForRescan(ctx context.Context, nowMs int64) ([]domain.CaseRecord, error)
	ListCases(ctx context.Context, filter CaseFilter) ([]domain.CaseRecord, int, error)
	AggregateDailyReport(ctx context.Context, startMs, endMs int64) (domain.DailyReport, error)
}

// DigestRepository stores periodic digest runs.
type DigestRepository interface {
	SaveDigestLog(ctx context.Context, log *domain.DigestLog) error
	ListDigestLogs(ctx context.Context, limit, offset int) ([]domain.DigestLog, int, error)
	GetDigestLog(ctx context.Context, id string) (*domain.DigestLog, error)
}
