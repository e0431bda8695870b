package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/frostline-games/support-agent/internal/domain"
)

// MemoryCaseRepository is the in-memory CaseRepository used in mock mode and
// by tests. Behavior mirrors the Postgres implementation, including the
// duplicate-message condition.
type MemoryCaseRepository struct {
	mu       sync.RWMutex
	cases    map[string]domain.CaseRecord
	messages map[string]domain.NormalizedMessage
	actions  map[string][]domain.CaseAction
}

// NewMemoryCaseRepository creates an empty in-memory repository.
func NewMemoryCaseRepository() *MemoryCaseRepository {
	return &MemoryCaseRepository{
		cases:    make(map[string]domain.CaseRecord),
		messages: make(map[string]domain.NormalizedMessage),
		actions:  make(map[string][]domain.CaseAction),
	}
}

func (r *MemoryCaseRepository) GetCaseByThread(_ context.Context, channel domain.Channel, threadID string) (*domain.CaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.cases[domain.CaseID(channel, threadID)]
	if !ok {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

func (r *MemoryCaseRepository) GetCaseByID(_ context.Context, caseID string) (*domain.CaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.cases[caseID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := rec
	return &copied, nil
}

func (r *MemoryCaseRepository) UpsertCase(_ context.Context, rec *domain.CaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases[rec.CaseID] = *rec
	return nil
}

func (r *MemoryCaseRepository) AppendCaseNote(_ context.Context, caseID, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.cases[caseID]
	if !ok {
		return pgx.ErrNoRows
	}
	rec.Notes = append(rec.Notes, note)
	r.cases[caseID] = rec
	return nil
}

func (r *MemoryCaseRepository) AppendAction(_ context.Context, action domain.CaseAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	r.actions[action.CaseID] = append(r.actions[action.CaseID], action)
	return nil
}

func (r *MemoryCaseRepository) ListActions(_ context.Context, caseID string) ([]domain.CaseAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.CaseAction(nil), r.actions[caseID]...), nil
}

func (r *MemoryCaseRepository) RecordMessage(_ context.Context, caseID string, msg domain.NormalizedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(msg.Channel) + "|" + msg.MessageID
	if _, exists := r.messages[key]; exists {
		return fmt.Errorf("message %s: %w", msg.MessageID, ErrDuplicateMessage)
	}
	r.messages[key] = msg
	return nil
}

func (r *MemoryCaseRepository) ListOpenCasesForRescan(_ context.Context, _ int64) ([]domain.CaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.CaseRecord
	for _, rec := range r.cases {
		if !rec.Status.Terminal() {
			result = append(result, rec)
		}
	}
	sortByLastMessageDesc(result)
	return result, nil
}

func (r *MemoryCaseRepository) ListCases(_ context.Context, filter CaseFilter) ([]domain.CaseRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []domain.CaseRecord
	for _, rec := range r.cases {
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	sortByLastMessageDesc(matched)

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryCaseRepository) AggregateDailyReport(_ context.Context, startMs, endMs int64) (domain.DailyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := domain.DailyReport{
		TopCategories: map[domain.Category]int{},
		Languages:     map[domain.Language]int{},
	}
	// Open cases are listed regardless of the reporting window, matching the
	// Postgres query.
	var open []domain.CaseRecord
	for _, rec := range r.cases {
		if !rec.Status.Terminal() {
			open = append(open, rec)
		}
		if rec.LastMessageAtMs < startMs || rec.LastMessageAtMs > endMs {
			continue
		}
		report.TotalThreads++
		report.TopCategories[rec.Category]++
		report.Languages[rec.Language]++
		if rec.Status == domain.CaseStatusResolved || rec.Status == domain.CaseStatusWaitingUser {
			report.AutoResolved++
		}
		if rec.Status == domain.CaseStatusEscalated {
			report.Escalated++
		}
		if rec.Severity == domain.SeverityHigh || rec.Severity == domain.SeverityCritical {
			report.HighPriority++
		}
	}
	sortByLastMessageDesc(open)
	if len(open) > 20 {
		open = open[:20]
	}
	for _, rec := range open {
		report.OpenCases = append(report.OpenCases, domain.OpenCaseSummary{
			CaseID:   rec.CaseID,
			Category: rec.Category,
			Status:   rec.Status,
		})
	}
	return report, nil
}

func sortByLastMessageDesc(cases []domain.CaseRecord) {
	sort.Slice(cases, func(i, j int) bool {
		if cases[i].LastMessageAtMs == cases[j].LastMessageAtMs {
			return cases[i].CaseID < cases[j].CaseID
		}
		return cases[i].LastMessageAtMs > cases[j].LastMessageAtMs
	})
}

// MemoryDigestRepository stores digest logs in memory.
type MemoryDigestRepository struct {
	mu   sync.RWMutex
	logs []domain.DigestLog
}

// NewMemoryDigestRepository creates an empty digest log store.
func NewMemoryDigestRepository() *MemoryDigestRepository {
	return &MemoryDigestRepository{}
}

func (r *MemoryDigestRepository) SaveDigestLog(_ context.Context, log *domain.DigestLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *MemoryDigestRepository) ListDigestLogs(_ context.Context, limit, offset int) ([]domain.DigestLog, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sorted := append([]domain.DigestLog(nil), r.logs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TimestampMs > sorted[j].TimestampMs })

	total := len(sorted)
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return sorted[offset:end], total, nil
}

func (r *MemoryDigestRepository) GetDigestLog(_ context.Context, id string) (*domain.DigestLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, log := range r.logs {
		if log.ID == id {
			copied := log
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}
