package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frostline-games/support-agent/internal/domain"
)

const uniqueViolationCode = "23505"

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates the Postgres-backed case repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `case_id, channel, thread_id, user_id, status, category, severity,
       last_message_at_ms, last_agent_action_at_ms, assigned_to, notes_json, language, confidence`

func (r *caseRepository) GetCaseByThread(ctx context.Context, channel domain.Channel, threadID string) (*domain.CaseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE channel=$1 AND thread_id=$2`, caseColumns)
	rec, err := r.fetchSingle(ctx, query, channel, threadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *caseRepository) GetCaseByID(ctx context.Context, caseID string) (*domain.CaseRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE case_id=$1`, caseColumns)
	return r.fetchSingle(ctx, query, caseID)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.CaseRecord, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	return scanCase(row)
}

func (r *caseRepository) UpsertCase(ctx context.Context, rec *domain.CaseRecord) error {
	notes, err := json.Marshal(rec.Notes)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO cases (case_id, channel, thread_id, user_id, status, category, severity,
            last_message_at_ms, last_agent_action_at_ms, assigned_to, notes_json, language, confidence, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())
        ON CONFLICT (case_id) DO UPDATE SET
            status=EXCLUDED.status,
            category=EXCLUDED.category,
            severity=EXCLUDED.severity,
            last_message_at_ms=EXCLUDED.last_message_at_ms,
            last_agent_action_at_ms=EXCLUDED.last_agent_action_at_ms,
            assigned_to=EXCLUDED.assigned_to,
            notes_json=EXCLUDED.notes_json,
            language=EXCLUDED.language,
            confidence=EXCLUDED.confidence,
            updated_at=NOW()`
	_, err = r.pool.Exec(ctx, query,
		rec.CaseID,
		rec.Channel,
		rec.ThreadID,
		rec.UserID,
		rec.Status,
		rec.Category,
		rec.Severity,
		rec.LastMessageAtMs,
		rec.LastAgentActionAtMs,
		rec.AssignedTo,
		notes,
		rec.Language,
		rec.Confidence,
	)
	return err
}

func (r *caseRepository) AppendCaseNote(ctx context.Context, caseID, note string) error {
	const query = `
        UPDATE cases
        SET notes_json = notes_json || to_jsonb($2::text), updated_at = NOW()
        WHERE case_id=$1`
	cmd, err := r.pool.Exec(ctx, query, caseID, note)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) AppendAction(ctx context.Context, action domain.CaseAction) error {
	payload, err := json.Marshal(action.Payload)
	if err != nil {
		return err
	}
	id := action.ID
	if id == "" {
		id = uuid.NewString()
	}
	const query = `
        INSERT INTO case_actions (id, case_id, type, at_ms, payload_json)
        VALUES ($1,$2,$3,$4,$5)`
	_, err = r.pool.Exec(ctx, query, id, action.CaseID, action.Type, action.AtMs, payload)
	return err
}

func (r *caseRepository) ListActions(ctx context.Context, caseID string) ([]domain.CaseAction, error) {
	const query = `
        SELECT id, case_id, type, at_ms, payload_json
        FROM case_actions WHERE case_id=$1 ORDER BY at_ms ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseAction
	for rows.Next() {
		var action domain.CaseAction
		var payload []byte
		if err := rows.Scan(&action.ID, &action.CaseID, &action.Type, &action.AtMs, &payload); err != nil {
			return nil, err
		}
		var decoded any
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &decoded); err != nil {
				return nil, err
			}
		}
		action.Payload = decoded
		result = append(result, action)
	}
	return result, rows.Err()
}

func (r *caseRepository) RecordMessage(ctx context.Context, caseID string, msg domain.NormalizedMessage) error {
	entities, err := json.Marshal(msg.Entities)
	if err != nil {
		return err
	}
	var raw []byte
	if msg.Raw != nil {
		if raw, err = json.Marshal(msg.Raw); err != nil {
			return err
		}
	}
	const query = `
        INSERT INTO messages (message_id, case_id, channel, thread_id, user_id, text, timestamp_ms, entities_json, raw_json)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = r.pool.Exec(ctx, query,
		msg.MessageID,
		caseID,
		msg.Channel,
		msg.ThreadID,
		msg.FromUserID,
		msg.Text,
		msg.TimestampMs,
		entities,
		raw,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("message %s: %w", msg.MessageID, ErrDuplicateMessage)
	}
	return err
}

func (r *caseRepository) ListOpenCasesForRescan(ctx context.Context, _ int64) ([]domain.CaseRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM cases
        WHERE status NOT IN ('CLOSED','RESOLVED')
        ORDER BY last_message_at_ms DESC`, caseColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) ListCases(ctx context.Context, filter CaseFilter) ([]domain.CaseRecord, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM cases WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE %s ORDER BY last_message_at_ms DESC LIMIT %d OFFSET %d`,
		caseColumns, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cases, err := scanCases(rows)
	return cases, total, err
}

func (r *caseRepository) AggregateDailyReport(ctx context.Context, startMs, endMs int64) (domain.DailyReport, error) {
	report := domain.DailyReport{
		TopCategories: map[domain.Category]int{},
		Languages:     map[domain.Language]int{},
	}

	const totals = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status IN ('RESOLVED','WAITING_USER')),
               COUNT(*) FILTER (WHERE status = 'ESCALATED'),
               COUNT(*) FILTER (WHERE severity IN ('high','critical'))
        FROM cases WHERE last_message_at_ms >= $1 AND last_message_at_ms <= $2`
	if err := r.pool.QueryRow(ctx, totals, startMs, endMs).Scan(
		&report.TotalThreads, &report.AutoResolved, &report.Escalated, &report.HighPriority); err != nil {
		return report, err
	}

	const byCategory = `
        SELECT category, COUNT(*) FROM cases
        WHERE last_message_at_ms >= $1 AND last_message_at_ms <= $2
        GROUP BY category`
	rows, err := r.pool.Query(ctx, byCategory, startMs, endMs)
	if err != nil {
		return report, err
	}
	defer rows.Close()
	for rows.Next() {
		var category domain.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return report, err
		}
		report.TopCategories[category] = count
	}
	if err := rows.Err(); err != nil {
		return report, err
	}

	const byLanguage = `
        SELECT language, COUNT(*) FROM cases
        WHERE last_message_at_ms >= $1 AND last_message_at_ms <= $2
        GROUP BY language`
	langRows, err := r.pool.Query(ctx, byLanguage, startMs, endMs)
	if err != nil {
		return report, err
	}
	defer langRows.Close()
	for langRows.Next() {
		var language domain.Language
		var count int
		if err := langRows.Scan(&language, &count); err != nil {
			return report, err
		}
		report.Languages[language] = count
	}
	if err := langRows.Err(); err != nil {
		return report, err
	}

	openQuery := fmt.Sprintf(`
        SELECT %s FROM cases
        WHERE status NOT IN ('CLOSED','RESOLVED')
        ORDER BY last_message_at_ms DESC LIMIT 20`, caseColumns)
	openRows, err := r.pool.Query(ctx, openQuery)
	if err != nil {
		return report, err
	}
	defer openRows.Close()
	open, err := scanCases(openRows)
	if err != nil {
		return report, err
	}
	for _, c := range open {
		report.OpenCases = append(report.OpenCases, domain.OpenCaseSummary{
			CaseID:   c.CaseID,
			Category: c.Category,
			Status:   c.Status,
		})
	}
	return report, nil
}

func scanCase(row pgx.Row) (*domain.CaseRecord, error) {
	var rec domain.CaseRecord
	var notes []byte
	if err := row.Scan(
		&rec.CaseID,
		&rec.Channel,
		&rec.ThreadID,
		&rec.UserID,
		&rec.Status,
		&rec.Category,
		&rec.Severity,
		&rec.LastMessageAtMs,
		&rec.LastAgentActionAtMs,
		&rec.AssignedTo,
		&notes,
		&rec.Language,
		&rec.Confidence,
	); err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &rec.Notes); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func scanCases(rows pgx.Rows) ([]domain.CaseRecord, error) {
	var result []domain.CaseRecord
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

type digestRepository struct {
	pool *pgxpool.Pool
}

// NewDigestRepository instantiates the Postgres-backed digest log store.
func NewDigestRepository(pool *pgxpool.Pool) DigestRepository {
	return &digestRepository{pool: pool}
}

func (r *digestRepository) SaveDigestLog(ctx context.Context, log *domain.DigestLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO digest_logs (id, timestamp_ms, report_md, stats_json, duration_ms)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, log.ID, log.TimestampMs, log.ReportMD, log.StatsJSON, log.DurationMs)
	return err
}

func (r *digestRepository) ListDigestLogs(ctx context.Context, limit, offset int) ([]domain.DigestLog, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM digest_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, timestamp_ms, report_md, stats_json, duration_ms
        FROM digest_logs ORDER BY timestamp_ms DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.DigestLog
	for rows.Next() {
		var log domain.DigestLog
		if err := rows.Scan(&log.ID, &log.TimestampMs, &log.ReportMD, &log.StatsJSON, &log.DurationMs); err != nil {
			return nil, 0, err
		}
		result = append(result, log)
	}
	return result, total, rows.Err()
}

func (r *digestRepository) GetDigestLog(ctx context.Context, id string) (*domain.DigestLog, error) {
	var log domain.DigestLog
	err := r.pool.QueryRow(ctx, `
        SELECT id, timestamp_ms, report_md, stats_json, duration_ms
        FROM digest_logs WHERE id=$1`, id).
		Scan(&log.ID, &log.TimestampMs, &log.ReportMD, &log.StatsJSON, &log.DurationMs)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
