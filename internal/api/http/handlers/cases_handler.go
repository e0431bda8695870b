package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/repository"
	apperrors "github.com/frostline-games/support-agent/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CasesHandler serves the dashboard case views.
type CasesHandler struct {
	cases repository.CaseRepository
}

// NewCasesHandler constructs handler.
func NewCasesHandler(cases repository.CaseRepository) *CasesHandler {
	return &CasesHandler{cases: cases}
}

type caseSummary struct {
	CaseID          string            `json:"case_id"`
	Channel         domain.Channel    `json:"channel"`
	ThreadID        string            `json:"thread_id"`
	UserID          string            `json:"user_id"`
	Status          domain.CaseStatus `json:"status"`
	Category        domain.Category   `json:"category"`
	Severity        domain.Severity   `json:"severity"`
	AssignedTo      domain.Assignee   `json:"assigned_to"`
	Language        domain.Language   `json:"language"`
	Confidence      float64           `json:"confidence"`
	LastMessageAtMs int64             `json:"last_message_at_ms"`
}

func toCaseSummary(rec *domain.CaseRecord) caseSummary {
	return caseSummary{
		CaseID:          rec.CaseID,
		Channel:         rec.Channel,
		ThreadID:        rec.ThreadID,
		UserID:          rec.UserID,
		Status:          rec.Status,
		Category:        rec.Category,
		Severity:        rec.Severity,
		AssignedTo:      rec.AssignedTo,
		Language:        rec.Language,
		Confidence:      rec.Confidence,
		LastMessageAtMs: rec.LastMessageAtMs,
	}
}

// ListCases GET /api/cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	filter, err := parseCaseFilter(c)
	if err != nil {
		return err
	}

	records, total, err := h.cases.ListCases(c.UserContext(), filter)
	if err != nil {
		return err
	}

	items := make([]caseSummary, 0, len(records))
	for i := range records {
		items = append(items, toCaseSummary(&records[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"pagination": fiber.Map{
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		},
	})
}

// GetCase GET /api/cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	rec, err := h.cases.GetCaseByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}

	actions, err := h.cases.ListActions(c.UserContext(), rec.CaseID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"case":    toCaseSummary(rec),
		"notes":   rec.Notes,
		"actions": actions,
	}})
}

func parseCaseFilter(c *fiber.Ctx) (repository.CaseFilter, error) {
	filter := repository.CaseFilter{
		Limit:  defaultPageSize,
		Offset: 0,
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxPageSize {
			return filter, apperrors.NewValidationError("limit must be in [1,100]", nil)
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, apperrors.NewValidationError("offset must not be negative", nil)
		}
		filter.Offset = offset
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.Category(raw)
		if !category.Valid() {
			return filter, apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
		}
		filter.Category = category
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = domain.CaseStatus(raw)
	}
	return filter, nil
}
