package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/repository"
	apperrors "github.com/frostline-games/support-agent/pkg/util/errorutil"
)

// DigestsHandler serves persisted digest runs.
type DigestsHandler struct {
	digests repository.DigestRepository
}

// NewDigestsHandler constructs handler.
func NewDigestsHandler(digests repository.DigestRepository) *DigestsHandler {
	return &DigestsHandler{digests: digests}
}

type digestSummary struct {
	ID          string `json:"id"`
	TimestampMs int64  `json:"timestamp_ms"`
	DurationMs  int64  `json:"duration_ms"`
}

// ListDigests GET /api/digests.
func (h *DigestsHandler) ListDigests(c *fiber.Ctx) error {
	limit := defaultPageSize
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxPageSize {
			return apperrors.NewValidationError("limit must be in [1,100]", nil)
		}
		limit = parsed
	}
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apperrors.NewValidationError("offset must not be negative", nil)
		}
		offset = parsed
	}

	logs, total, err := h.digests.ListDigestLogs(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]digestSummary, 0, len(logs))
	for _, log := range logs {
		items = append(items, digestSummary{ID: log.ID, TimestampMs: log.TimestampMs, DurationMs: log.DurationMs})
	}
	return c.JSON(fiber.Map{
		"data": items,
		"pagination": fiber.Map{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetDigest GET /api/digests/:id.
func (h *DigestsHandler) GetDigest(c *fiber.Ctx) error {
	log, err := h.digests.GetDigestLog(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": toDigestDetail(log)})
}

func toDigestDetail(log *domain.DigestLog) fiber.Map {
	return fiber.Map{
		"id":           log.ID,
		"timestamp_ms": log.TimestampMs,
		"report_md":    log.ReportMD,
		"stats_json":   log.StatsJSON,
		"duration_ms":  log.DurationMs,
	}
}
