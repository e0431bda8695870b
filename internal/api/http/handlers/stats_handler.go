package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/frostline-games/support-agent/internal/observability"
	"github.com/frostline-games/support-agent/internal/repository"
)

// StatsHandler serves the dashboard overview.
type StatsHandler struct {
	cases   repository.CaseRepository
	metrics *observability.Metrics
}

// NewStatsHandler constructs handler.
func NewStatsHandler(cases repository.CaseRepository, metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{cases: cases, metrics: metrics}
}

// Overview GET /api/stats/overview. Aggregates the trailing 24 hours.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	end := time.Now().UnixMilli()
	start := end - 24*time.Hour.Milliseconds()

	agg, err := h.cases.AggregateDailyReport(c.UserContext(), start, end)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"window_start_ms": start,
		"window_end_ms":   end,
		"report":          agg,
		"counters":        h.metrics.PipelineSnapshot(),
	}})
}
