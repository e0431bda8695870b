package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/notify"
	"github.com/frostline-games/support-agent/internal/repository"
)

// TrendAnalyzer produces a free-text trend summary from a rendered stats
// block. Optional; digests render without it.
type TrendAnalyzer interface {
	AnalyzeTrends(ctx context.Context, statsBlock string) (string, error)
}

// Service aggregates case activity into periodic digests, persists the run,
// and delivers the rendered report.
type Service struct {
	cases    repository.CaseRepository
	digests  repository.DigestRepository
	notifier notify.Notifier
	trends   TrendAnalyzer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the digest service. trends may be nil.
func NewService(cases repository.CaseRepository, digests repository.DigestRepository, notifier notify.Notifier, trends TrendAnalyzer, logger *zap.Logger) *Service {
	return &Service{
		cases:    cases,
		digests:  digests,
		notifier: notifier,
		trends:   trends,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RunDigest aggregates the window, renders and persists the digest, and
// delivers it through the notifier.
func (s *Service) RunDigest(ctx context.Context, startMs, endMs int64) (*domain.DigestLog, error) {
	started := s.now()

	agg, err := s.cases.AggregateDailyReport(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("aggregate report: %w", err)
	}

	body := Render(agg, startMs, endMs)
	if s.trends != nil {
		analysis, err := s.trends.AnalyzeTrends(ctx, body)
		if err != nil {
			s.logger.Warn("trend analysis failed, shipping digest without it", zap.Error(err))
		} else {
			body += "\n## Trends\n\n" + analysis + "\n"
		}
	}

	stats, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}

	log := &domain.DigestLog{
		TimestampMs: started.UnixMilli(),
		ReportMD:    body,
		StatsJSON:   string(stats),
		DurationMs:  s.now().Sub(started).Milliseconds(),
	}
	if err := s.digests.SaveDigestLog(ctx, log); err != nil {
		return nil, fmt.Errorf("save digest log: %w", err)
	}

	s.notifier.DailyReport(ctx, body)
	s.logger.Info("digest complete",
		zap.Int("total_threads", agg.TotalThreads),
		zap.Int("high_priority", agg.HighPriority),
		zap.Int64("duration_ms", log.DurationMs))
	return log, nil
}

// Render produces the markdown digest body for one aggregation window.
func Render(agg domain.DailyReport, startMs, endMs int64) string {
	var b strings.Builder
	b.WriteString("# Daily Community Report\n\n")
	fmt.Fprintf(&b, "Time range: %s - %s\n\n",
		time.UnixMilli(startMs).UTC().Format(time.RFC3339),
		time.UnixMilli(endMs).UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total threads handled: %d\n", agg.TotalThreads)
	fmt.Fprintf(&b, "- Auto-resolved: %d (%s)\n", agg.AutoResolved, percentage(agg.AutoResolved, agg.TotalThreads))
	fmt.Fprintf(&b, "- Escalated: %d (%s)\n", agg.Escalated, percentage(agg.Escalated, agg.TotalThreads))
	fmt.Fprintf(&b, "- High priority: %d\n", agg.HighPriority)

	if len(agg.TopCategories) > 0 {
		b.WriteString("\n## Top categories\n\n")
		for _, entry := range sortedCounts(agg.TopCategories) {
			fmt.Fprintf(&b, "- %s: %d\n", entry.key, entry.count)
		}
	}

	if len(agg.Languages) > 0 {
		b.WriteString("\n## Languages\n\n")
		for _, entry := range sortedLanguageCounts(agg.Languages) {
			fmt.Fprintf(&b, "- %s: %d\n", entry.key, entry.count)
		}
	}

	b.WriteString("\n## Open items\n\n")
	if len(agg.OpenCases) == 0 {
		b.WriteString("- none\n")
	}
	for _, open := range agg.OpenCases {
		fmt.Fprintf(&b, "- %s (%s/%s)\n", open.CaseID, open.Category, open.Status)
	}
	return b.String()
}

type countEntry struct {
	key   string
	count int
}

func sortedCounts(m map[domain.Category]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, countEntry{key: string(k), count: v})
	}
	sortEntries(entries)
	return entries
}

func sortedLanguageCounts(m map[domain.Language]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, countEntry{key: string(k), count: v})
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []countEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
}

func percentage(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}
