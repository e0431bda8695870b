package triage

import (
	"context"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/classifier"
	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/i18n"
	"github.com/frostline-games/support-agent/internal/observability"
)

// Service runs the full triage for one message: detect language, classify
// (remote first when configured and fallback not disabled, keyword tier
// otherwise or on any remote failure), apply policy.
type Service struct {
	remote          classifier.Classifier
	keyword         classifier.Classifier
	policy          *Policy
	fallbackEnabled bool
	logger          *zap.Logger
	metrics         *observability.Metrics
}

// NewService wires the triage service. remote may be nil when no remote
// classifier is configured.
func NewService(remote classifier.Classifier, keyword classifier.Classifier, policy *Policy, fallbackEnabled bool, logger *zap.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		remote:          remote,
		keyword:         keyword,
		policy:          policy,
		fallbackEnabled: fallbackEnabled,
		logger:          logger,
		metrics:         metrics,
	}
}

// Triage produces the handling decision for trimmed message text. The
// decision records which classifier tier actually answered.
func (s *Service) Triage(ctx context.Context, text string) domain.TriageDecision {
	language := i18n.Detect(text)

	result := s.classify(ctx, text, language)

	decision := s.policy.Apply(result, language)
	s.logger.Info("triaged",
		zap.String("language", string(language)),
		zap.String("category", string(decision.Category)),
		zap.Float64("confidence", decision.Confidence),
		zap.String("source", string(decision.Source)),
		zap.Bool("auto_allowed", decision.AutoAllowed))
	return decision
}

// classify runs the remote tier only when it is configured and fallback has
// not been explicitly disabled; any remote failure falls through to the
// keyword tier. The keyword tier itself never fails.
func (s *Service) classify(ctx context.Context, text string, language domain.Language) domain.Classification {
	if s.remote != nil && s.fallbackEnabled {
		result, err := s.remote.Classify(ctx, text, language)
		if err == nil {
			return result
		}
		s.logger.Warn("remote classifier failed, falling back to keywords", zap.Error(err))
		s.metrics.Incr(observability.CounterKeywordFallbacks)
	}

	result, _ := s.keyword.Classify(ctx, text, language)
	return result
}
