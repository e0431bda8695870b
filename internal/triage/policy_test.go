package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/classifier"
	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/observability"
)

func TestHardGatedCategoriesNeverAutoAllowed(t *testing.T) {
	policy := NewPolicy(0.7)
	for _, category := range []domain.Category{domain.CategoryRefund, domain.CategoryBanAppeal} {
		for _, confidence := range []float64{0, 0.5, 0.69, 0.7, 0.99, 1.0} {
			decision := policy.Apply(domain.Classification{
				Category:   category,
				Confidence: confidence,
				Reasoning:  "r",
				Source:     domain.SourceRemote,
			}, domain.LanguageEnglish)

			assert.False(t, decision.AutoAllowed, "category=%s confidence=%v", category, confidence)
			assert.Equal(t, domain.SeverityHigh, decision.Severity, "category=%s", category)
			assert.NotEmpty(t, decision.EscalationReason)
		}
	}
}

func TestThresholdGatesRemainingCategories(t *testing.T) {
	policy := NewPolicy(0.7)
	cases := []struct {
		category domain.Category
		severity domain.Severity
	}{
		{domain.CategoryPayment, domain.SeverityHigh},
		{domain.CategoryBug, domain.SeverityHigh},
		{domain.CategoryAbuse, domain.SeverityMedium},
		{domain.CategoryGeneral, domain.SeverityLow},
	}

	for _, tc := range cases {
		for _, confidence := range []float64{0, 0.69, 0.7, 0.71, 1.0} {
			decision := policy.Apply(domain.Classification{
				Category:   tc.category,
				Confidence: confidence,
				Reasoning:  "r",
			}, domain.LanguageEnglish)

			assert.Equal(t, confidence >= 0.7, decision.AutoAllowed,
				"category=%s confidence=%v", tc.category, confidence)
			assert.Equal(t, tc.severity, decision.Severity)
			if decision.AutoAllowed {
				assert.Empty(t, decision.EscalationReason)
			} else {
				assert.NotEmpty(t, decision.EscalationReason)
			}
		}
	}
}

func TestInjectedThresholdIsRespected(t *testing.T) {
	strict := NewPolicy(0.95)
	decision := strict.Apply(domain.Classification{
		Category:   domain.CategoryPayment,
		Confidence: 0.9,
		Reasoning:  "r",
	}, domain.LanguageEnglish)
	assert.False(t, decision.AutoAllowed)

	lax := NewPolicy(0.1)
	decision = lax.Apply(domain.Classification{
		Category:   domain.CategoryPayment,
		Confidence: 0.2,
		Reasoning:  "r",
	}, domain.LanguageEnglish)
	assert.True(t, decision.AutoAllowed)
}

func TestDecisionCarriesLanguageAndSource(t *testing.T) {
	decision := NewPolicy(0.7).Apply(domain.Classification{
		Category:   domain.CategoryBug,
		Confidence: 0.8,
		Reasoning:  "crash report",
		Source:     domain.SourceRemote,
	}, domain.LanguageJapanese)

	assert.Equal(t, domain.LanguageJapanese, decision.Language)
	assert.Equal(t, domain.SourceRemote, decision.Source)
	assert.Contains(t, decision.Reasoning, "[ja]")
}

type failingClassifier struct {
	err   error
	calls int
}

func (f *failingClassifier) Classify(context.Context, string, domain.Language) (domain.Classification, error) {
	f.calls++
	return domain.Classification{}, f.err
}

func newTestService(remote classifier.Classifier, fallback bool) *Service {
	return NewService(remote, classifier.NewKeywordClassifier(), NewPolicy(0.1), fallback,
		zap.NewNop(), observability.NewMetrics())
}

func TestTriageFallsBackToKeywordsOnRemoteFailure(t *testing.T) {
	svc := newTestService(&failingClassifier{err: errors.New("timeout")}, true)

	decision := svc.Triage(context.Background(), "I want a refund immediately!")
	assert.Equal(t, domain.CategoryRefund, decision.Category)
	assert.Equal(t, domain.SourceKeyword, decision.Source)
	assert.False(t, decision.AutoAllowed)
}

func TestTriageWithoutRemoteUsesKeywords(t *testing.T) {
	svc := newTestService(nil, true)

	decision := svc.Triage(context.Background(), "充值了但没到账")
	assert.Equal(t, domain.LanguageSimplifiedChinese, decision.Language)
	assert.Equal(t, domain.CategoryPayment, decision.Category)
	assert.Equal(t, domain.SourceKeyword, decision.Source)
}

func TestTriageFallbackDisabledSkipsRemoteTier(t *testing.T) {
	remote := &failingClassifier{err: errors.New("down")}
	svc := newTestService(remote, false)

	decision := svc.Triage(context.Background(), "I want a refund immediately!")
	assert.Zero(t, remote.calls, "remote tier must not be attempted when fallback is disabled")
	require.Equal(t, domain.CategoryRefund, decision.Category)
	assert.Equal(t, domain.SourceKeyword, decision.Source)
	assert.False(t, decision.AutoAllowed)
	assert.Equal(t, "refund requires human approval", decision.EscalationReason)
}
