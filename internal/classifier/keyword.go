package classifier

import (
	"context"
	"fmt"

	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/i18n"
)

// KeywordClassifier is the deterministic fallback tier built on the curated
// keyword tables. It never fails.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the keyword classification tier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify picks the best-scoring category for text in the given language.
func (k *KeywordClassifier) Classify(_ context.Context, text string, language domain.Language) (domain.Classification, error) {
	category, confidence := i18n.BestCategory(text, language)
	return domain.Classification{
		Category:   category,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("Keyword matching (%s)", language),
		Severity:   defaultSeverity(category),
		Source:     domain.SourceKeyword,
	}, nil
}

func defaultSeverity(category domain.Category) domain.Severity {
	switch category {
	case domain.CategoryRefund, domain.CategoryBanAppeal, domain.CategoryPayment, domain.CategoryBug:
		return domain.SeverityHigh
	case domain.CategoryAbuse:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
