// Package triage turns classifier output into a handling decision: severity,
// auto-reply permission, and escalation reason.
package triage

import (
	"github.com/frostline-games/support-agent/internal/domain"
)

// Policy computes severity and auto-handling permission from a
// classification. The confidence threshold is injected at construction so the
// same policy is deterministic under test.
type Policy struct {
	confidenceThreshold float64
}

// NewPolicy builds a policy with the given auto-reply confidence threshold.
func NewPolicy(confidenceThreshold float64) *Policy {
	return &Policy{confidenceThreshold: confidenceThreshold}
}

// Apply resolves the final decision for a classification in the detected
// language. Refund and ban appeals are never auto-allowed regardless of
// confidence; every other category gates on the threshold.
func (p *Policy) Apply(c domain.Classification, language domain.Language) domain.TriageDecision {
	severity, autoAllowed := p.severityAndAutoAllow(c.Category, c.Confidence)

	decision := domain.TriageDecision{
		Category:    c.Category,
		Severity:    severity,
		AutoAllowed: autoAllowed,
		Language:    language,
		Confidence:  c.Confidence,
		Reasoning:   "[" + string(language) + "] " + c.Reasoning,
		Source:      c.Source,
	}
	if !autoAllowed {
		decision.EscalationReason = escalationReason(c.Category)
	}
	return decision
}

func (p *Policy) severityAndAutoAllow(category domain.Category, confidence float64) (domain.Severity, bool) {
	confident := confidence >= p.confidenceThreshold

	switch category {
	case domain.CategoryRefund, domain.CategoryBanAppeal:
		// Hard gate: these always require human judgment.
		return domain.SeverityHigh, false
	case domain.CategoryPayment, domain.CategoryBug:
		return domain.SeverityHigh, confident
	case domain.CategoryAbuse:
		return domain.SeverityMedium, confident
	default:
		return domain.SeverityLow, confident
	}
}

func escalationReason(category domain.Category) string {
	switch category {
	case domain.CategoryRefund:
		return "refund requires human approval"
	case domain.CategoryBanAppeal:
		return "account enforcement sensitive"
	case domain.CategoryPayment, domain.CategoryBug:
		return "low confidence in classification"
	case domain.CategoryAbuse:
		return "potential abuse report needs review"
	default:
		return "policy gate"
	}
}
