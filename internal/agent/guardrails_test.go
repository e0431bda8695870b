package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frostline-games/support-agent/internal/domain"
)

func TestGuardrailsRejectSecretRequests(t *testing.T) {
	for _, text := range []string{
		"Please confirm your password so I can check.",
		"请提供您的密码",
		"What is the CVV on your card?",
	} {
		_, ok := Guardrails(domain.ReplyDraft{Text: text}, domain.TriageDecision{Category: domain.CategoryGeneral})
		assert.False(t, ok, "expected rejection for %q", text)
	}
}

func TestGuardrailsRejectHardPromises(t *testing.T) {
	_, ok := Guardrails(
		domain.ReplyDraft{Text: "I guarantee this will be fixed today."},
		domain.TriageDecision{Category: domain.CategoryBug},
	)
	assert.False(t, ok)
}

func TestGuardrailsDoubleLockSensitiveCategories(t *testing.T) {
	draft := domain.ReplyDraft{Text: "We will process this shortly."}
	for _, category := range []domain.Category{domain.CategoryRefund, domain.CategoryBanAppeal} {
		_, ok := Guardrails(draft, domain.TriageDecision{Category: category})
		assert.False(t, ok)
	}
}

func TestGuardrailsPassCleanReply(t *testing.T) {
	draft := domain.ReplyDraft{Text: "Could you share your device model?", RequiresUserInfo: []string{"device"}}
	approved, ok := Guardrails(draft, domain.TriageDecision{Category: domain.CategoryBug})
	assert.True(t, ok)
	assert.Equal(t, draft, approved)
}

func TestComposeReplyInjectsEvidenceAndEntities(t *testing.T) {
	msg := Normalize(domain.MessageEvent{FromName: "Ken", Text: "Game crashes with error: X900"})
	evidence := domain.EvidencePack{Items: []domain.Evidence{{Snippet: "Clear cache and restart the app."}}}

	draft := ComposeReply(msg, domain.TriageDecision{Category: domain.CategoryBug}, evidence)

	assert.Contains(t, draft.Text, "Hi Ken,")
	assert.Contains(t, draft.Text, "error code: X900")
	assert.Contains(t, draft.Text, "Clear cache and restart the app.")
	assert.Equal(t, []string{"device", "os", "uid", "steps", "media"}, draft.RequiresUserInfo)
}

func TestComposeReplyFallsBackToGenericTemplate(t *testing.T) {
	draft := ComposeReply(domain.NormalizedMessage{}, domain.TriageDecision{Category: domain.CategoryGeneral}, domain.EvidencePack{})

	assert.Contains(t, draft.Text, "Hi,")
	assert.Contains(t, draft.Text, "describe the problem")
	assert.Equal(t, []string{"issue_summary", "uid"}, draft.RequiresUserInfo)
}
