package agent

import (
	"regexp"

	"github.com/frostline-games/support-agent/internal/domain"
)

var (
	secretPattern  = regexp.MustCompile(`(?i)(password|密码|cvv|security code)`)
	promisePattern = regexp.MustCompile(`(?i)(guarantee|保证|一定会)`)
)

// Guardrails decides whether a composed reply may be sent. Rejection is
// terminal for the turn; there is no partial edit.
func Guardrails(draft domain.ReplyDraft, decision domain.TriageDecision) (domain.ReplyDraft, bool) {
	if secretPattern.MatchString(draft.Text) {
		return domain.ReplyDraft{}, false
	}
	if promisePattern.MatchString(draft.Text) {
		return domain.ReplyDraft{}, false
	}
	// Already gated by policy, kept as a second lock on the send path.
	if decision.Category == domain.CategoryRefund || decision.Category == domain.CategoryBanAppeal {
		return domain.ReplyDraft{}, false
	}
	return draft, true
}
