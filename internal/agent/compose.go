package agent

import (
	"fmt"
	"strings"

	"github.com/frostline-games/support-agent/internal/domain"
)

// ComposeReply builds the per-category reply draft. Pure; every category gets
// a template, unrecognized ones fall back to the generic one.
func ComposeReply(msg domain.NormalizedMessage, decision domain.TriageDecision, evidence domain.EvidencePack) domain.ReplyDraft {
	greeting := "Hi,"
	if msg.FromName != "" {
		greeting = fmt.Sprintf("Hi %s,", msg.FromName)
	}
	topEvidence := evidence.Top()

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\nThanks for reaching out. I'm looking into this with you.\n\n")

	switch decision.Category {
	case domain.CategoryPayment:
		b.WriteString("To help us verify the transaction, could you share:\n")
		b.WriteString("1) Payment method (App Store / Google Play / card)\n")
		b.WriteString("2) Transaction ID (if available)\n")
		b.WriteString("3) Approx. time of purchase and your in-game UID\n\n")
		if topEvidence != "" {
			fmt.Fprintf(&b, "Meanwhile, here's a quick checklist that solves most payment delays:\n- %s\n\n", topEvidence)
		}
		b.WriteString("Once I have the info above, I'll confirm the status and next steps.")
		return domain.ReplyDraft{
			Text:             b.String(),
			RequiresUserInfo: []string{"payment_method", "transaction_id", "purchase_time", "uid"},
		}

	case domain.CategoryBug:
		b.WriteString("Sorry about the issue. Please share:\n")
		b.WriteString("1) Device model + OS version\n")
		b.WriteString("2) Your in-game UID\n")
		b.WriteString("3) What you were doing right before it happened\n")
		b.WriteString("4) Screenshot/video if possible\n\n")
		if msg.Entities.ErrorCode != "" {
			fmt.Fprintf(&b, "I also saw an error code: %s. That helps.\n\n", msg.Entities.ErrorCode)
		}
		if topEvidence != "" {
			fmt.Fprintf(&b, "Try this first (often works):\n- %s\n\n", topEvidence)
		}
		b.WriteString("After you send the details, I'll either confirm the fix or escalate to engineering with a complete repro.")
		return domain.ReplyDraft{
			Text:             b.String(),
			RequiresUserInfo: []string{"device", "os", "uid", "steps", "media"},
		}

	case domain.CategoryAbuse:
		b.WriteString("I can help, but I need to keep the conversation respectful so we can resolve it efficiently.\n\n")
		b.WriteString("Please tell me what happened (one or two sentences is enough), and I'll take it from there.")
		return domain.ReplyDraft{
			Text:             b.String(),
			RequiresUserInfo: []string{"issue_summary"},
		}

	default:
		b.WriteString("Could you briefly describe the problem and include your in-game UID (if applicable)?\n\n")
		b.WriteString("Once I have that, I'll point you to the right fix or escalate it.")
		return domain.ReplyDraft{
			Text:             b.String(),
			RequiresUserInfo: []string{"issue_summary", "uid"},
		}
	}
}
