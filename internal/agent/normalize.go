package agent

import (
	"regexp"
	"strings"

	"github.com/frostline-games/support-agent/internal/domain"
)

// Entity extraction is best-effort; a miss leaves the field empty and is
// never an error.
var (
	orderIDPattern   = regexp.MustCompile(`(?i)\b(order|订单)\s*#?\s*([A-Z0-9-]{6,})\b`)
	emailPattern     = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	errorCodePattern = regexp.MustCompile(`(?i)\b(err(or)?|error|报错)\s*[:#]?\s*([A-Z0-9*-]{3,})\b`)
)

// Normalize trims the message text and extracts entities.
func Normalize(ev domain.MessageEvent) domain.NormalizedMessage {
	ev.Text = strings.TrimSpace(ev.Text)

	var entities domain.Entities
	if m := orderIDPattern.FindStringSubmatch(ev.Text); len(m) > 2 {
		entities.OrderID = m[2]
	}
	if m := emailPattern.FindString(ev.Text); m != "" {
		entities.Email = m
	}
	if m := errorCodePattern.FindStringSubmatch(ev.Text); len(m) > 3 {
		entities.ErrorCode = m[3]
	}

	return domain.NormalizedMessage{MessageEvent: ev, Entities: entities}
}
