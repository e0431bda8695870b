package events

import (
	"github.com/frostline-games/support-agent/internal/domain"
)

// EventType enumerates case lifecycle events the pipeline emits.
type EventType string

const (
	EventCaseTriaged   EventType = "case.triaged"
	EventCaseEscalated EventType = "case.escalated"
	EventAutoReplied   EventType = "case.auto_replied"
	EventStatusChanged EventType = "case.status_changed"
	EventCriticalAlert EventType = "case.critical_alert"
	EventDigestReady   EventType = "digest.ready"
)

// Event carries the case and decision context for a lifecycle event.
type Event struct {
	Type     EventType
	CaseID   string
	Case     *domain.CaseRecord
	Decision *domain.TriageDecision
	Message  string
	Payload  any
}
