package domain

import "fmt"

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusNew         CaseStatus = "NEW"
	CaseStatusWaitingUser CaseStatus = "WAITING_USER"
	CaseStatusInProgress  CaseStatus = "IN_PROGRESS"
	CaseStatusResolved    CaseStatus = "RESOLVED"
	CaseStatusClosed      CaseStatus = "CLOSED"
	CaseStatusEscalated   CaseStatus = "ESCALATED"
	// Reserved for manual workflows driven outside the pipeline.
	CaseStatusHumanPending CaseStatus = "HUMAN_PENDING"
	CaseStatusHumanDone    CaseStatus = "HUMAN_DONE"
)

// Terminal reports whether the status excludes a case from rescan.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusClosed || s == CaseStatusResolved
}

// Assignee identifies who currently owns a case.
type Assignee string

const (
	AssigneeAgent Assignee = "agent"
	AssigneeHuman Assignee = "human"
)

// CaseRecord is the long-lived aggregate for one (channel, thread)
// conversation. Created on first message, mutated on every subsequent
// message and agent action, never physically deleted.
type CaseRecord struct {
	CaseID              string
	Channel             Channel
	ThreadID            string
	UserID              string
	Status              CaseStatus
	Category            Category
	Severity            Severity
	LastMessageAtMs     int64
	LastAgentActionAtMs int64
	AssignedTo          Assignee
	Notes               []string
	Language            Language
	Confidence          float64
}

// CaseID derives the stable case identifier for a (channel, thread) pair.
func CaseID(channel Channel, threadID string) string {
	return fmt.Sprintf("%s-%s", channel, threadID)
}

// ActionType enumerates audit action kinds.
type ActionType string

const (
	ActionTriaged       ActionType = "TRIAGED"
	ActionAutoReplied   ActionType = "AUTO_REPLIED"
	ActionEscalated     ActionType = "ESCALATED"
	ActionStatusChanged ActionType = "STATUS_CHANGED"
)

// CaseAction is one append-only audit entry owned by a case.
type CaseAction struct {
	ID      string
	CaseID  string
	Type    ActionType
	AtMs    int64
	Payload any
}

// EscalationPayload is the audit payload for ESCALATED actions.
type EscalationPayload struct {
	Reason string `json:"reason"`
}

// AutoReplyPayload carries a truncated record of the outbound text.
type AutoReplyPayload struct {
	Text string `json:"text"`
}

// StatusChangePayload records a case status transition.
type StatusChangePayload struct {
	From CaseStatus `json:"from"`
	To   CaseStatus `json:"to"`
}
