package domain

// Channel identifies the inbound transport a message arrived on.
type Channel string

const (
	ChannelMock          Channel = "mock_channel"
	ChannelTicketBackend Channel = "ticket_backend"
)

// MessageEvent is one inbound user message as delivered by a connector.
// Immutable once received; MessageID is unique per channel.
type MessageEvent struct {
	Channel     Channel
	ThreadID    string
	MessageID   string
	FromUserID  string
	FromName    string
	Text        string
	TimestampMs int64
	Raw         any
}

// Entities are best-effort pattern extractions from the message text. Absent
// matches are empty strings, never an error.
type Entities struct {
	OrderID   string `json:"order_id,omitempty"`
	Email     string `json:"email,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NormalizedMessage is a MessageEvent with trimmed text and extracted
// entities. Derived per message, never persisted independently.
type NormalizedMessage struct {
	MessageEvent
	Entities Entities
}
