// Package connector defines the inbound channel contract and its
// implementations. Connectors are best-effort: transient fetch failures
// produce an empty batch, while credential expiry propagates as a
// distinguishable error so the runtime can halt and alert.
package connector

import (
	"context"
	"errors"

	"github.com/frostline-games/support-agent/internal/domain"
)

// ErrCredentialExpired is returned when the upstream rejects our token. The
// poll loop treats it as fatal-for-the-channel rather than a transient miss.
var ErrCredentialExpired = errors.New("connector credential expired")

// ErrReadOnlyChannel is returned by connectors that cannot send replies.
var ErrReadOnlyChannel = errors.New("channel is read-only")

// InboxConnector fetches inbound messages and delivers outbound replies for
// one channel.
type InboxConnector interface {
	Channel() domain.Channel
	// FetchNewMessages returns messages newer than sinceMs in ascending
	// timestamp order.
	FetchNewMessages(ctx context.Context, sinceMs int64) ([]domain.MessageEvent, error)
	SendReply(ctx context.Context, threadID, text string) error
}
