package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/config"
	"github.com/frostline-games/support-agent/internal/domain"
)

func newBackend(t *testing.T, handler http.Handler) (*BackendConnector, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	conn := NewBackendConnector(config.ConnectorConfig{
		BackendBaseURL: server.URL,
		BackendToken:   "token-1",
	}, zap.NewNop())
	return conn, server
}

func TestFetchNewMessagesFiltersAndSorts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/service/ChatTopic/all", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"list":[{"id":7,"status":1,"uid":"u-1"}],"total":1}}`)
	})
	mux.HandleFunc("/service/ChatTopic/chatlist", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
            {"id":2,"topic_id":7,"content":"second","from_uid":"u-1","created_at":"2026-08-28T10:00:02Z"},
            {"id":1,"topic_id":7,"content":"first","from_uid":"u-1","created_at":"2026-08-28T10:00:01Z"},
            {"id":0,"topic_id":7,"content":"old","from_uid":"u-1","created_at":"2026-08-28T09:00:00Z"}
        ]}`)
	})
	conn, _ := newBackend(t, mux)

	sinceMs := int64(1787908800000) // 2026-08-28T09:20:00Z
	events, err := conn.FetchNewMessages(context.Background(), sinceMs)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Text)
	assert.Equal(t, "second", events[1].Text)
	assert.Equal(t, domain.ChannelTicketBackend, events[0].Channel)
	assert.Equal(t, "7", events[0].ThreadID)
	assert.Equal(t, "User(u-1)", events[0].FromName)
}

func TestFetchNewMessagesExpiredCredentials(t *testing.T) {
	conn, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := conn.FetchNewMessages(context.Background(), 0)
	assert.ErrorIs(t, err, ErrCredentialExpired)
}

func TestFetchNewMessagesTransientFailureYieldsEmptyBatch(t *testing.T) {
	conn, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	events, err := conn.FetchNewMessages(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSendReplyIsReadOnly(t *testing.T) {
	conn, _ := newBackend(t, http.NewServeMux())
	assert.ErrorIs(t, conn.SendReply(context.Background(), "7", "hello"), ErrReadOnlyChannel)
}

func TestMockConnectorCapturesReplies(t *testing.T) {
	conn := NewMockConnector()
	ev := conn.Push(domain.MessageEvent{ThreadID: "t1", Text: "hi"})
	assert.NotEmpty(t, ev.MessageID)
	assert.Equal(t, domain.ChannelMock, ev.Channel)

	events, err := conn.FetchNewMessages(context.Background(), ev.TimestampMs-1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.NoError(t, conn.SendReply(context.Background(), "t1", "hello"))
	replies := conn.SentReplies()
	require.Len(t, replies, 1)
	assert.Equal(t, "hello", replies[0].Text)
}
