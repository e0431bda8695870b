package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/config"
	"github.com/frostline-games/support-agent/internal/domain"
)

// BackendConnector polls the game's ticketing backend for complaint threads
// and their chat messages. The backend exposes no reply API, so this channel
// is read-only and SendReply always fails with ErrReadOnlyChannel.
type BackendConnector struct {
	httpClient *http.Client
	baseURL    string
	token      string
	gameID     int
	pkgID      int
	logger     *zap.Logger
}

// NewBackendConnector builds the read-only ticketing backend connector.
func NewBackendConnector(cfg config.ConnectorConfig, logger *zap.Logger) *BackendConnector {
	return &BackendConnector{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BackendBaseURL,
		token:      cfg.BackendToken,
		gameID:     cfg.GameID,
		pkgID:      cfg.PkgID,
		logger:     logger,
	}
}

// Channel identifies this connector's transport.
func (c *BackendConnector) Channel() domain.Channel {
	return domain.ChannelTicketBackend
}

type backendTopic struct {
	ID     int64  `json:"id"`
	Status int    `json:"status"`
	UID    string `json:"uid"`
}

type backendTopicList struct {
	Data struct {
		List  []backendTopic `json:"list"`
		Total int            `json:"total"`
	} `json:"data"`
}

type backendChatMessage struct {
	ID        int64  `json:"id"`
	TopicID   int64  `json:"topic_id"`
	Content   string `json:"content"`
	FromUID   string `json:"from_uid"`
	CreatedAt string `json:"created_at"`
}

type backendChatList struct {
	Data []backendChatMessage `json:"data"`
}

// FetchNewMessages lists topics, pulls each topic's chat log, keeps messages
// newer than sinceMs, and returns them in ascending timestamp order.
// Transient failures yield an empty batch; a 401 propagates as
// ErrCredentialExpired so the caller can halt and alert.
func (c *BackendConnector) FetchNewMessages(ctx context.Context, sinceMs int64) ([]domain.MessageEvent, error) {
	topics, err := c.listTopics(ctx)
	if err != nil {
		if errors.Is(err, ErrCredentialExpired) {
			return nil, fmt.Errorf("listing topics: %w", err)
		}
		c.logger.Warn("topic list fetch failed", zap.Error(err))
		return nil, nil
	}

	var events []domain.MessageEvent
	for _, topic := range topics {
		messages, err := c.listChatMessages(ctx, topic.ID)
		if err != nil {
			if errors.Is(err, ErrCredentialExpired) {
				return nil, fmt.Errorf("listing chat for topic %d: %w", topic.ID, err)
			}
			// One broken topic must not sink the batch.
			c.logger.Warn("chat fetch failed", zap.Int64("topic_id", topic.ID), zap.Error(err))
			continue
		}
		for _, msg := range messages {
			ts, err := time.Parse(time.RFC3339, msg.CreatedAt)
			if err != nil {
				c.logger.Warn("unparseable message timestamp",
					zap.Int64("message_id", msg.ID), zap.String("created_at", msg.CreatedAt))
				continue
			}
			timestampMs := ts.UnixMilli()
			if timestampMs <= sinceMs {
				continue
			}
			fromName := "Support"
			if msg.FromUID == topic.UID {
				fromName = fmt.Sprintf("User(%s)", topic.UID)
			}
			events = append(events, domain.MessageEvent{
				Channel:     c.Channel(),
				ThreadID:    strconv.FormatInt(topic.ID, 10),
				MessageID:   strconv.FormatInt(msg.ID, 10),
				FromUserID:  msg.FromUID,
				FromName:    fromName,
				Text:        msg.Content,
				TimestampMs: timestampMs,
				Raw:         map[string]any{"topic": topic, "message": msg},
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].TimestampMs < events[j].TimestampMs })
	if len(events) > 0 {
		c.logger.Info("fetched backend messages", zap.Int("count", len(events)), zap.Int64("since_ms", sinceMs))
	}
	return events, nil
}

// SendReply is unsupported on this channel.
func (c *BackendConnector) SendReply(_ context.Context, _ string, _ string) error {
	return ErrReadOnlyChannel
}

func (c *BackendConnector) listTopics(ctx context.Context) ([]backendTopic, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("pageSize", "50")
	if c.gameID > 0 {
		params.Set("gameid", strconv.Itoa(c.gameID))
	}
	if c.pkgID > 0 {
		params.Set("pkgid", strconv.Itoa(c.pkgID))
	}

	var out backendTopicList
	if err := c.getJSON(ctx, "/service/ChatTopic/all?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data.List, nil
}

func (c *BackendConnector) listChatMessages(ctx context.Context, topicID int64) ([]backendChatMessage, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(topicID, 10))

	var out backendChatList
	if err := c.getJSON(ctx, "/service/ChatTopic/chatlist?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *BackendConnector) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrCredentialExpired
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
