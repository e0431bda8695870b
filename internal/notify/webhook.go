package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/domain"
)

// WebhookNotifier POSTs notifications as JSON to a configured endpoint, falling
// back to the log on delivery failure.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a webhook-backed notifier.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type webhookPayload struct {
	Kind     string                 `json:"kind"`
	Reason   string                 `json:"reason,omitempty"`
	Case     *domain.CaseRecord     `json:"case,omitempty"`
	Decision *domain.TriageDecision `json:"decision,omitempty"`
	Report   string                 `json:"report,omitempty"`
}

// Alert delivers an escalation notification.
func (n *WebhookNotifier) Alert(ctx context.Context, caseRecord *domain.CaseRecord, decision *domain.TriageDecision, reason string) {
	n.post(ctx, webhookPayload{Kind: "alert", Reason: reason, Case: caseRecord, Decision: decision})
}

// DailyReport delivers the rendered digest.
func (n *WebhookNotifier) DailyReport(ctx context.Context, markdown string) {
	n.post(ctx, webhookPayload{Kind: "daily_report", Report: markdown})
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("encode webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected notification", zap.Int("status", resp.StatusCode))
	}
}
