package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/frostline-games/support-agent/internal/config"
	"github.com/frostline-games/support-agent/internal/domain"
)

// FormatError marks a response that violated the classification contract
// (malformed JSON, out-of-enum values, empty reasoning). Treated the same as
// a transient failure by the triage fallback.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "classification format error: " + e.Reason
}

// completionAPI is the slice of the OpenAI client the remote tier uses.
// Narrowed for tests.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RemoteClassifier calls an external model for structured classification,
// wrapped in bounded exponential-backoff retries.
type RemoteClassifier struct {
	api        completionAPI
	model      string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

// NewRemoteClassifier builds the remote tier from classifier configuration.
func NewRemoteClassifier(cfg config.ClassifierConfig) *RemoteClassifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &RemoteClassifier{
		api:        openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		timeout:    cfg.Timeout(),
		maxRetries: cfg.RetryCount,
		baseDelay:  DefaultBaseDelay,
	}
}

const classifySystemPrompt = `You are a game-support triage assistant. Classify the complaint into exactly one category:
- payment: top-up/payment problems
- refund: refund requests
- bug: technical problems in the game
- ban_appeal: account ban/unban appeals
- abuse: cheating or abuse reports
- general: everything else

Respond with JSON only: {"category": "...", "confidence": 0.0-1.0, "reasoning": "1-2 sentences", "severity": "low|medium|high|critical"}
Rules: refund/ban_appeal are usually high severity, abuse medium, general low. Use only the six categories above.`

type remotePayload struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Severity   string  `json:"severity"`
}

// Classify issues one structured classification request per attempt and
// validates the contract on the response.
func (r *RemoteClassifier) Classify(ctx context.Context, text string, language domain.Language) (domain.Classification, error) {
	return Retry(ctx, r.maxRetries, r.baseDelay, func(ctx context.Context) (domain.Classification, error) {
		callCtx, cancel := r.callContext(ctx)
		defer cancel()

		resp, err := r.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildClassifyPrompt(text, language)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
			Temperature:    0.3,
			MaxTokens:      500,
		})
		if err != nil {
			return domain.Classification{}, err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return domain.Classification{}, &FormatError{Reason: "empty response"}
		}
		return parseClassification(resp.Choices[0].Message.Content)
	})
}

// AnalyzeTrends asks the model for a free-text trend analysis of a rendered
// statistics block. The only contract is a non-empty string.
func (r *RemoteClassifier) AnalyzeTrends(ctx context.Context, statsBlock string) (string, error) {
	return Retry(ctx, r.maxRetries, r.baseDelay, func(ctx context.Context) (string, error) {
		callCtx, cancel := r.callContext(ctx)
		defer cancel()

		resp, err := r.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: "You are a customer-support data analyst."},
				{Role: openai.ChatMessageRoleUser, Content: buildTrendPrompt(statsBlock)},
			},
			Temperature: 0.7,
			MaxTokens:   2000,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", errors.New("empty trend analysis response")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (r *RemoteClassifier) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func buildClassifyPrompt(text string, language domain.Language) string {
	return fmt.Sprintf("Complaint: %q\nDetected language: %s\n\nRespond with the JSON classification.",
		truncate(text, 2000), language)
}

func buildTrendPrompt(statsBlock string) string {
	return "Analyze the following support statistics. Cover: overall trend, dominant " +
		"problem categories, high-risk items needing attention, and recommended " +
		"actions. Keep it to 200-400 words.\n\n" + statsBlock
}

func parseClassification(raw string) (domain.Classification, error) {
	var payload remotePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Classification{}, &FormatError{Reason: "invalid JSON: " + err.Error()}
	}

	category := domain.Category(payload.Category)
	if !category.Valid() {
		return domain.Classification{}, &FormatError{Reason: fmt.Sprintf("invalid category %q", payload.Category)}
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		return domain.Classification{}, &FormatError{Reason: fmt.Sprintf("confidence %v out of [0,1]", payload.Confidence)}
	}
	severity := domain.Severity(payload.Severity)
	if !severity.Valid() {
		return domain.Classification{}, &FormatError{Reason: fmt.Sprintf("invalid severity %q", payload.Severity)}
	}
	if strings.TrimSpace(payload.Reasoning) == "" {
		return domain.Classification{}, &FormatError{Reason: "empty reasoning"}
	}

	return domain.Classification{
		Category:   category,
		Confidence: payload.Confidence,
		Reasoning:  payload.Reasoning,
		Severity:   severity,
		Source:     domain.SourceRemote,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
