package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostline-games/support-agent/internal/domain"
)

type fakeCompletionAPI struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeCompletionAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	content := ""
	if i < len(f.responses) {
		content = f.responses[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}, nil
}

func newTestRemote(api completionAPI, retries int) *RemoteClassifier {
	return &RemoteClassifier{
		api:        api,
		model:      "test-model",
		timeout:    time.Second,
		maxRetries: retries,
		baseDelay:  time.Millisecond,
	}
}

func TestRemoteClassifyParsesValidResponse(t *testing.T) {
	api := &fakeCompletionAPI{responses: []string{
		`{"category":"payment","confidence":0.92,"reasoning":"mentions a failed top-up","severity":"high"}`,
	}}
	rc := newTestRemote(api, 0)

	got, err := rc.Classify(context.Background(), "充值了但没到账", domain.LanguageSimplifiedChinese)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPayment, got.Category)
	assert.Equal(t, 0.92, got.Confidence)
	assert.Equal(t, domain.SeverityHigh, got.Severity)
	assert.Equal(t, domain.SourceRemote, got.Source)
	assert.NotEmpty(t, got.Reasoning)
}

func TestRemoteClassifyContractViolations(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "sure, this looks like a payment issue"},
		{"unknown category", `{"category":"weather","confidence":0.9,"reasoning":"r","severity":"low"}`},
		{"confidence out of range", `{"category":"bug","confidence":1.7,"reasoning":"r","severity":"low"}`},
		{"bad severity", `{"category":"bug","confidence":0.8,"reasoning":"r","severity":"urgent"}`},
		{"empty reasoning", `{"category":"bug","confidence":0.8,"reasoning":"  ","severity":"low"}`},
		{"empty response", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeCompletionAPI{responses: []string{tc.response}}
			_, err := newTestRemote(api, 0).Classify(context.Background(), "text", domain.LanguageEnglish)
			require.Error(t, err)
			var formatErr *FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestRemoteClassifyRetriesThenSucceeds(t *testing.T) {
	api := &fakeCompletionAPI{
		errs: []error{errors.New("429 rate limited"), errors.New("timeout"), nil},
		responses: []string{"", "",
			`{"category":"refund","confidence":0.85,"reasoning":"asks for money back","severity":"high"}`,
		},
	}
	got, err := newTestRemote(api, 3).Classify(context.Background(), "refund please", domain.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 3, api.calls)
	assert.Equal(t, domain.CategoryRefund, got.Category)
}

func TestRemoteClassifyExhaustsRetries(t *testing.T) {
	boom := errors.New("upstream down")
	api := &fakeCompletionAPI{errs: []error{boom, boom, boom, boom}}
	_, err := newTestRemote(api, 3).Classify(context.Background(), "text", domain.LanguageEnglish)
	require.Error(t, err)
	assert.Equal(t, 4, api.calls)
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeTrends(t *testing.T) {
	api := &fakeCompletionAPI{responses: []string{"Payment complaints doubled this window."}}
	got, err := newTestRemote(api, 0).AnalyzeTrends(context.Background(), "total: 12")
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	empty := &fakeCompletionAPI{responses: []string{"   "}}
	_, err = newTestRemote(empty, 0).AnalyzeTrends(context.Background(), "total: 12")
	assert.Error(t, err)
}
