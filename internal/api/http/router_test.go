package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/api/http/handlers"
	"github.com/frostline-games/support-agent/internal/auth"
	"github.com/frostline-games/support-agent/internal/domain"
	"github.com/frostline-games/support-agent/internal/observability"
	"github.com/frostline-games/support-agent/internal/repository"
)

func newTestApp(t *testing.T) (*fiber.App, *repository.MemoryCaseRepository, *auth.TokenManager) {
	t.Helper()
	cases := repository.NewMemoryCaseRepository()
	digests := repository.NewMemoryDigestRepository()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("test-secret", 30)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("support-agent", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(tokens, "admin-key"),
		Stats:          handlers.NewStatsHandler(cases, metrics),
		Cases:          handlers.NewCasesHandler(cases),
		Digests:        handlers.NewDigestsHandler(digests),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})
	return app, cases, tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager) string {
	t.Helper()
	token, _, err := tokens.GenerateToken("admin")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthEndpointIsPublic(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/cases", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenExchangeAndCaseListing(t *testing.T) {
	app, cases, _ := newTestApp(t)

	require.NoError(t, cases.UpsertCase(context.Background(), &domain.CaseRecord{
		CaseID:   "mock_channel-t1",
		Channel:  domain.ChannelMock,
		ThreadID: "t1",
		Status:   domain.CaseStatusEscalated,
		Category: domain.CategoryRefund,
		Severity: domain.SeverityHigh,
	}))

	body, _ := json.Marshal(map[string]string{"admin_key": "admin-key"})
	req := httptest.NewRequest("POST", "/api/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var tokenBody struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &tokenBody))
	require.NotEmpty(t, tokenBody.Data.AccessToken)

	listReq := httptest.NewRequest("GET", "/api/cases?category=refund", nil)
	listReq.Header.Set("Authorization", "Bearer "+tokenBody.Data.AccessToken)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Data []struct {
			CaseID string `json:"case_id"`
		} `json:"data"`
	}
	raw, _ = io.ReadAll(listResp.Body)
	require.NoError(t, json.Unmarshal(raw, &listBody))
	require.Len(t, listBody.Data, 1)
	assert.Equal(t, "mock_channel-t1", listBody.Data[0].CaseID)
}

func TestTokenExchangeRejectsBadKey(t *testing.T) {
	app, _, _ := newTestApp(t)

	body, _ := json.Marshal(map[string]string{"admin_key": "wrong"})
	req := httptest.NewRequest("POST", "/api/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetUnknownCaseIs404(t *testing.T) {
	app, _, tokens := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/cases/does-not-exist", nil)
	req.Header.Set("Authorization", bearer(t, tokens))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListCasesRejectsUnknownCategory(t *testing.T) {
	app, _, tokens := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/cases?category=bogus", nil)
	req.Header.Set("Authorization", bearer(t, tokens))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
