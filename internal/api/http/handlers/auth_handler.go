package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/frostline-games/support-agent/internal/auth"
	apperrors "github.com/frostline-games/support-agent/pkg/util/errorutil"
)

// AuthHandler exchanges the configured admin key for a bearer token.
type AuthHandler struct {
	tokens   *auth.TokenManager
	adminKey string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, adminKey string) *AuthHandler {
	return &AuthHandler{tokens: tokens, adminKey: adminKey}
}

type tokenRequest struct {
	AdminKey string `json:"admin_key"`
}

// IssueToken POST /api/auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	if h.adminKey == "" {
		return apperrors.NewUnauthorized("token issuance disabled")
	}

	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.adminKey)) != 1 {
		return apperrors.NewUnauthorized("invalid admin key")
	}

	token, expiresAt, err := h.tokens.GenerateToken("admin")
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"access_token": token,
		"expires_at":   expiresAt.UTC(),
	}})
}
