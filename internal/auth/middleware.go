package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/frostline-games/support-agent/pkg/util/errorutil"
)

const subjectKey = "auth_subject"

// Middleware validates bearer tokens on protected dashboard routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(subjectKey, claims.SubjectID)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject id.
func SubjectFromContext(c *fiber.Ctx) (string, bool) {
	val, ok := c.Locals(subjectKey).(string)
	return val, ok
}
