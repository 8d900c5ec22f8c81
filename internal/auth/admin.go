package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware guards operator endpoints with a shared API key.
type AdminKeyMiddleware struct {
	apiKey string
}

// NewAdminKeyMiddleware constructs middleware. An empty key disables the
// guarded routes entirely rather than leaving them open.
func NewAdminKeyMiddleware(apiKey string) *AdminKeyMiddleware {
	return &AdminKeyMiddleware{apiKey: apiKey}
}

// Handle enforces the key for protected routes.
func (m *AdminKeyMiddleware) Handle(c *fiber.Ctx) error {
	if m.apiKey == "" {
		return apperrors.NewUnauthorized("admin access not configured")
	}
	provided := c.Get(adminKeyHeader)
	if provided == "" {
		return apperrors.NewUnauthorized("missing admin key")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
		return apperrors.NewUnauthorized("invalid admin key")
	}
	return c.Next()
}
