package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/melcoco/registration-service/internal/service"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// VerifyHandler confirms email-verification links.
type VerifyHandler struct {
	verifications *service.VerificationService
}

// NewVerifyHandler constructs handler.
func NewVerifyHandler(verifications *service.VerificationService) *VerifyHandler {
	return &VerifyHandler{verifications: verifications}
}

// Confirm handles GET /verify?token=...
func (h *VerifyHandler) Confirm(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return apperrors.NewValidationError("token is required")
	}

	email, err := h.verifications.Confirm(c.UserContext(), token)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":    true,
		"email": email,
	})
}
