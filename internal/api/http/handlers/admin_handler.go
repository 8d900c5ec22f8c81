package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/melcoco/registration-service/internal/api/dto"
	"github.com/melcoco/registration-service/internal/service"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// AdminHandler exposes operator endpoints over provisioned identities.
type AdminHandler struct {
	accounts *service.AccountService
	validate *validator.Validate
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts, validate: validator.New()}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	identities, err := h.accounts.ListIdentities(c.UserContext())
	if err != nil {
		return err
	}

	users := make([]fiber.Map, 0, len(identities))
	for _, identity := range identities {
		users = append(users, fiber.Map{
			"uid":           identity.UID,
			"email":         identity.Email,
			"displayName":   identity.DisplayName,
			"emailVerified": identity.EmailVerified,
			"createdAt":     identity.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"ok":    true,
		"users": users,
	})
}

// ResetPassword handles POST /admin/users/:uid/password.
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	uid := c.Params("uid")

	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperrors.NewValidationError("password of at least 6 characters is required")
	}

	if err := h.accounts.ResetPassword(c.UserContext(), uid, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
