package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/melcoco/registration-service/internal/api/dto"
	"github.com/melcoco/registration-service/internal/service"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// Registrar runs the registration workflow.
type Registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.RegistrationResult, error)
}

// RegisterHandler exposes the registration form endpoint.
type RegisterHandler struct {
	registrations Registrar
	validate      *validator.Validate
}

// NewRegisterHandler constructs handler.
func NewRegisterHandler(registrations Registrar) *RegisterHandler {
	return &RegisterHandler{
		registrations: registrations,
		validate:      validator.New(),
	}
}

// Register handles POST /register. Validation failures return before any
// side effect; the success response does not wait on notification mail.
func (h *RegisterHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	req.Normalize()
	if err := h.validate.Struct(&req); err != nil {
		return apperrors.NewValidationError("email, name, salonName, prefecture and status are required")
	}

	result, err := h.registrations.Register(c.UserContext(), service.RegisterInput{
		Email:      req.Email,
		Name:       req.Name,
		SalonName:  req.SalonName,
		Prefecture: req.Prefecture,
		Status:     req.Status,
		Apps:       req.Apps,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"ok":  true,
		"uid": result.UID,
	})
}
