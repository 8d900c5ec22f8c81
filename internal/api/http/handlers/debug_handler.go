package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/melcoco/registration-service/internal/mail"
	"github.com/melcoco/registration-service/internal/observability"
	"github.com/melcoco/registration-service/internal/service"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// DebugHandler exposes operator checks for the mail transport and the
// in-process counters. These endpoints exist to validate configuration
// outside the registration flow.
type DebugHandler struct {
	sender        mail.Sender
	notifications *service.NotificationService
	metrics       *observability.Metrics
	defaultTo     string
	serviceName   string
}

// NewDebugHandler constructs handler.
func NewDebugHandler(sender mail.Sender, notifications *service.NotificationService, metrics *observability.Metrics, defaultTo, serviceName string) *DebugHandler {
	return &DebugHandler{
		sender:        sender,
		notifications: notifications,
		metrics:       metrics,
		defaultTo:     defaultTo,
		serviceName:   serviceName,
	}
}

// EmailTest handles GET /debug/email/test. It sends a one-off message to
// the given or default recipient and reports delivery metadata.
func (h *DebugHandler) EmailTest(c *fiber.Ctx) error {
	to := c.Query("to", h.defaultTo)

	receipt, err := h.sender.Send(c.UserContext(), mail.Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] Mail transport test", h.serviceName),
		Text:    "This is a test message sent at " + time.Now().Format(time.RFC3339) + ".",
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"messageId": receipt.MessageID,
		"accepted":  receipt.Accepted,
	})
}

// EmailVerify handles GET /debug/email/verify. It generates a verification
// link and mails it, exercising both the link signing and the transport.
func (h *DebugHandler) EmailVerify(c *fiber.Ctx) error {
	to := c.Query("to", h.defaultTo)

	msg, err := h.notifications.BuildVerificationMail(c.UserContext(), to)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	receipt, err := h.sender.Send(c.UserContext(), msg)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"to":        to,
		"messageId": receipt.MessageID,
	})
}

// Metrics handles GET /debug/metrics.
func (h *DebugHandler) Metrics(c *fiber.Ctx) error {
	requests, errs, mailCounts := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"ok":       true,
		"requests": requests,
		"errors":   errs,
		"mail":     mailCounts,
	})
}
