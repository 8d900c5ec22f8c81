package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/melcoco/registration-service/internal/config"
	"github.com/melcoco/registration-service/internal/events"
	"github.com/melcoco/registration-service/internal/mail"
	"github.com/melcoco/registration-service/internal/observability"
)

// NotificationService turns registration events into emails. It runs on the
// dispatcher's background worker: every send failure is logged and isolated,
// never retried, never surfaced to the registrant.
type NotificationService struct {
	dispatcher    events.Dispatcher
	sender        mail.Sender
	verifications *VerificationService
	metrics       *observability.Metrics
	logger        *zap.Logger
	cfg           config.NotifyConfig
	reg           config.RegistrationConfig
	brand         string
}

// NewNotificationService creates the service.
func NewNotificationService(
	dispatcher events.Dispatcher,
	sender mail.Sender,
	verifications *VerificationService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	cfg config.NotifyConfig,
	reg config.RegistrationConfig,
	brand string,
) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		sender:        sender,
		verifications: verifications,
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
		reg:           reg,
		brand:         brand,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload)
	}

	n.sendOrLog(ctx, "admin", n.adminMail(payload))
	n.sendOrLog(ctx, "applicant", n.applicantMail(payload))

	if n.cfg.SendVerification {
		msg, err := n.verificationMail(ctx, payload.Email, payload.Name)
		if err != nil {
			n.metrics.RecordMail("verification", false)
			n.logger.Error("verification mail not sent", zap.String("to", payload.Email), zap.Error(err))
		} else {
			n.sendOrLog(ctx, "verification", msg)
		}
	}
	return nil
}

// sendOrLog delivers one message. Failures are terminal here: logged,
// counted, dropped.
func (n *NotificationService) sendOrLog(ctx context.Context, kind string, msg mail.Message) {
	receipt, err := n.sender.Send(ctx, msg)
	if err != nil {
		n.metrics.RecordMail(kind, false)
		n.logger.Error("mail send failed",
			zap.String("kind", kind),
			zap.String("to", msg.To),
			zap.Error(err))
		return
	}
	n.metrics.RecordMail(kind, true)
	n.logger.Info("mail sent",
		zap.String("kind", kind),
		zap.String("to", msg.To),
		zap.String("message_id", receipt.MessageID))
}

func (n *NotificationService) adminMail(p events.UserRegisteredPayload) mail.Message {
	kind := "full membership"
	if p.Trial {
		kind = "trial"
	}

	appsJSON, err := json.MarshalIndent(p.Apps, "", "  ")
	if err != nil {
		appsJSON = []byte("{}")
	}

	body := strings.Join([]string{
		"Salon name: " + p.SalonName,
		"Prefecture: " + p.Prefecture,
		"Name: " + p.Name,
		"Email: " + p.Email,
		"Requested apps:",
		string(appsJSON),
	}, "\n")

	return mail.Message{
		To:      n.cfg.AdminEmail,
		Subject: fmt.Sprintf("[%s] New %s registration", n.brand, kind),
		Text:    body,
	}
}

func (n *NotificationService) applicantMail(p events.UserRegisteredPayload) mail.Message {
	var subject string
	var lines []string

	if p.Trial {
		subject = fmt.Sprintf("[%s] Your %d-day trial", n.brand, n.reg.TrialDays)
		lines = append(lines,
			fmt.Sprintf("Dear %s,", p.Name),
			"",
			fmt.Sprintf("Thank you for signing up for the %s app trial.", n.brand),
		)
	} else {
		subject = fmt.Sprintf("[%s] Welcome aboard", n.brand)
		lines = append(lines,
			fmt.Sprintf("Dear %s,", p.Name),
			"",
			fmt.Sprintf("Thank you for signing up for the %s app.", n.brand),
		)
	}

	lines = append(lines,
		"",
		"How to get started:",
		"",
		"- iPhone (native app):",
		n.cfg.IOSAppURL,
		"",
		"- Android (PWA):",
		n.cfg.AndroidLoginURL,
		"",
		"Login password: "+n.reg.DefaultPassword,
		"",
	)

	if p.Trial {
		lines = append(lines,
			fmt.Sprintf("Your trial period lasts %d days.", n.reg.TrialDays),
			"To keep using the app afterwards, please join our paid online salon:",
			n.cfg.UpsellURL,
			"",
		)
	}

	lines = append(lines,
		"If you have any questions, feel free to contact us.",
		"",
		n.brand+" Support",
	)

	return mail.Message{
		To:      p.Email,
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
	}
}

func (n *NotificationService) verificationMail(ctx context.Context, email, name string) (mail.Message, error) {
	link, err := n.verifications.GenerateLink(ctx, email)
	if err != nil {
		return mail.Message{}, err
	}

	text := strings.Join([]string{
		fmt.Sprintf("Dear %s,", name),
		"",
		"Please verify your email address by opening the link below:",
		link,
	}, "\n")

	html := fmt.Sprintf(
		"<p>Dear %s,</p><p>Please verify your email address:</p><p><a href=%q>Verify email</a></p>",
		name, link)

	return mail.Message{
		To:      email,
		Subject: fmt.Sprintf("[%s] Please verify your email address", n.brand),
		Text:    text,
		HTML:    html,
	}, nil
}

// BuildVerificationMail exposes verification mail assembly for the debug
// transport check.
func (n *NotificationService) BuildVerificationMail(ctx context.Context, email string) (mail.Message, error) {
	return n.verificationMail(ctx, email, "operator")
}
