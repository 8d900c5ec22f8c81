package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/melcoco/registration-service/internal/config"
)

// SMTPSender delivers mail over an authenticated SMTP connection.
type SMTPSender struct {
	client      *gomail.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

// NewSMTPSender builds a client from configuration. Invalid transport
// settings are a startup error, not a per-send one.
func NewSMTPSender(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}

	switch strings.ToLower(cfg.TLSMode) {
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{
		client:      client,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}, nil
}

// Send delivers one message and returns its delivery metadata.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddress); err != nil {
		return Receipt{}, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return Receipt{}, fmt.Errorf("to address: %w", err)
	}

	messageID := uuid.NewString()
	m.SetMessageIDWithValue(messageID)
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return Receipt{}, err
	}

	s.logger.Debug("mail delivered",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", messageID))

	return Receipt{MessageID: messageID, Accepted: []string{msg.To}}, nil
}
