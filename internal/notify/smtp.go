package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"backend/internal/config"
)

// SMTPGateway delivers messages as plain-text email over STARTTLS-capable
// SMTP. No mail library exists in our stack; net/smtp covers the single
// send-one-message call we need.
type SMTPGateway struct {
	cfg config.SMTPConfig
}

func NewSMTPGateway(cfg config.SMTPConfig) *SMTPGateway {
	return &SMTPGateway{cfg: cfg}
}

func (g *SMTPGateway) Notify(_ context.Context, recipient, subject, body string) error {
	addr := g.cfg.Host + ":" + g.cfg.Port
	msg := []byte("From: " + g.cfg.From + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", g.cfg.From, g.cfg.Password, g.cfg.Host)
	if err := smtp.SendMail(addr, auth, g.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}
