// Package notify delivers outbound messages. Delivery reliability is the
// gateway's concern: callers log failures and move on, they never retry.
package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Gateway delivers a message to a recipient address.
type Gateway interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// LogGateway writes messages to the log instead of delivering them. Used in
// development when no SMTP server is configured.
type LogGateway struct{}

func (LogGateway) Notify(_ context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info("notification (log only): ", body)
	return nil
}
