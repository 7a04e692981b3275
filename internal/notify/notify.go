// Package notify delivers out-of-band messages such as email verification codes.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message is one notification addressed to an email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier sends messages.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// Log writes messages to the logger instead of delivering them. Meant for development setups
// without a webhook.
type Log struct {
	log *zap.Logger
}

// NewLog returns a logging notifier.
func NewLog(log *zap.Logger) *Log { return &Log{log: log.Named("notify")} }

// Send logs m.
func (l *Log) Send(_ context.Context, m Message) error {
	l.log.Info("notification",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
