// Package alert notifies operators about persistence failures. Alerts
// are fire-and-forget: a failed alert must never fail the operation
// that raised it, so callers log alert errors and move on.
package alert

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/kgraph-io/kgraph/pkg/config"
)

// subjectPrefix tags outgoing alerts so operators can filter them.
const subjectPrefix = "[kgraph] "

// Alerter defines an interface for sending alerts
type Alerter interface {
	Alert(subject, message string) error
}

// New picks an alerter for the given configuration: email when alerting
// is enabled, otherwise a logger-backed fallback so state changes still
// leave a trace.
func New(cfg config.AlertConfig, logger *slog.Logger) Alerter {
	if cfg.Enabled {
		return NewEmailAlerter(cfg)
	}
	return &LogAlerter{logger: logger}
}

// EmailAlerter implements Alerter using SMTP
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{
		cfg: cfg,
	}
}

// Alert sends an email with the given subject and message
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	to := a.cfg.To
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(to, ","), subjectPrefix+subject, message))

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	err := smtp.SendMail(addr, auth, a.cfg.From, to, msg)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// LogAlerter writes alerts to the application log. It is the default
// when email alerting is disabled.
type LogAlerter struct {
	logger *slog.Logger
}

func (l *LogAlerter) Alert(subject, message string) error {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("alert", "subject", subject, "message", message)
	return nil
}

// NoOpAlerter discards all alerts.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
