// Package email delivers rendered lead emails. Transports take a finished
// subject and HTML body and never alter them.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/logger"
	"consulting_leads_backend/platform/sanitize"

	gomail "github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned by every send when no credentials are set.
var ErrNotConfigured = errors.New("mail transport not configured")

// Message is one outbound email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Receipt identifies a sent message.
type Receipt struct {
	MessageID string
}

// Transport sends a single message. Implementations bound every call with
// their own timeout.
type Transport interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// NewTransport picks the transport named by MAIL_TRANSPORT. Missing
// credentials yield a DisabledTransport rather than an error.
func NewTransport(cfg config.MailConfig, log *logger.Logger) Transport {
	switch cfg.GetMailTransport() {
	case "smtp":
		if cfg.GetSMTPHost() == "" {
			log.Warn("SMTP_HOST not set, outbound email disabled")
			return DisabledTransport{}
		}
		return NewSMTPTransport(cfg)
	default:
		if !cfg.GetMailCredentials().Complete() {
			log.Warn("gmail OAuth credentials not set, sends will fail until configured")
		}
		// Credentials are resolved per send, so the transport is still built.
		return NewGmailTransport(cfg)
	}
}

// DisabledTransport fails every send cleanly.
type DisabledTransport struct{}

func (DisabledTransport) Send(context.Context, Message) (Receipt, error) {
	return Receipt{}, ErrNotConfigured
}

// buildMIME assembles an HTML message with a plain-text alternative.
func buildMIME(fromName, fromAddress string, msg Message) (*gomail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, errors.New("recipient address is required")
	}

	m := gomail.NewMsg()
	if fromAddress != "" {
		if err := m.FromFormat(fromName, fromAddress); err != nil {
			return nil, fmt.Errorf("mail from: %w", err)
		}
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, sanitize.PlainText(msg.HTMLBody))
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
