package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"consulting_leads_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPTransport delivers through an SMTP relay via go-mail.
type SMTPTransport struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	timeout   time.Duration
}

func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	return &SMTPTransport{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetMailFromName(),
		fromEmail: cfg.GetMailFromAddress(),
		timeout:   cfg.GetMailTimeout(),
	}
}

func (s *SMTPTransport) Send(ctx context.Context, msg Message) (Receipt, error) {
	m, err := buildMIME(s.fromName, s.fromEmail, msg)
	if err != nil {
		return Receipt{}, err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(s.timeout),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return Receipt{}, fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return Receipt{}, fmt.Errorf("smtp send: %w", err)
	}

	return Receipt{MessageID: m.GetMessageID()}, nil
}
