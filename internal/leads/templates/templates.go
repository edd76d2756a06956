// Package templates renders the outbound email for each lead action. Every
// action has a fixed subject and an embedded HTML body; when a generative
// provider is configured it may write the body instead.
package templates

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/ai"
	"consulting_leads_backend/platform/logger"
)

//go:embed html/*.html
var templateFS embed.FS

var subjectFormats = map[domain.ActionType]string{
	domain.ActionWelcome:          "Thanks for reaching out, %s",
	domain.ActionFollowUp:         "Following up on your inquiry, %s",
	domain.ActionDemo:             "%s, see our solutions in action",
	domain.ActionPriorityOutreach: "%s, let's fast-track your project",
	domain.ActionDemoMeeting:      "Let's schedule your demo, %s",
	domain.ActionReEngagement:     "Still thinking it over, %s?",
}

// Draft is a rendered email. It is never persisted.
type Draft struct {
	Subject        string `json:"subject"`
	HTMLBody       string `json:"htmlBody"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	Generated      bool   `json:"generated"`
}

// Brand is the sender identity shown in every email.
type Brand struct {
	CompanyName string
	CompanyURL  string
	SenderName  string
}

type bodyData struct {
	Subject     string
	FirstName   string
	Inquiry     string
	CompanyName string
	CompanyURL  string
	SenderName  string
}

// Renderer produces drafts. It is safe for concurrent use.
type Renderer struct {
	brand     Brand
	sets      map[domain.ActionType]*template.Template
	completer ai.Completer
	log       *logger.Logger
}

// NewRenderer parses the embedded templates. completer may be nil.
func NewRenderer(brand Brand, completer ai.Completer, log *logger.Logger) (*Renderer, error) {
	if brand.SenderName == "" {
		brand.SenderName = "The " + brand.CompanyName + " team"
	}
	sets := make(map[domain.ActionType]*template.Template, len(domain.ActionTypes))
	for _, action := range domain.ActionTypes {
		tmpl, err := template.New("base.html").ParseFS(templateFS, "html/base.html", "html/"+string(action)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", action, err)
		}
		sets[action] = tmpl
	}
	return &Renderer{brand: brand, sets: sets, completer: completer, log: log}, nil
}

// Subject returns the fixed subject line for action.
func Subject(action domain.ActionType, lead domain.Lead) string {
	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = "there"
	}
	format, ok := subjectFormats[action]
	if !ok {
		format = "A message for you, %s"
	}
	return fmt.Sprintf(format, name)
}

// Render returns the AI-written draft when available and usable, otherwise
// the fallback. The result always has a subject and a body.
func (r *Renderer) Render(ctx context.Context, lead domain.Lead, action domain.ActionType) (Draft, error) {
	fallback, err := r.Fallback(lead, action)
	if err != nil {
		return Draft{}, err
	}
	if r.completer == nil {
		return fallback, nil
	}

	body, err := r.generate(ctx, lead, action)
	if err != nil {
		if r.log != nil {
			r.log.ProviderFailure("ai", "render_"+string(action), err)
		}
		return fallback, nil
	}

	draft := fallback
	draft.HTMLBody = body
	draft.Generated = true
	return draft, nil
}

// Fallback renders the embedded template for action.
func (r *Renderer) Fallback(lead domain.Lead, action domain.ActionType) (Draft, error) {
	tmpl, ok := r.sets[action]
	if !ok {
		return Draft{}, fmt.Errorf("unknown action type %q", action)
	}

	subject := Subject(action, lead)
	data := bodyData{
		Subject:     subject,
		FirstName:   lead.FirstName(),
		Inquiry:     strings.TrimSpace(lead.Inquiry),
		CompanyName: r.brand.CompanyName,
		CompanyURL:  r.brand.CompanyURL,
		SenderName:  r.brand.SenderName,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return Draft{}, fmt.Errorf("execute email template %s: %w", action, err)
	}

	return Draft{
		Subject:        subject,
		HTMLBody:       buf.String(),
		RecipientEmail: lead.Email,
		RecipientName:  lead.Name,
	}, nil
}
