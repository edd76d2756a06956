package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/ai"
	"consulting_leads_backend/platform/sanitize"
)

var errUnusableBody = errors.New("generated email body is incomplete or empty")

var actionGoals = map[domain.ActionType]string{
	domain.ActionWelcome:          "Welcome a new inquiry, confirm it was received and explain what happens next.",
	domain.ActionFollowUp:         "Follow up politely on an inquiry that has not progressed for a few days and offer a short call.",
	domain.ActionDemo:             "Invite the lead to a live demo of relevant solutions and list what the demo covers.",
	domain.ActionPriorityOutreach: "Reach out personally to a high-value lead, offer a dedicated senior consultant and a fast scoping session.",
	domain.ActionDemoMeeting:      "The lead asked for a demo or meeting. Propose concrete next steps to book it.",
	domain.ActionReEngagement:     "Re-engage a lead that went quiet more than a week ago without being pushy.",
}

const emailSystemPromptFmt = `You write outbound emails for %s, an IT consulting firm.
Goal: %s
Rules:
- Return one complete HTML email document, starting with <html> and ending with </html>.
- Use inline styles only. No scripts, no external stylesheets, no images.
- Greet the recipient by first name, reference their inquiry, include a bulleted list of next steps, and sign off as %s.
- Never truncate the email. Do not wrap it in code fences or add commentary.`

func (r *Renderer) generate(ctx context.Context, lead domain.Lead, action domain.ActionType) (string, error) {
	goal, ok := actionGoals[action]
	if !ok {
		return "", fmt.Errorf("no generation goal for %q", action)
	}

	inquiry := strings.TrimSpace(lead.Inquiry)
	if inquiry == "" {
		inquiry = "(no message provided)"
	}
	user := fmt.Sprintf("Recipient name: %s\nRecipient email: %s\nLead source: %s\nInquiry: %s\nSubject line (already set): %s",
		lead.Name, lead.Email, lead.Source, inquiry, Subject(action, lead))

	text, err := r.completer.Complete(ctx, ai.Prompt{
		System:      fmt.Sprintf(emailSystemPromptFmt, r.brand.CompanyName, goal, r.brand.SenderName),
		User:        user,
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", err
	}

	return acceptGenerated(text)
}

// acceptGenerated validates and sanitizes a generated body.
func acceptGenerated(text string) (string, error) {
	body := stripCodeFence(text)
	if !sanitize.LooksComplete(body) || sanitize.VisibleTextLength(body) == 0 {
		return "", errUnusableBody
	}
	clean := sanitize.EmailHTML(body)
	if sanitize.VisibleTextLength(clean) == 0 {
		return "", errUnusableBody
	}
	return clean, nil
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.Index(trimmed, "\n"); nl >= 0 {
		trimmed = trimmed[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}
