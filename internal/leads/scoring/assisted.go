package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/ai"
)

const scoringSystemPrompt = `You qualify inbound leads for an IT consulting firm.
Rate the lead from 0 (no fit) to 100 (ideal, ready to buy).
Respond with a single JSON object and nothing else:
{"score": <integer 0-100>, "insights": ["<short observation>", ...], "recommendedAction": "<one of: welcome, follow_up, demo, priority_outreach, demo_meeting, re_engagement>"}`

var errMalformedScore = errors.New("malformed scoring response")

// AssistedStrategy asks the generative provider for a score.
type AssistedStrategy struct {
	completer ai.Completer
	tiers     *Deterministic
}

func NewAssistedStrategy(completer ai.Completer, tiers *Deterministic) *AssistedStrategy {
	return &AssistedStrategy{completer: completer, tiers: tiers}
}

func (a *AssistedStrategy) Evaluate(ctx context.Context, lead domain.Lead) (Result, error) {
	text, err := a.completer.Complete(ctx, ai.Prompt{
		System:      scoringSystemPrompt,
		User:        leadPrompt(lead),
		Temperature: 0.2,
		MaxTokens:   400,
	})
	if err != nil {
		return Result{}, err
	}

	parsed, err := parseAssessment(text)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Score:             parsed.score,
		Tier:              a.tiers.Tier(parsed.score, lead.Source),
		Insights:          parsed.insights,
		RecommendedAction: parsed.recommendedAction,
		Strategy:          "ai",
	}, nil
}

func leadPrompt(lead domain.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	fmt.Fprintf(&b, "Status: %s\n", lead.Status)
	inquiry := strings.TrimSpace(lead.Inquiry)
	if inquiry == "" {
		inquiry = "(none)"
	}
	fmt.Fprintf(&b, "Inquiry: %s\n", inquiry)
	return b.String()
}

type assessment struct {
	score             int
	insights          []string
	recommendedAction string
}

type rawAssessment struct {
	Score             *float64        `json:"score"`
	Insights          json.RawMessage `json:"insights"`
	RecommendedAction string          `json:"recommendedAction"`
}

// parseAssessment accepts the JSON object optionally wrapped in a code fence
// or surrounded by prose. insights may be a string or a list of strings.
func parseAssessment(text string) (assessment, error) {
	body := stripCodeFence(text)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return assessment{}, fmt.Errorf("%w: no JSON object", errMalformedScore)
	}

	var raw rawAssessment
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return assessment{}, fmt.Errorf("%w: %v", errMalformedScore, err)
	}
	if raw.Score == nil || math.IsNaN(*raw.Score) || math.IsInf(*raw.Score, 0) {
		return assessment{}, fmt.Errorf("%w: missing score", errMalformedScore)
	}

	out := assessment{
		score:             clampScore(*raw.Score),
		recommendedAction: strings.TrimSpace(raw.RecommendedAction),
	}

	if len(raw.Insights) > 0 {
		var list []string
		var single string
		switch {
		case json.Unmarshal(raw.Insights, &list) == nil:
			for _, item := range list {
				if item = strings.TrimSpace(item); item != "" {
					out.insights = append(out.insights, item)
				}
			}
		case json.Unmarshal(raw.Insights, &single) == nil:
			if single = strings.TrimSpace(single); single != "" {
				out.insights = []string{single}
			}
		}
	}
	return out, nil
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
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
