package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/ai"
	"consulting_leads_backend/platform/logger"
)

func mustRules(t *testing.T) *Rules {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	return rules
}

func janeLead() domain.Lead {
	return domain.Lead{
		Name:    "Jane",
		Email:   "jane@corp.com",
		Phone:   "555-1234",
		Inquiry: "We need an urgent enterprise rollout with a defined budget",
		Source:  "website",
		Status:  domain.StatusNew,
	}
}

func TestScoreJaneScenario(t *testing.T) {
	det := NewDeterministic(mustRules(t))
	lead := janeLead()

	score := det.Score(lead)
	if score < 90 {
		t.Fatalf("score = %d, want >= 90", score)
	}
	if tier := det.Tier(score, lead.Source); tier != TierHigh {
		t.Fatalf("tier = %s, want high", tier)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	det := NewDeterministic(mustRules(t))
	lead := janeLead()
	lead.Email = "jane@gmail.com"
	lead.Source = "chat"

	first := det.Score(lead)
	for i := 0; i < 10; i++ {
		if got := det.Score(lead); got != first {
			t.Fatalf("score changed between calls: %d then %d", first, got)
		}
	}
}

func TestScoreClampsAtExtremes(t *testing.T) {
	det := NewDeterministic(mustRules(t))

	maxed := domain.Lead{
		Email:   "cio@agency.gov",
		Phone:   "+14155552671",
		Source:  "referral",
		Inquiry: strings.Repeat("We have an urgent enterprise migration with approved budget and want a demo meeting soon. ", 5),
	}
	if got := det.Score(maxed); got != 100 {
		t.Fatalf("maximal lead score = %d, want 100", got)
	}

	minimal := domain.Lead{Email: "x@gmail.com", Phone: domain.PhoneNotProvided, Source: "unknown"}
	got := det.Score(minimal)
	if got < 0 || got > 100 {
		t.Fatalf("minimal lead score %d out of range", got)
	}
	if got != 40 {
		t.Fatalf("minimal lead score = %d, want 40", got)
	}

	harsh := mustRules(t)
	harsh.Email.WebmailPoints = -500
	if got := NewDeterministic(harsh).Score(minimal); got != 0 {
		t.Fatalf("score with heavy penalty = %d, want 0", got)
	}
}

func TestScoreFactors(t *testing.T) {
	det := NewDeterministic(mustRules(t))
	base := domain.Lead{Email: "someone", Phone: domain.PhoneNotProvided}

	cases := []struct {
		name  string
		edit  func(l *domain.Lead)
		delta int
	}{
		{"edu domain", func(l *domain.Lead) { l.Email = "prof@uni.edu" }, 15},
		{"business domain", func(l *domain.Lead) { l.Email = "cto@acme.io" }, 10},
		{"webmail", func(l *domain.Lead) { l.Email = "me@Yahoo.com" }, -10},
		{"phone", func(l *domain.Lead) { l.Phone = "555-1234" }, 5},
		{"urgency counted once", func(l *domain.Lead) { l.Inquiry = "Urgent! ASAP, deadline is critical" }, 10},
		{"intent", func(l *domain.Lead) { l.Inquiry = "Could we book a call?" }, 15},
		{"word boundary", func(l *domain.Lead) { l.Inquiry = "The scaled-down budgetary discussion" }, 0},
		{"referral source", func(l *domain.Lead) { l.Source = "Referral" }, 15},
		{"linkedin source", func(l *domain.Lead) { l.Source = "linkedin_ad" }, 10},
		{"booking source", func(l *domain.Lead) { l.Source = "booking_calendar" }, 8},
		{"chat source", func(l *domain.Lead) { l.Source = "chat" }, 4},
		{"email source", func(l *domain.Lead) { l.Source = "email" }, 3},
		{"long inquiry", func(l *domain.Lead) { l.Inquiry = strings.Repeat("x", 150) }, 3},
		{"very long wordy inquiry", func(l *domain.Lead) { l.Inquiry = strings.Repeat("word ", 60) }, 10},
	}

	baseline := det.Score(base)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := base
			tc.edit(&lead)
			if got := det.Score(lead) - baseline; got != tc.delta {
				t.Fatalf("delta = %d, want %d", got, tc.delta)
			}
		})
	}
}

func TestTier(t *testing.T) {
	det := NewDeterministic(mustRules(t))
	cases := []struct {
		score  int
		source string
		want   Tier
	}{
		{10, "referral", TierHigh},
		{70, "website", TierHigh},
		{69, "website", TierMedium},
		{40, "chat", TierMedium},
		{39, "chat", TierLow},
	}
	for _, tc := range cases {
		if got := det.Tier(tc.score, tc.source); got != tc.want {
			t.Errorf("Tier(%d, %q) = %s, want %s", tc.score, tc.source, got, tc.want)
		}
	}
}

func TestParseRulesRejectsInvertedTiers(t *testing.T) {
	if _, err := ParseRules([]byte("tiers:\n  high: 30\n  medium: 60\n")); err == nil {
		t.Fatal("expected error for inverted tiers")
	}
}

func TestEvaluateUsesAssistedResult(t *testing.T) {
	completer := ai.CompleterFunc(func(ctx context.Context, p ai.Prompt) (string, error) {
		if !strings.Contains(p.User, "jane@corp.com") {
			t.Errorf("prompt does not describe the lead: %q", p.User)
		}
		return "```json\n{\"score\": 64, \"insights\": \"Enterprise buyer\", \"recommendedAction\": \"demo\"}\n```", nil
	})
	svc := New(mustRules(t), completer, logger.NewNop())

	res := svc.Evaluate(context.Background(), janeLead())
	if res.Fallback {
		t.Fatal("assisted result should not be marked as fallback")
	}
	if res.Score != 64 || res.Tier != TierMedium || res.RecommendedAction != "demo" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Insights) != 1 || res.Insights[0] != "Enterprise buyer" {
		t.Fatalf("insights = %v", res.Insights)
	}
}

func TestEvaluateFallsBack(t *testing.T) {
	cases := map[string]ai.Completer{
		"provider error": ai.CompleterFunc(func(context.Context, ai.Prompt) (string, error) {
			return "", errors.New("503 from provider")
		}),
		"malformed json": ai.CompleterFunc(func(context.Context, ai.Prompt) (string, error) {
			return "I think this lead is great!", nil
		}),
		"missing score": ai.CompleterFunc(func(context.Context, ai.Prompt) (string, error) {
			return `{"insights": ["x"]}`, nil
		}),
		"disabled": nil,
	}

	det := NewDeterministic(mustRules(t))
	want := det.Score(janeLead())
	for name, completer := range cases {
		t.Run(name, func(t *testing.T) {
			svc := New(mustRules(t), completer, logger.NewNop())
			res := svc.Evaluate(context.Background(), janeLead())
			if !res.Fallback {
				t.Fatal("expected fallback result")
			}
			if res.Score != want {
				t.Fatalf("fallback score = %d, want %d", res.Score, want)
			}
		})
	}
}

func TestParseAssessmentClampsAndAcceptsList(t *testing.T) {
	got, err := parseAssessment(`Here you go: {"score": 140, "insights": ["a", " ", "b"]}`)
	if err != nil {
		t.Fatalf("parseAssessment: %v", err)
	}
	if got.score != 100 {
		t.Fatalf("score = %d, want clamp to 100", got.score)
	}
	if len(got.insights) != 2 {
		t.Fatalf("insights = %v", got.insights)
	}
}
