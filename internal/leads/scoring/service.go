// Package scoring rates leads on a 0-100 scale and derives a priority tier.
// The deterministic scorer is always available; an AI-assisted strategy can
// be layered on top and falls back to it on any provider failure.
package scoring

import (
	"context"
	"math"
	"strings"
	"unicode"

	"consulting_leads_backend/internal/leads/domain"
)

type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Factor is one contribution to a deterministic score.
type Factor struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

// Result is the outcome of an evaluation by either strategy.
type Result struct {
	Score             int
	Tier              Tier
	Insights          []string
	RecommendedAction string
	Factors           []Factor
	Fallback          bool
	Strategy          string
}

// Strategy evaluates a lead. Implementations are interchangeable.
type Strategy interface {
	Evaluate(ctx context.Context, lead domain.Lead) (Result, error)
}

// Deterministic scores leads from the rule tables only.
type Deterministic struct {
	rules *Rules
}

func NewDeterministic(rules *Rules) *Deterministic {
	return &Deterministic{rules: rules}
}

// Score is a pure function of the lead fields.
func (d *Deterministic) Score(lead domain.Lead) int {
	score, _ := d.compute(lead)
	return score
}

// Tier applies the referral override before the score thresholds.
func (d *Deterministic) Tier(score int, source string) Tier {
	src := strings.ToLower(source)
	if containsAny(src, d.rules.Tiers.AlwaysHighSources) {
		return TierHigh
	}
	switch {
	case score >= d.rules.Tiers.High:
		return TierHigh
	case score >= d.rules.Tiers.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

func (d *Deterministic) Evaluate(_ context.Context, lead domain.Lead) (Result, error) {
	score, factors := d.compute(lead)
	tier := d.Tier(score, lead.Source)
	return Result{
		Score:             score,
		Tier:              tier,
		Insights:          describeFactors(factors),
		RecommendedAction: recommendedAction(tier, lead),
		Factors:           factors,
		Strategy:          "deterministic",
	}, nil
}

func (d *Deterministic) compute(lead domain.Lead) (int, []Factor) {
	score := d.rules.Base
	factors := make([]Factor, 0, 8)

	score += addFactor(&factors, "email_domain", d.scoreEmail(lead.Email))
	if lead.HasPhone() {
		score += addFactor(&factors, "phone", d.rules.PhonePoints)
	}

	text := normalizeText(lead.Inquiry)
	for _, cat := range d.rules.Keywords {
		if matchesAnyWord(text, cat.Words) {
			score += addFactor(&factors, "keyword_"+cat.Category, cat.Points)
		}
	}

	score += addFactor(&factors, "source", d.scoreSource(lead.Source))

	inquiry := strings.TrimSpace(lead.Inquiry)
	score += addFactor(&factors, "detail_length", firstThreshold(d.rules.Detail.Length, len([]rune(inquiry))))
	score += addFactor(&factors, "detail_words", firstThreshold(d.rules.Detail.Words, len(strings.Fields(inquiry))))

	return clampScore(score), factors
}

func (d *Deterministic) scoreEmail(email string) float64 {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return 0
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))

	for _, suffix := range d.rules.Email.InstitutionalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return d.rules.Email.InstitutionalPoints
		}
	}
	for _, webmail := range d.rules.Email.WebmailDomains {
		if host == webmail {
			return d.rules.Email.WebmailPoints
		}
	}
	if strings.Contains(host, ".") {
		return d.rules.Email.BusinessPoints
	}
	return 0
}

func (d *Deterministic) scoreSource(source string) float64 {
	src := strings.ToLower(strings.TrimSpace(source))
	if src == "" {
		return 0
	}
	for _, entry := range d.rules.Sources {
		if containsAny(src, entry.Match) {
			return entry.Points
		}
	}
	return 0
}

func firstThreshold(thresholds []Threshold, value int) float64 {
	for _, t := range thresholds {
		if value > t.Over {
			return t.Points
		}
	}
	return 0
}

func addFactor(factors *[]Factor, name string, value float64) float64 {
	if math.Abs(value) < 0.01 {
		return 0
	}
	*factors = append(*factors, Factor{Name: name, Points: math.Round(value*10) / 10})
	return value
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// containsAny checks if s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// normalizeText lowercases s, turns punctuation into spaces and pads the
// result so whole words and phrases can be matched with " word ".
func normalizeText(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	if !lastSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

func matchesAnyWord(normalized string, words []string) bool {
	for _, w := range words {
		needle := normalizeText(w)
		if strings.TrimSpace(needle) == "" {
			continue
		}
		if strings.Contains(normalized, needle) {
			return true
		}
	}
	return false
}

// MentionsAny reports whether text contains any of the words or phrases,
// matched case-insensitively on word boundaries.
func MentionsAny(text string, words []string) bool {
	return matchesAnyWord(normalizeText(text), words)
}

func describeFactors(factors []Factor) []string {
	insights := make([]string, 0, len(factors))
	for _, f := range factors {
		label := strings.ReplaceAll(strings.TrimPrefix(f.Name, "keyword_"), "_", " ")
		switch {
		case strings.HasPrefix(f.Name, "keyword_"):
			insights = append(insights, "Inquiry signals "+label)
		case f.Points < 0:
			insights = append(insights, "Weak signal: "+label)
		default:
			insights = append(insights, "Positive signal: "+label)
		}
	}
	return insights
}

func recommendedAction(tier Tier, lead domain.Lead) string {
	switch {
	case tier == TierHigh:
		return string(domain.ActionPriorityOutreach)
	case lead.Status == domain.StatusNew:
		return string(domain.ActionWelcome)
	default:
		return string(domain.ActionFollowUp)
	}
}
