package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules are the tables behind the deterministic score.
type Rules struct {
	Base        float64           `yaml:"base"`
	Email       EmailRules        `yaml:"email"`
	PhonePoints float64           `yaml:"phone_points"`
	Keywords    []KeywordCategory `yaml:"keywords"`
	Sources     []SourceRule      `yaml:"sources"`
	Detail      DetailRules       `yaml:"detail"`
	Tiers       TierRules         `yaml:"tiers"`
}

type EmailRules struct {
	InstitutionalSuffixes []string `yaml:"institutional_suffixes"`
	InstitutionalPoints   float64  `yaml:"institutional_points"`
	BusinessPoints        float64  `yaml:"business_points"`
	WebmailPoints         float64  `yaml:"webmail_points"`
	WebmailDomains        []string `yaml:"webmail_domains"`
}

type KeywordCategory struct {
	Category string   `yaml:"category"`
	Points   float64  `yaml:"points"`
	Words    []string `yaml:"words"`
}

type SourceRule struct {
	Match  []string `yaml:"match"`
	Points float64  `yaml:"points"`
}

type Threshold struct {
	Over   int     `yaml:"over"`
	Points float64 `yaml:"points"`
}

type DetailRules struct {
	Length []Threshold `yaml:"length"`
	Words  []Threshold `yaml:"words"`
}

type TierRules struct {
	High              int      `yaml:"high"`
	Medium            int      `yaml:"medium"`
	AlwaysHighSources []string `yaml:"always_high_sources"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads rules from path, or the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse scoring rules: %w", err)
	}
	if err := rules.normalize(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *Rules) normalize() error {
	if r.Tiers.High <= r.Tiers.Medium {
		return fmt.Errorf("scoring rules: high tier (%d) must be above medium (%d)", r.Tiers.High, r.Tiers.Medium)
	}
	lowerAll(r.Email.InstitutionalSuffixes)
	lowerAll(r.Email.WebmailDomains)
	lowerAll(r.Tiers.AlwaysHighSources)
	for i := range r.Keywords {
		lowerAll(r.Keywords[i].Words)
	}
	for i := range r.Sources {
		lowerAll(r.Sources[i].Match)
	}
	// Largest threshold first so the first hit is the best one.
	sort.SliceStable(r.Detail.Length, func(i, j int) bool { return r.Detail.Length[i].Over > r.Detail.Length[j].Over })
	sort.SliceStable(r.Detail.Words, func(i, j int) bool { return r.Detail.Words[i].Over > r.Detail.Words[j].Over })
	return nil
}

func lowerAll(values []string) {
	for i, v := range values {
		values[i] = strings.ToLower(strings.TrimSpace(v))
	}
}
