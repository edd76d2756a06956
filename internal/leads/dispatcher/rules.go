package dispatcher

import (
	"time"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/scoring"
)

const (
	followUpAfter     = 72 * time.Hour
	reEngageAfter     = 7 * 24 * time.Hour
	priorityThreshold = 80
)

// demoKeywords signal that the visitor wants a demo or a meeting.
var demoKeywords = []string{
	"demo", "demos", "demonstration", "meeting", "meet", "walkthrough",
	"schedule a call", "book a call", "consultation",
}

// Snapshot is what the rules see: the lead as loaded plus derived values.
type Snapshot struct {
	Lead  domain.Lead
	Score int
	Age   time.Duration
}

// Rule maps a lead snapshot to an action.
type Rule struct {
	Name   string
	Action domain.ActionType
	// Cooldown is the minimum time since the last successful send of the
	// same action. Zero means the action is sent at most once per lead.
	Cooldown time.Duration
	Applies  func(s Snapshot) bool
}

// DefaultRules returns the automation rules in evaluation order. Rules are
// independent; several may fire for the same lead in one pass.
func DefaultRules(welcomeGrace time.Duration) []Rule {
	return []Rule{
		{
			Name:   "welcome",
			Action: domain.ActionWelcome,
			Applies: func(s Snapshot) bool {
				return s.Lead.Status == domain.StatusNew && s.Age > welcomeGrace
			},
		},
		{
			Name:     "follow_up",
			Action:   domain.ActionFollowUp,
			Cooldown: 7 * 24 * time.Hour,
			Applies: func(s Snapshot) bool {
				return s.Lead.Status == domain.StatusContacted && s.Age > followUpAfter
			},
		},
		{
			Name:   "priority_outreach",
			Action: domain.ActionPriorityOutreach,
			Applies: func(s Snapshot) bool {
				return s.Score > priorityThreshold &&
					s.Lead.Status != domain.StatusConverted &&
					s.Lead.Status != domain.StatusQualified
			},
		},
		{
			Name:     "re_engagement",
			Action:   domain.ActionReEngagement,
			Cooldown: 30 * 24 * time.Hour,
			Applies: func(s Snapshot) bool {
				return s.Lead.Status == domain.StatusContacted && s.Age > reEngageAfter
			},
		},
		{
			Name:   "demo_scheduler",
			Action: domain.ActionDemoMeeting,
			Applies: func(s Snapshot) bool {
				return s.Lead.Status != domain.StatusQualified && scoring.MentionsAny(s.Lead.Inquiry, demoKeywords)
			},
		},
	}
}
