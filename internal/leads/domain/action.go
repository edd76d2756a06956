package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionWelcome          ActionType = "welcome"
	ActionFollowUp         ActionType = "follow_up"
	ActionDemo             ActionType = "demo"
	ActionPriorityOutreach ActionType = "priority_outreach"
	ActionDemoMeeting      ActionType = "demo_meeting"
	ActionReEngagement     ActionType = "re_engagement"
)

// ActionTypes lists every action in display order.
var ActionTypes = []ActionType{
	ActionWelcome,
	ActionFollowUp,
	ActionDemo,
	ActionPriorityOutreach,
	ActionDemoMeeting,
	ActionReEngagement,
}

func (a ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if a == known {
			return true
		}
	}
	return false
}

func ParseActionType(raw string) (ActionType, error) {
	a := ActionType(strings.ToLower(strings.TrimSpace(raw)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown action type %q", raw)
	}
	return a, nil
}

// NextStatus returns the status a lead moves to after action was sent
// successfully. ok is false when the action does not change the status.
// A converted lead is never moved back.
func NextStatus(action ActionType, current Status) (next Status, ok bool) {
	switch action {
	case ActionWelcome:
		if current == StatusNew {
			return StatusContacted, true
		}
	case ActionPriorityOutreach, ActionDemoMeeting:
		if current != StatusConverted && current != StatusQualified {
			return StatusQualified, true
		}
	}
	return "", false
}

type ActionResult string

const (
	ActionSucceeded ActionResult = "success"
	ActionFailed    ActionResult = "failed"
)

// ActionRecord is the audit entry written after every attempted send.
type ActionRecord struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	Action     ActionType
	Result     ActionResult
	Detail     string
	ExecutedAt time.Time
}
