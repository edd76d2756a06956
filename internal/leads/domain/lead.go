// Package domain holds the lead entity, its status set and the action
// types that can be sent to it. It has no dependencies on storage or
// transport.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhoneNotProvided is stored when the visitor leaves the phone field empty.
const PhoneNotProvided = "Not provided"

// DefaultSource is used when the caller does not tag the submission.
const DefaultSource = "website_contact_form"

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusQualified: {},
	StatusConverted: {},
	StatusLost:      {},
}

func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// Lead is a prospective customer captured by the intake endpoint.
// ID and CreatedAt are assigned by the store and never change.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Inquiry   string
	Source    string
	Status    Status
	CreatedAt time.Time
}

// Age is the time elapsed since the lead was created.
func (l Lead) Age(now time.Time) time.Duration {
	return now.Sub(l.CreatedAt)
}

// HasPhone reports whether a real phone number was captured.
func (l Lead) HasPhone() bool {
	p := strings.TrimSpace(l.Phone)
	return p != "" && !strings.EqualFold(p, PhoneNotProvided)
}

// FirstName returns the first word of the lead's name for greetings.
func (l Lead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
