package scheduler

import (
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

// slot is one (date, template) the active pattern asks for.
type slot struct {
	date         domain.Date
	templateID   uuid.UUID
	teamID       *uuid.UUID
	assignmentID uuid.UUID
}

// Parameters bound a generation run.
type Parameters struct {
	DefaultDays int // horizon used when the caller passes none
	MaxDays     int // longest horizon accepted
}

type GenerateOptions struct {
	Days int
	// From defaults to today in the service's time zone.
	From domain.Date
}

// Item identifies one generation attempt.
type Item struct {
	Date         domain.Date `json:"date"`
	TemplateID   uuid.UUID   `json:"templateID"`
	TeamID       *uuid.UUID  `json:"teamID,omitempty"`
	AssignmentID uuid.UUID   `json:"assignmentID"`
}

type SkippedItem struct {
	Item
	ExistingShiftID uuid.UUID `json:"existingShiftID,omitempty"`
}

type ItemError struct {
	Item
	Message string `json:"message"`
}

// GenerateResult separates the outcome of every attempted item. A run with
// errors is still a successful run.
type GenerateResult struct {
	PatternID uuid.UUID       `json:"patternID"`
	From      domain.Date     `json:"from"`
	To        domain.Date     `json:"to"`
	Created   []*domain.Shift `json:"created"`
	Skipped   []SkippedItem   `json:"skipped"`
	Errors    []ItemError     `json:"errors"`
}

func (s slot) item() Item {
	return Item{
		Date:         s.date,
		TemplateID:   s.templateID,
		TeamID:       s.teamID,
		AssignmentID: s.assignmentID,
	}
}
