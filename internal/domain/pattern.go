package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxPatternWeeks = 4

type WeeklyPattern struct {
	ID             uuid.UUID           `json:"id"`
	InstallationID uuid.UUID           `json:"installationID"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	NumberOfWeeks  int32               `json:"numberOfWeeks"`
	StartDate      Date                `json:"startDate"`
	EndDate        *Date               `json:"endDate"`
	IsActive       bool                `json:"isActive"`
	CreatedBy      uuid.UUID           `json:"createdBy"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	DeletedAt      *time.Time          `json:"deletedAt,omitempty"`
	Assignments    []PatternAssignment `json:"assignments,omitempty"`
	Version        int32               `json:"-"`
}

// WeekIndex returns which pattern week the day falls in. The second value is
// false when the day lies outside the pattern's validity.
func (p *WeeklyPattern) WeekIndex(day Date) (int32, bool) {
	if day.Before(p.StartDate) {
		return 0, false
	}
	if p.EndDate != nil && day.After(*p.EndDate) {
		return 0, false
	}
	weeks := p.NumberOfWeeks
	if weeks < 1 {
		weeks = 1
	}
	return int32(day.DaysSince(p.StartDate)/7) % weeks, true
}

type PatternAssignment struct {
	ID         uuid.UUID  `json:"id"`
	PatternID  uuid.UUID  `json:"patternID"`
	WeekIndex  int32      `json:"weekIndex"`
	DayOfWeek  int32      `json:"dayOfWeek"` // 0 = Sunday
	TemplateID uuid.UUID  `json:"templateID"`
	TeamID     *uuid.UUID `json:"teamID"`
	CreatedAt  time.Time  `json:"createdAt"`
}
