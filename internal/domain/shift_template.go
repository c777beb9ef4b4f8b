package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TimeLayout = "15:04:05"

type TemplateType string

const (
	TemplateType6H     TemplateType = "6H"
	TemplateType8H     TemplateType = "8H"
	TemplateType12H    TemplateType = "12H"
	TemplateTypeCustom TemplateType = "CUSTOM"
)

// ShiftTemplate is shared by every installation. Name, times, duration and
// Enabled reflect the installation override when one was merged in.
type ShiftTemplate struct {
	ID              uuid.UUID    `json:"id"`
	Type            TemplateType `json:"type"`
	Name            string       `json:"name"`
	StartTime       string       `json:"startTime"`
	EndTime         string       `json:"endTime"`
	DurationMinutes int32        `json:"durationMinutes"`
	IsActive        bool         `json:"isActive"`
	DisplayOrder    int32        `json:"displayOrder"`
	Enabled         bool         `json:"enabled"`
	Overridden      bool         `json:"overridden"`
	CreatedAt       time.Time    `json:"createdAt"`
	Version         int32        `json:"-"`
}

type TemplateOverride struct {
	InstallationID  uuid.UUID `json:"installationID"`
	TemplateID      uuid.UUID `json:"templateID"`
	Name            *string   `json:"name"`
	StartTime       *string   `json:"startTime"`
	EndTime         *string   `json:"endTime"`
	DurationMinutes *int32    `json:"durationMinutes"`
	Enabled         bool      `json:"enabled"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// WithOverride returns the template as an installation sees it. A nil
// override leaves the defaults in place and the template enabled.
func (t ShiftTemplate) WithOverride(o *TemplateOverride) ShiftTemplate {
	t.Enabled = true
	t.Overridden = false
	if o == nil {
		return t
	}
	t.Overridden = true
	t.Enabled = o.Enabled
	if o.Name != nil {
		t.Name = *o.Name
	}
	if o.StartTime != nil {
		t.StartTime = *o.StartTime
	}
	if o.EndTime != nil {
		t.EndTime = *o.EndTime
	}
	if o.DurationMinutes != nil {
		t.DurationMinutes = *o.DurationMinutes
	}
	return t
}

// Window returns the absolute start and end of the template on the given day.
// An end time not after the start time rolls over to the next day.
func (t *ShiftTemplate) Window(day Date, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.Parse(TimeLayout, t.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("template %s has an invalid start time %q", t.Name, t.StartTime)
	}
	end, err := time.Parse(TimeLayout, t.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("template %s has an invalid end time %q", t.Name, t.EndTime)
	}

	base := day.In(loc)
	startAt := base.Add(sinceMidnight(start))
	endAt := base.Add(sinceMidnight(end))
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, nil
}

// Overnight reports whether the window crosses midnight.
func (t *ShiftTemplate) Overnight() bool {
	return t.EndTime <= t.StartTime
}

func sinceMidnight(clock time.Time) time.Duration {
	return time.Duration(clock.Hour())*time.Hour +
		time.Duration(clock.Minute())*time.Minute +
		time.Duration(clock.Second())*time.Second
}
