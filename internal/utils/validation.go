package utils

import (
	"fmt"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
)

func parseClock(label, value string) (time.Time, error) {
	t, err := time.Parse(domain.TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q must use the HH:MM:SS format", label, value)
	}
	return t, nil
}

// ValidateTemplateTimes checks a template's clock times and that the duration
// matches the window. End times at or before the start roll over midnight.
func ValidateTemplateTimes(t *domain.ShiftTemplate) error {
	start, err := parseClock("start time", t.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock("end time", t.EndTime)
	if err != nil {
		return err
	}

	if t.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	window := end.Sub(start)
	if window <= 0 {
		window += 24 * time.Hour
	}
	if int32(window/time.Minute) != t.DurationMinutes {
		return fmt.Errorf("duration of %d minutes does not match the %s to %s window", t.DurationMinutes, t.StartTime, t.EndTime)
	}

	return nil
}

// ValidateTemplateOverride checks the override against the template it
// customizes. Unset fields keep the template defaults.
func ValidateTemplateOverride(base *domain.ShiftTemplate, o *domain.TemplateOverride) error {
	merged := base.WithOverride(o)
	if o.Name != nil && *o.Name == "" {
		return fmt.Errorf("override name must not be empty")
	}
	if o.StartTime == nil && o.EndTime == nil && o.DurationMinutes == nil {
		return nil
	}
	return ValidateTemplateTimes(&merged)
}

func ValidatePatternDates(p *domain.WeeklyPattern) error {
	if p.NumberOfWeeks < 1 || p.NumberOfWeeks > domain.MaxPatternWeeks {
		return fmt.Errorf("number of weeks must be between 1 and %d", domain.MaxPatternWeeks)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if p.EndDate != nil && !p.EndDate.After(p.StartDate) {
		return fmt.Errorf("end date must be after the start date")
	}
	return nil
}

func ValidatePatternAssignment(p *domain.WeeklyPattern, a *domain.PatternAssignment) error {
	if a.WeekIndex < 0 || a.WeekIndex >= p.NumberOfWeeks {
		return fmt.Errorf("week index %d is outside the pattern's %d weeks", a.WeekIndex, p.NumberOfWeeks)
	}
	if a.DayOfWeek < 0 || a.DayOfWeek > 6 {
		return fmt.Errorf("day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	return nil
}
