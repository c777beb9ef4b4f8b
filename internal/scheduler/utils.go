package scheduler

import "github.com/carehome-dev/care-shift/backend/internal/domain"

// dayOfWeek numbers days the way pattern assignments do, 0 = Sunday.
func dayOfWeek(d domain.Date) int32 {
	return int32(d.Weekday())
}

func clampDays(days int, p Parameters) int {
	if days <= 0 {
		days = p.DefaultDays
	}
	if p.MaxDays > 0 && days > p.MaxDays {
		days = p.MaxDays
	}
	return days
}
