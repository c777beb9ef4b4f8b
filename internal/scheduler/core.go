package scheduler

import (
	"sort"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
)

// expand lists every slot the pattern produces for days in [from, from+days).
// Days outside the pattern's validity produce nothing. Slots are ordered by
// date, then by assignment order within the day.
func expand(pattern *domain.WeeklyPattern, assignments []*domain.PatternAssignment, from domain.Date, days int) []slot {
	byDay := indexAssignments(assignments)

	slots := make([]slot, 0)
	for i := 0; i < days; i++ {
		day := from.AddDays(i)

		week, ok := pattern.WeekIndex(day)
		if !ok {
			continue
		}

		for _, a := range byDay[dayKey{week: week, weekday: dayOfWeek(day)}] {
			slots = append(slots, slot{
				date:         day,
				templateID:   a.TemplateID,
				teamID:       a.TeamID,
				assignmentID: a.ID,
			})
		}
	}
	return slots
}

type dayKey struct {
	week    int32
	weekday int32
}

func indexAssignments(assignments []*domain.PatternAssignment) map[dayKey][]*domain.PatternAssignment {
	byDay := make(map[dayKey][]*domain.PatternAssignment)
	for _, a := range assignments {
		key := dayKey{week: a.WeekIndex, weekday: a.DayOfWeek}
		byDay[key] = append(byDay[key], a)
	}
	for _, list := range byDay {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	}
	return byDay
}
