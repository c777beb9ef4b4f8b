package domain_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Day  domain.Date  `json:"day"`
		Last *domain.Date `json:"last"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-03-10","last":null}`), &payload))
	assert.Equal(t, domain.NewDate(2025, time.March, 10), payload.Day)
	assert.Nil(t, payload.Last)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-03-10","last":null}`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"10/03/2025"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d domain.Date

	require.NoError(t, d.Scan(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-10", d.String())

	require.NoError(t, d.Scan("2025-03-11T00:00:00Z"))
	assert.Equal(t, "2025-03-11", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := domain.NewDate(2025, time.March, 12).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", v)
}

func TestDateArithmetic(t *testing.T) {
	start := domain.NewDate(2025, time.March, 30)
	end := start.AddDays(3)

	assert.Equal(t, "2025-04-02", end.String())
	assert.Equal(t, 3, end.DaysSince(start))
	assert.Equal(t, -3, start.DaysSince(end))
	assert.True(t, start.Before(end))
	assert.Equal(t, time.Sunday, start.Weekday())
}

func TestTemplateWindow(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	day := domain.NewDate(2025, time.March, 10)

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
		overnight bool
	}{
		{
			name: "morning", start: "06:00:00", end: "14:00:00",
			wantStart: time.Date(2025, time.March, 10, 6, 0, 0, 0, sp),
			wantEnd:   time.Date(2025, time.March, 10, 14, 0, 0, 0, sp),
		},
		{
			name: "night", start: "19:00:00", end: "07:00:00",
			wantStart: time.Date(2025, time.March, 10, 19, 0, 0, 0, sp),
			wantEnd:   time.Date(2025, time.March, 11, 7, 0, 0, 0, sp),
			overnight: true,
		},
		{
			name: "full day", start: "07:00:00", end: "07:00:00",
			wantStart: time.Date(2025, time.March, 10, 7, 0, 0, 0, sp),
			wantEnd:   time.Date(2025, time.March, 11, 7, 0, 0, 0, sp),
			overnight: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &domain.ShiftTemplate{Name: tt.name, StartTime: tt.start, EndTime: tt.end}

			start, end, err := tmpl.Window(day, sp)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(start), "start %s", start)
			assert.True(t, tt.wantEnd.Equal(end), "end %s", end)
			assert.Equal(t, tt.overnight, tmpl.Overnight())
		})
	}

	_, _, err = (&domain.ShiftTemplate{Name: "broken", StartTime: "6h", EndTime: "14:00:00"}).Window(day, sp)
	assert.Error(t, err)
}

func TestTemplateWithOverride(t *testing.T) {
	base := domain.ShiftTemplate{Name: "T-MANHA", StartTime: "06:00:00", EndTime: "14:00:00", DurationMinutes: 480}

	plain := base.WithOverride(nil)
	assert.True(t, plain.Enabled)
	assert.False(t, plain.Overridden)

	name := "Manhã"
	start := "07:00:00"
	merged := base.WithOverride(&domain.TemplateOverride{Name: &name, StartTime: &start, Enabled: false})
	assert.Equal(t, "Manhã", merged.Name)
	assert.Equal(t, "07:00:00", merged.StartTime)
	assert.Equal(t, "14:00:00", merged.EndTime)
	assert.False(t, merged.Enabled)
	assert.True(t, merged.Overridden)

	// the shared default is untouched
	assert.Equal(t, "T-MANHA", base.Name)
}

func TestPatternWeekIndex(t *testing.T) {
	end := domain.NewDate(2025, time.February, 2)
	p := &domain.WeeklyPattern{
		NumberOfWeeks: 2,
		StartDate:     domain.NewDate(2025, time.January, 6),
		EndDate:       &end,
	}

	tests := []struct {
		day  domain.Date
		week int32
		ok   bool
	}{
		{domain.NewDate(2025, time.January, 5), 0, false},
		{domain.NewDate(2025, time.January, 6), 0, true},
		{domain.NewDate(2025, time.January, 12), 0, true},
		{domain.NewDate(2025, time.January, 13), 1, true},
		{domain.NewDate(2025, time.January, 20), 0, true},
		{domain.NewDate(2025, time.January, 27), 1, true},
		{domain.NewDate(2025, time.February, 2), 1, true},
		{domain.NewDate(2025, time.February, 3), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			week, ok := p.WeekIndex(tt.day)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.week, week)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, domain.IsNotFound(domain.NotFound("shift %s not found", "x")))
	assert.True(t, domain.IsConflict(fmt.Errorf("wrapped: %w", domain.Conflict("stale"))))
	assert.False(t, domain.IsConflict(domain.BadRequest("nope")))

	conflict := &domain.SchedulingConflictError{
		WorkerID:        uuid.New(),
		WorkerName:      "Ana Souza",
		Date:            domain.NewDate(2025, time.March, 10),
		ConflictShiftID: uuid.New(),
	}
	assert.True(t, domain.IsBadRequest(conflict))
	assert.Equal(t, "worker Ana Souza already has a shift on 2025-03-10", conflict.Error())

	var target *domain.SchedulingConflictError
	assert.True(t, errors.As(fmt.Errorf("add member: %w", conflict), &target))
	assert.Equal(t, conflict.ConflictShiftID, target.ConflictShiftID)
}
