// Package seed fills an installation with a realistic starting roster: the
// default shift catalog, workers, two teams and an active two-week pattern.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/carehome-dev/care-shift/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefaultTemplates is the catalog most homes start from.
var DefaultTemplates = []staffing.CreateTemplateInput{
	{Type: domain.TemplateType8H, Name: "T-MANHA", StartTime: "06:00:00", EndTime: "14:00:00", DurationMinutes: 480, DisplayOrder: 1},
	{Type: domain.TemplateType8H, Name: "T-TARDE", StartTime: "14:00:00", EndTime: "22:00:00", DurationMinutes: 480, DisplayOrder: 2},
	{Type: domain.TemplateType12H, Name: "T-DIA", StartTime: "07:00:00", EndTime: "19:00:00", DurationMinutes: 720, DisplayOrder: 3},
	{Type: domain.TemplateType12H, Name: "T-NOITE", StartTime: "19:00:00", EndTime: "07:00:00", DurationMinutes: 720, DisplayOrder: 4},
}

type Options struct {
	Workers     int
	EmailDomain string
	// Start is the first day of the pattern. Zero means the Monday of the
	// current week.
	Start domain.Date
}

type Result struct {
	Templates []*domain.ShiftTemplate
	Workers   []*domain.Worker
	Teams     []*domain.Team
	Pattern   *domain.WeeklyPattern
}

type Seeder struct {
	staffing  *staffing.Service
	scheduler *scheduler.Service
	logger    *slog.Logger
}

func New(staffingSvc *staffing.Service, schedulerSvc *scheduler.Service, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{staffing: staffingSvc, scheduler: schedulerSvc, logger: logger}
}

// Run seeds the installation. The catalog is shared, so templates that
// already exist are reused.
func (s *Seeder) Run(ctx context.Context, installationID, actorID uuid.UUID, opts Options) (*Result, error) {
	if opts.Workers < 2 {
		return nil, domain.BadRequest("at least 2 workers are needed to form two teams")
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = "example.com"
	}
	if opts.Start.IsZero() {
		today := s.staffing.Today()
		opts.Start = today.AddDays(-((int(today.Weekday()) + 6) % 7))
	}

	result := &Result{}

	templates, err := s.ensureTemplates(ctx, installationID)
	if err != nil {
		return nil, err
	}
	result.Templates = templates
	s.logger.Info("shift templates ready", slog.Int("count", len(templates)))

	for i := 0; i < opts.Workers; i++ {
		w := utils.GenerateRandomWorker(installationID, opts.EmailDomain)
		worker, err := s.staffing.CreateWorker(ctx, installationID, staffing.CreateWorkerInput{
			FullName: w.FullName,
			Email:    w.Email,
			Role:     w.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("create worker %s: %w", w.FullName, err)
		}
		result.Workers = append(result.Workers, worker)
	}
	s.logger.Info("workers inserted", slog.Int("count", len(result.Workers)))

	// two disjoint teams so day and night never share a worker
	for i, members := range lo.Chunk(result.Workers, (len(result.Workers)+1)/2) {
		t := utils.GenerateRandomTeam(installationID, actorID)
		team, err := s.staffing.CreateTeam(ctx, installationID, actorID, staffing.CreateTeamInput{
			Name:        fmt.Sprintf("Equipe %c %s", 'A'+i, utils.GenerateRandomID(2, 4)),
			Color:       t.Color,
			Description: t.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("create team: %w", err)
		}
		for _, m := range members {
			if _, err := s.staffing.AddTeamMember(ctx, installationID, actorID, team.ID, m.ID, ""); err != nil {
				return nil, fmt.Errorf("add %s to %s: %w", m.FullName, team.Name, err)
			}
		}
		result.Teams = append(result.Teams, team)
	}
	s.logger.Info("teams inserted", slog.Int("count", len(result.Teams)))

	pattern, err := s.seedPattern(ctx, installationID, actorID, opts.Start, result)
	if err != nil {
		return nil, err
	}
	result.Pattern = pattern
	s.logger.Info("weekly pattern inserted", slog.String("id", pattern.ID.String()))

	return result, nil
}

func (s *Seeder) ensureTemplates(ctx context.Context, installationID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	existing, err := s.staffing.ListTemplates(ctx, installationID)
	if err != nil {
		return nil, err
	}
	byName := lo.KeyBy(existing, func(t *domain.ShiftTemplate) string { return t.Name })

	templates := make([]*domain.ShiftTemplate, 0, len(DefaultTemplates))
	for _, in := range DefaultTemplates {
		if t, ok := byName[in.Name]; ok {
			templates = append(templates, t)
			continue
		}
		t, err := s.staffing.CreateTemplate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create template %s: %w", in.Name, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// seedPattern alternates the teams between the 12 hour day and night shifts
// every week.
func (s *Seeder) seedPattern(ctx context.Context, installationID, actorID uuid.UUID, start domain.Date, result *Result) (*domain.WeeklyPattern, error) {
	day, ok := lo.Find(result.Templates, func(t *domain.ShiftTemplate) bool { return t.Name == "T-DIA" })
	if !ok {
		return nil, domain.NotFound("template T-DIA not found")
	}
	night, ok := lo.Find(result.Templates, func(t *domain.ShiftTemplate) bool { return t.Name == "T-NOITE" })
	if !ok {
		return nil, domain.NotFound("template T-NOITE not found")
	}

	pattern, err := s.scheduler.CreatePattern(ctx, installationID, actorID, scheduler.CreatePatternInput{
		Name:          "Escala 12x36 " + start.String(),
		Description:   "Day and night teams swap every week",
		NumberOfWeeks: 2,
		StartDate:     start,
		IsActive:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("create pattern: %w", err)
	}

	teamA, teamB := result.Teams[0].ID, result.Teams[len(result.Teams)-1].ID
	for week := int32(0); week < 2; week++ {
		dayTeam, nightTeam := teamA, teamB
		if week == 1 {
			dayTeam, nightTeam = teamB, teamA
		}
		for weekday := int32(0); weekday < 7; weekday++ {
			for _, a := range []scheduler.AssignmentInput{
				{WeekIndex: week, DayOfWeek: weekday, TemplateID: day.ID, TeamID: &dayTeam},
				{WeekIndex: week, DayOfWeek: weekday, TemplateID: night.ID, TeamID: &nightTeam},
			} {
				if _, err := s.scheduler.CreateAssignment(ctx, installationID, pattern.ID, a); err != nil {
					return nil, fmt.Errorf("create assignment: %w", err)
				}
			}
		}
	}

	return s.scheduler.GetPattern(ctx, installationID, pattern.ID)
}
