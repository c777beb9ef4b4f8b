package scheduler

import (
	"context"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/carehome-dev/care-shift/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CreatePatternInput struct {
	Name          string
	Description   string
	NumberOfWeeks int32
	StartDate     domain.Date
	EndDate       *domain.Date
	IsActive      bool
}

// CreatePattern stores a new pattern. An active pattern deactivates every
// other pattern of the installation.
func (s *Service) CreatePattern(ctx context.Context, installationID, actorID uuid.UUID, in CreatePatternInput) (*domain.WeeklyPattern, error) {
	pattern := &domain.WeeklyPattern{
		ID:             uuid.New(),
		InstallationID: installationID,
		Name:           in.Name,
		Description:    in.Description,
		NumberOfWeeks:  in.NumberOfWeeks,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		IsActive:       in.IsActive,
		CreatedBy:      actorID,
		Assignments:    []domain.PatternAssignment{},
	}
	if err := utils.ValidatePatternDates(pattern); err != nil {
		return nil, domain.BadRequest("%s", err.Error())
	}

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if pattern.IsActive {
			if err := q.DeactivatePatterns(ctx, installationID, pattern.ID); err != nil {
				return err
			}
		}
		return q.CreatePattern(ctx, pattern)
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return pattern, nil
}

func (s *Service) ListPatterns(ctx context.Context, installationID uuid.UUID) ([]*domain.WeeklyPattern, error) {
	var patterns []*domain.WeeklyPattern
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		patterns, err = q.ListPatterns(ctx, installationID)
		return err
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return patterns, nil
}

// GetPattern returns the pattern with its assignments.
func (s *Service) GetPattern(ctx context.Context, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error) {
	var pattern *domain.WeeklyPattern
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		pattern, err = loadPattern(ctx, q, installationID, patternID)
		if err != nil {
			return err
		}
		return loadAssignments(ctx, q, pattern)
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return pattern, nil
}

func loadPattern(ctx context.Context, q repository.Queries, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error) {
	pattern, err := q.GetPattern(ctx, installationID, patternID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, domain.NotFound("weekly pattern %s not found", patternID)
	}
	return pattern, err
}

func loadAssignments(ctx context.Context, q repository.Queries, pattern *domain.WeeklyPattern) error {
	assignments, err := q.ListPatternAssignments(ctx, pattern.ID)
	if err != nil {
		return err
	}
	pattern.Assignments = lo.Map(assignments, func(a *domain.PatternAssignment, _ int) domain.PatternAssignment { return *a })
	return nil
}

type UpdatePatternInput struct {
	Name          *string
	Description   *string
	NumberOfWeeks *int32
	StartDate     *domain.Date
	EndDate       *domain.Date
	ClearEndDate  bool
	IsActive      *bool
}

func (s *Service) UpdatePattern(ctx context.Context, installationID, patternID uuid.UUID, in UpdatePatternInput) (*domain.WeeklyPattern, error) {
	var pattern *domain.WeeklyPattern
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		pattern, err = loadPattern(ctx, q, installationID, patternID)
		if err != nil {
			return err
		}
		if err := loadAssignments(ctx, q, pattern); err != nil {
			return err
		}

		if in.Name != nil {
			pattern.Name = *in.Name
		}
		if in.Description != nil {
			pattern.Description = *in.Description
		}
		if in.NumberOfWeeks != nil {
			pattern.NumberOfWeeks = *in.NumberOfWeeks
		}
		if in.StartDate != nil {
			pattern.StartDate = *in.StartDate
		}
		if in.EndDate != nil {
			pattern.EndDate = in.EndDate
		}
		if in.ClearEndDate {
			pattern.EndDate = nil
		}
		if in.IsActive != nil {
			pattern.IsActive = *in.IsActive
		}

		if err := utils.ValidatePatternDates(pattern); err != nil {
			return domain.BadRequest("%s", err.Error())
		}
		for _, a := range pattern.Assignments {
			if a.WeekIndex >= pattern.NumberOfWeeks {
				return domain.BadRequest("an assignment uses week %d, which a %d-week pattern does not have", a.WeekIndex, pattern.NumberOfWeeks)
			}
		}

		if pattern.IsActive {
			if err := q.DeactivatePatterns(ctx, installationID, pattern.ID); err != nil {
				return err
			}
		}
		return q.UpdatePattern(ctx, pattern)
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return pattern, nil
}

// ActivatePattern makes the pattern the one generation reads from.
func (s *Service) ActivatePattern(ctx context.Context, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error) {
	active := true
	return s.UpdatePattern(ctx, installationID, patternID, UpdatePatternInput{IsActive: &active})
}

// DeletePattern soft-deletes the pattern. Shifts already generated from it
// are kept.
func (s *Service) DeletePattern(ctx context.Context, installationID, patternID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		pattern, err := loadPattern(ctx, q, installationID, patternID)
		if err != nil {
			return err
		}

		now := s.shifts.Now()
		pattern.DeletedAt = &now
		pattern.IsActive = false
		return q.UpdatePattern(ctx, pattern)
	})
	return staffing.StoreError(err)
}

type AssignmentInput struct {
	WeekIndex  int32
	DayOfWeek  int32
	TemplateID uuid.UUID
	TeamID     *uuid.UUID
}

func (s *Service) CreateAssignment(ctx context.Context, installationID, patternID uuid.UUID, in AssignmentInput) (*domain.PatternAssignment, error) {
	assignment := &domain.PatternAssignment{
		ID:         uuid.New(),
		PatternID:  patternID,
		WeekIndex:  in.WeekIndex,
		DayOfWeek:  in.DayOfWeek,
		TemplateID: in.TemplateID,
		TeamID:     in.TeamID,
	}

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		pattern, err := loadPattern(ctx, q, installationID, patternID)
		if err != nil {
			return err
		}
		if err := utils.ValidatePatternAssignment(pattern, assignment); err != nil {
			return domain.BadRequest("%s", err.Error())
		}
		if err := checkAssignmentRefs(ctx, q, installationID, assignment); err != nil {
			return err
		}
		return q.CreatePatternAssignment(ctx, assignment)
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return assignment, nil
}

func checkAssignmentRefs(ctx context.Context, q repository.Queries, installationID uuid.UUID, a *domain.PatternAssignment) error {
	if _, err := q.GetShiftTemplate(ctx, installationID, a.TemplateID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return domain.NotFound("shift template %s not found", a.TemplateID)
		}
		return err
	}
	if a.TeamID != nil {
		if _, err := q.GetTeam(ctx, installationID, *a.TeamID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return domain.NotFound("team %s not found", *a.TeamID)
			}
			return err
		}
	}
	return nil
}

func (s *Service) ListAssignments(ctx context.Context, installationID, patternID uuid.UUID) ([]*domain.PatternAssignment, error) {
	var assignments []*domain.PatternAssignment
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := loadPattern(ctx, q, installationID, patternID); err != nil {
			return err
		}

		var err error
		assignments, err = q.ListPatternAssignments(ctx, patternID)
		return err
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return assignments, nil
}

// UpdateAssignment changes the team the assignment staffs its shifts with. A
// nil team leaves generated shifts unstaffed.
func (s *Service) UpdateAssignment(ctx context.Context, installationID, patternID, assignmentID uuid.UUID, teamID *uuid.UUID) (*domain.PatternAssignment, error) {
	var assignment *domain.PatternAssignment
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := loadPattern(ctx, q, installationID, patternID); err != nil {
			return err
		}

		var err error
		assignment, err = q.GetPatternAssignment(ctx, patternID, assignmentID)
		if errors.Is(err, repository.ErrRecordNotFound) {
			return domain.NotFound("pattern assignment %s not found", assignmentID)
		}
		if err != nil {
			return err
		}

		assignment.TeamID = teamID
		if err := checkAssignmentRefs(ctx, q, installationID, assignment); err != nil {
			return err
		}
		return q.UpdatePatternAssignment(ctx, assignment)
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}
	return assignment, nil
}

func (s *Service) DeleteAssignment(ctx context.Context, installationID, patternID, assignmentID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := loadPattern(ctx, q, installationID, patternID); err != nil {
			return err
		}

		err := q.DeletePatternAssignment(ctx, patternID, assignmentID)
		if errors.Is(err, repository.ErrRecordNotFound) {
			return domain.NotFound("pattern assignment %s not found", assignmentID)
		}
		return err
	})
	return staffing.StoreError(err)
}
