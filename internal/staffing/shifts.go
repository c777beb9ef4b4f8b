package staffing

import (
	"context"
	"errors"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/metrics"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CreateShiftInput struct {
	Date        domain.Date
	TemplateID  uuid.UUID
	TeamID      *uuid.UUID
	Notes       string
	FromPattern bool
	PatternID   *uuid.UUID
	Reason      string
}

// CreateShift creates version 1 of a shift. With a team, the team's active
// members are attached in the same transaction and the shift is CONFIRMED.
func (s *Service) CreateShift(ctx context.Context, installationID, actorID uuid.UUID, in CreateShiftInput) (*domain.Shift, error) {
	if in.Date.IsZero() {
		return nil, domain.BadRequest("shift date is required")
	}

	var shift *domain.Shift
	var events []notification

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		events = nil

		tmpl, err := q.GetShiftTemplate(ctx, installationID, in.TemplateID)
		if err != nil {
			return notFound(err, "shift template %s not found", in.TemplateID)
		}
		if !tmpl.IsActive || !tmpl.Enabled {
			return domain.BadRequest("shift template %s is disabled", tmpl.Name)
		}

		if _, err := q.FindShift(ctx, installationID, in.Date, in.TemplateID); err == nil {
			return domain.Conflict("a shift already exists on %s for template %s", in.Date, tmpl.Name)
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}

		shift = &domain.Shift{
			ID:             uuid.New(),
			InstallationID: installationID,
			Date:           in.Date,
			TemplateID:     in.TemplateID,
			Status:         domain.ShiftStatusScheduled,
			Notes:          in.Notes,
			FromPattern:    in.FromPattern,
			PatternID:      in.PatternID,
			CreatedBy:      actorID,
			UpdatedBy:      actorID,
			Members:        []domain.ShiftMember{},
		}

		var team *domain.Team
		if in.TeamID != nil {
			team, err = loadActiveTeam(ctx, q, installationID, *in.TeamID)
			if err != nil {
				return err
			}
			shift.TeamID = &team.ID
			shift.Status = domain.ShiftStatusConfirmed
		}

		if err := q.CreateShift(ctx, shift); err != nil {
			return err
		}

		if team != nil {
			added, err := s.attachTeamMembers(ctx, q, shift, team, actorID)
			if err != nil {
				return err
			}
			events = added
		}

		shift.Template = tmpl
		return recordVersion(ctx, q, shift, actorID, domain.ChangeCreate, in.Reason, nil, shift.Snapshot())
	})
	if err != nil {
		return nil, StoreError(err)
	}

	metrics.ShiftMutations.WithLabelValues(string(domain.ChangeCreate)).Inc()
	s.notify(ctx, shift, in.Reason, events)
	return shift, nil
}

func (s *Service) GetShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error) {
	var shift *domain.Shift
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		shift, err = q.GetShift(ctx, installationID, shiftID)
		if err != nil {
			return notFound(err, "shift %s not found", shiftID)
		}
		return loadShiftDetails(ctx, q, shift)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return shift, nil
}

type ListShiftsInput struct {
	From       domain.Date
	To         domain.Date
	TemplateID *uuid.UUID
	TeamID     *uuid.UUID
}

// ListShifts returns shifts with their override-merged template and active
// members.
func (s *Service) ListShifts(ctx context.Context, installationID uuid.UUID, in ListShiftsInput) ([]*domain.Shift, error) {
	if !in.From.IsZero() && !in.To.IsZero() && in.To.Before(in.From) {
		return nil, domain.BadRequest("end date must not be before the start date")
	}

	var shifts []*domain.Shift
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		shifts, err = q.ListShifts(ctx, repository.ShiftFilter{
			InstallationID: installationID,
			From:           in.From,
			To:             in.To,
			TemplateID:     in.TemplateID,
			TeamID:         in.TeamID,
		})
		if err != nil {
			return err
		}

		templates, err := q.ListShiftTemplates(ctx, installationID)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(templates, func(t *domain.ShiftTemplate) uuid.UUID { return t.ID })

		for _, shift := range shifts {
			shift.Template = byID[shift.TemplateID]
			shift.Members, err = q.ListShiftMembers(ctx, installationID, shift.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return shifts, nil
}

type UpdateShiftInput struct {
	Status *domain.ShiftStatus
	Notes  *string
	// Version, when set, must match the stored version.
	Version *int32
	Reason  string
}

func (s *Service) UpdateShift(ctx context.Context, installationID, actorID, shiftID uuid.UUID, in UpdateShiftInput) (*domain.Shift, error) {
	if in.Status != nil && !lo.Contains(domain.ShiftStatuses, *in.Status) {
		return nil, domain.BadRequest("unknown shift status %s", *in.Status)
	}

	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeUpdate, in.Reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			if in.Version != nil && *in.Version != shift.Version {
				return nil, domain.Conflict("shift was modified (version %d), reload and retry", shift.Version)
			}
			if in.Status != nil {
				shift.Status = *in.Status
			}
			if in.Notes != nil {
				shift.Notes = *in.Notes
			}
			return nil, nil
		})
	return shift, err
}

// DeleteShift tombstones the shift and its active memberships.
func (s *Service) DeleteShift(ctx context.Context, installationID, actorID, shiftID uuid.UUID, reason string) error {
	_, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeDelete, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			now := s.now()
			events, err := s.removeAllMembers(ctx, q, shift, actorID, now)
			if err != nil {
				return nil, err
			}
			shift.DeletedAt = &now
			shift.DeletedBy = &actorID
			return events, nil
		})
	return err
}

// loadShiftDetails fills in the override-merged template and active members.
func loadShiftDetails(ctx context.Context, q repository.Queries, shift *domain.Shift) error {
	tmpl, err := q.GetShiftTemplate(ctx, shift.InstallationID, shift.TemplateID)
	if err != nil {
		return err
	}
	shift.Template = tmpl

	shift.Members, err = q.ListShiftMembers(ctx, shift.InstallationID, shift.ID)
	return err
}

type mutateFunc func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error)

// mutateShift runs fn against the locked shift and commits the change together
// with the version bump and its history entry.
func (s *Service) mutateShift(ctx context.Context, installationID, actorID, shiftID uuid.UUID, changeType domain.ChangeType, reason string, fn mutateFunc) (*domain.Shift, []notification, error) {
	var shift *domain.Shift
	var events []notification

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		shift, err = q.LockShift(ctx, installationID, shiftID)
		if err != nil {
			return notFound(err, "shift %s not found", shiftID)
		}
		if err := loadShiftDetails(ctx, q, shift); err != nil {
			return err
		}
		prev := shift.Snapshot()

		events, err = fn(ctx, q, shift)
		if err != nil {
			return err
		}

		shift.UpdatedBy = actorID
		if err := q.UpdateShift(ctx, shift); err != nil {
			return err
		}

		shift.Members, err = q.ListShiftMembers(ctx, installationID, shiftID)
		if err != nil {
			return err
		}

		return recordVersion(ctx, q, shift, actorID, changeType, reason, prev, shift.Snapshot())
	})
	if err != nil {
		return nil, nil, StoreError(err)
	}

	metrics.ShiftMutations.WithLabelValues(string(changeType)).Inc()
	s.notify(ctx, shift, reason, events)
	return shift, events, nil
}

func (s *Service) removeAllMembers(ctx context.Context, q repository.Queries, shift *domain.Shift, actorID uuid.UUID, at time.Time) ([]notification, error) {
	events := make([]notification, 0, len(shift.Members))
	for _, m := range shift.Members {
		if m.RemovedAt != nil {
			continue
		}
		if err := q.RemoveShiftMember(ctx, shift.InstallationID, m.ID, actorID, at); err != nil {
			return nil, err
		}
		if m.Worker != nil {
			events = append(events, notification{worker: m.Worker, removed: true})
		}
	}
	shift.Members = []domain.ShiftMember{}
	return events, nil
}
