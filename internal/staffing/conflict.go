package staffing

import (
	"context"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/metrics"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// HasConflict reports whether the worker already holds an active membership
// on another non-deleted shift on date. The rule is one shift per worker per
// calendar day, whatever the team.
func (s *Service) HasConflict(ctx context.Context, installationID, workerID uuid.UUID, date domain.Date, excludingShiftID *uuid.UUID) (bool, error) {
	var conflict uuid.UUID
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		conflict, err = q.FindConflictingShift(ctx, installationID, workerID, date, excludingShiftID)
		return err
	})
	if err != nil {
		return false, err
	}
	return conflict != uuid.Nil, nil
}

// checkConflict is the authoritative check. It runs inside the transaction
// that adds the membership.
func checkConflict(ctx context.Context, q repository.Queries, shift *domain.Shift, worker *domain.Worker) error {
	conflictID, err := q.FindConflictingShift(ctx, shift.InstallationID, worker.ID, shift.Date, &shift.ID)
	if err != nil {
		return err
	}
	if conflictID != uuid.Nil {
		metrics.ConflictsRejected.Inc()
		return &domain.SchedulingConflictError{
			WorkerID:        worker.ID,
			WorkerName:      worker.FullName,
			Date:            shift.Date,
			ConflictShiftID: conflictID,
		}
	}
	return nil
}

// addMember inserts the membership and keeps shift.Members in step. The unique
// index on active memberships per worker and day is the backstop for
// checkConflict.
func addMember(ctx context.Context, q repository.Queries, shift *domain.Shift, worker *domain.Worker, fromTeam bool, actorID uuid.UUID) error {
	if err := checkConflict(ctx, q, shift, worker); err != nil {
		return err
	}

	m := &domain.ShiftMember{
		ID:         uuid.New(),
		ShiftID:    shift.ID,
		WorkerID:   worker.ID,
		FromTeam:   fromTeam,
		ShiftDate:  shift.Date,
		AssignedBy: actorID,
		Worker:     worker,
	}
	if err := q.AddShiftMember(ctx, shift.InstallationID, m); err != nil {
		if errors.Is(err, repository.ErrWorkerDayBooked) {
			metrics.ConflictsRejected.Inc()
			return &domain.SchedulingConflictError{
				WorkerID:   worker.ID,
				WorkerName: worker.FullName,
				Date:       shift.Date,
			}
		}
		return err
	}

	shift.Members = append(shift.Members, *m)
	return nil
}

// loadEligibleWorker returns the worker when it exists, is active and holds
// an eligible role.
func (s *Service) loadEligibleWorker(ctx context.Context, q repository.Queries, installationID, workerID uuid.UUID) (*domain.Worker, error) {
	worker, err := q.GetWorker(ctx, installationID, workerID)
	if err != nil {
		return nil, notFound(err, "worker %s not found", workerID)
	}
	if !worker.IsActive {
		return nil, domain.BadRequest("worker %s is inactive", worker.FullName)
	}
	if !lo.Contains(s.eligibleRoles, worker.Role) {
		return nil, domain.BadRequest("worker %s has role %s, which cannot be assigned to shifts", worker.FullName, worker.Role)
	}
	return worker, nil
}

func loadActiveTeam(ctx context.Context, q repository.Queries, installationID, teamID uuid.UUID) (*domain.Team, error) {
	team, err := q.GetTeam(ctx, installationID, teamID)
	if err != nil {
		return nil, notFound(err, "team %s not found", teamID)
	}
	if !team.IsActive {
		return nil, domain.BadRequest("team %s is inactive", team.Name)
	}
	return team, nil
}
