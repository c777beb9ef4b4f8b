package staffing

import (
	"context"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// attachTeamMembers adds every active member of the team to the shift, tagged
// as coming from the team. Inactive workers, roles outside the eligible
// whitelist and workers already on the shift are skipped. A member booked
// elsewhere that day aborts the whole assignment.
func (s *Service) attachTeamMembers(ctx context.Context, q repository.Queries, shift *domain.Shift, team *domain.Team, actorID uuid.UUID) ([]notification, error) {
	members, err := q.ListTeamMembers(ctx, shift.InstallationID, team.ID)
	if err != nil {
		return nil, err
	}

	events := make([]notification, 0, len(members))
	for _, m := range members {
		if m.Worker == nil || !m.Worker.IsActive || !lo.Contains(s.eligibleRoles, m.Worker.Role) {
			continue
		}
		if shift.ActiveMember(m.WorkerID) != nil {
			continue
		}
		if err := addMember(ctx, q, shift, m.Worker, true, actorID); err != nil {
			return nil, err
		}
		events = append(events, notification{worker: m.Worker})
	}
	return events, nil
}

// AssignTeam puts a team on a shift that has none and confirms it.
func (s *Service) AssignTeam(ctx context.Context, installationID, actorID, shiftID, teamID uuid.UUID, reason string) (*domain.Shift, error) {
	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeTeamAssignment, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			if shift.TeamID != nil {
				return nil, domain.BadRequest("shift on %s already has a team, substitute it instead", shift.Date)
			}

			team, err := loadActiveTeam(ctx, q, installationID, teamID)
			if err != nil {
				return nil, err
			}

			shift.TeamID = &team.ID
			shift.Status = domain.ShiftStatusConfirmed
			return s.attachTeamMembers(ctx, q, shift, team, actorID)
		})
	return shift, err
}

// SubstituteTeam replaces the shift's whole team. originalTeamID must match
// the team currently on the shift.
func (s *Service) SubstituteTeam(ctx context.Context, installationID, actorID, shiftID, originalTeamID, newTeamID uuid.UUID, reason string) (*domain.Shift, error) {
	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeTeamSubstitution, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			if shift.TeamID == nil || *shift.TeamID != originalTeamID {
				return nil, domain.BadRequest("team %s is not the team currently assigned to the shift on %s", originalTeamID, shift.Date)
			}
			if newTeamID == originalTeamID {
				return nil, domain.BadRequest("the new team must differ from the original team")
			}

			team, err := loadActiveTeam(ctx, q, installationID, newTeamID)
			if err != nil {
				return nil, err
			}

			removed, err := s.removeAllMembers(ctx, q, shift, actorID, s.now())
			if err != nil {
				return nil, err
			}

			shift.TeamID = &team.ID
			shift.Status = domain.ShiftStatusConfirmed

			sub := &domain.Substitution{
				ID:             uuid.New(),
				InstallationID: installationID,
				ShiftID:        shift.ID,
				Type:           domain.SubstitutionTeamReplacement,
				Reason:         reason,
				OriginalTeamID: &originalTeamID,
				NewTeamID:      &team.ID,
				ActorID:        actorID,
			}
			if err := q.CreateSubstitution(ctx, sub); err != nil {
				return nil, err
			}

			added, err := s.attachTeamMembers(ctx, q, shift, team, actorID)
			if err != nil {
				return nil, err
			}
			return append(removed, added...), nil
		})
	return shift, err
}

// SubstituteMember swaps one worker on the shift for another.
func (s *Service) SubstituteMember(ctx context.Context, installationID, actorID, shiftID, originalWorkerID, newWorkerID uuid.UUID, reason string) (*domain.Shift, error) {
	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeMemberSubstitution, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			original := shift.ActiveMember(originalWorkerID)
			if original == nil {
				return nil, domain.BadRequest("worker %s is not an active member of the shift on %s", originalWorkerID, shift.Date)
			}

			worker, err := s.loadEligibleWorker(ctx, q, installationID, newWorkerID)
			if err != nil {
				return nil, err
			}
			if shift.ActiveMember(worker.ID) != nil {
				return nil, domain.Conflict("worker %s is already a member of this shift", worker.FullName)
			}
			if err := checkConflict(ctx, q, shift, worker); err != nil {
				return nil, err
			}

			if err := q.RemoveShiftMember(ctx, installationID, original.ID, actorID, s.now()); err != nil {
				return nil, err
			}
			originalWorker := original.Worker
			shift.Members = removeMember(shift.Members, original.ID)

			if err := addMember(ctx, q, shift, worker, false, actorID); err != nil {
				return nil, err
			}

			sub := &domain.Substitution{
				ID:               uuid.New(),
				InstallationID:   installationID,
				ShiftID:          shift.ID,
				Type:             domain.SubstitutionMemberReplacement,
				Reason:           reason,
				OriginalWorkerID: &originalWorkerID,
				NewWorkerID:      &worker.ID,
				ActorID:          actorID,
			}
			if err := q.CreateSubstitution(ctx, sub); err != nil {
				return nil, err
			}

			events := []notification{{worker: worker}}
			if originalWorker != nil {
				events = append(events, notification{worker: originalWorker, removed: true})
			}
			return events, nil
		})
	return shift, err
}

// AddMember adds a single worker to the shift outside of any team.
func (s *Service) AddMember(ctx context.Context, installationID, actorID, shiftID, workerID uuid.UUID, reason string) (*domain.Shift, error) {
	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeMemberAddition, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			worker, err := s.loadEligibleWorker(ctx, q, installationID, workerID)
			if err != nil {
				return nil, err
			}
			if shift.ActiveMember(worker.ID) != nil {
				return nil, domain.Conflict("worker %s is already a member of this shift", worker.FullName)
			}

			if err := addMember(ctx, q, shift, worker, false, actorID); err != nil {
				return nil, err
			}

			sub := &domain.Substitution{
				ID:             uuid.New(),
				InstallationID: installationID,
				ShiftID:        shift.ID,
				Type:           domain.SubstitutionMemberAddition,
				Reason:         reason,
				NewWorkerID:    &worker.ID,
				ActorID:        actorID,
			}
			if err := q.CreateSubstitution(ctx, sub); err != nil {
				return nil, err
			}

			return []notification{{worker: worker}}, nil
		})
	return shift, err
}

// RemoveMember tombstones the worker's active membership on the shift.
func (s *Service) RemoveMember(ctx context.Context, installationID, actorID, shiftID, workerID uuid.UUID, reason string) (*domain.Shift, error) {
	shift, _, err := s.mutateShift(ctx, installationID, actorID, shiftID, domain.ChangeMemberRemoval, reason,
		func(ctx context.Context, q repository.Queries, shift *domain.Shift) ([]notification, error) {
			member := shift.ActiveMember(workerID)
			if member == nil {
				return nil, domain.BadRequest("worker %s is not an active member of the shift on %s", workerID, shift.Date)
			}

			if err := q.RemoveShiftMember(ctx, installationID, member.ID, actorID, s.now()); err != nil {
				return nil, err
			}
			worker := member.Worker
			shift.Members = removeMember(shift.Members, member.ID)

			if worker == nil {
				return nil, nil
			}
			return []notification{{worker: worker, removed: true}}, nil
		})
	return shift, err
}

func removeMember(members []domain.ShiftMember, memberID uuid.UUID) []domain.ShiftMember {
	out := make([]domain.ShiftMember, 0, len(members))
	for _, m := range members {
		if m.ID != memberID {
			out = append(out, m)
		}
	}
	return out
}
