package staffing

import (
	"context"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	Name        string
	Color       string
	Description string
}

func (s *Service) CreateTeam(ctx context.Context, installationID, actorID uuid.UUID, in CreateTeamInput) (*domain.Team, error) {
	team := &domain.Team{
		ID:             uuid.New(),
		InstallationID: installationID,
		Name:           in.Name,
		Color:          in.Color,
		Description:    in.Description,
		IsActive:       true,
		CreatedBy:      actorID,
		Members:        []domain.TeamMember{},
	}

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.CreateTeam(ctx, team)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return team, nil
}

// GetTeam returns the team with its active members.
func (s *Service) GetTeam(ctx context.Context, installationID, teamID uuid.UUID) (*domain.Team, error) {
	var team *domain.Team
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		team, err = q.GetTeam(ctx, installationID, teamID)
		if err != nil {
			return notFound(err, "team %s not found", teamID)
		}
		return loadTeamMembers(ctx, q, team)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return team, nil
}

func loadTeamMembers(ctx context.Context, q repository.Queries, team *domain.Team) error {
	members, err := q.ListTeamMembers(ctx, team.InstallationID, team.ID)
	if err != nil {
		return err
	}
	team.Members = make([]domain.TeamMember, 0, len(members))
	for _, m := range members {
		team.Members = append(team.Members, *m)
	}
	return nil
}

func (s *Service) ListTeams(ctx context.Context, installationID uuid.UUID) ([]*domain.Team, error) {
	var teams []*domain.Team
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		teams, err = q.ListTeams(ctx, installationID)
		if err != nil {
			return err
		}
		for _, team := range teams {
			if err := loadTeamMembers(ctx, q, team); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return teams, nil
}

type UpdateTeamInput struct {
	Name        *string
	Color       *string
	Description *string
	IsActive    *bool
}

func (s *Service) UpdateTeam(ctx context.Context, installationID, teamID uuid.UUID, in UpdateTeamInput) (*domain.Team, error) {
	var team *domain.Team
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		team, err = q.GetTeam(ctx, installationID, teamID)
		if err != nil {
			return notFound(err, "team %s not found", teamID)
		}

		if in.Name != nil {
			team.Name = *in.Name
		}
		if in.Color != nil {
			team.Color = *in.Color
		}
		if in.Description != nil {
			team.Description = *in.Description
		}
		if in.IsActive != nil {
			team.IsActive = *in.IsActive
		}

		if err := q.UpdateTeam(ctx, team); err != nil {
			return err
		}
		return loadTeamMembers(ctx, q, team)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return team, nil
}

// DeleteTeam soft-deletes the team. Shifts already staffed by it keep their
// memberships.
func (s *Service) DeleteTeam(ctx context.Context, installationID, actorID, teamID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		team, err := q.GetTeam(ctx, installationID, teamID)
		if err != nil {
			return notFound(err, "team %s not found", teamID)
		}

		now := s.now()
		team.DeletedAt = &now
		team.DeletedBy = &actorID
		team.IsActive = false
		return q.UpdateTeam(ctx, team)
	})
	return StoreError(err)
}

func (s *Service) AddTeamMember(ctx context.Context, installationID, actorID, teamID, workerID uuid.UUID, role string) (*domain.TeamMember, error) {
	if role == "" {
		role = "member"
	}

	var member *domain.TeamMember
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetTeam(ctx, installationID, teamID); err != nil {
			return notFound(err, "team %s not found", teamID)
		}
		worker, err := q.GetWorker(ctx, installationID, workerID)
		if err != nil {
			return notFound(err, "worker %s not found", workerID)
		}
		if !worker.IsActive {
			return domain.BadRequest("worker %s is inactive", worker.FullName)
		}

		member = &domain.TeamMember{
			ID:       uuid.New(),
			TeamID:   teamID,
			WorkerID: workerID,
			Role:     role,
			AddedBy:  actorID,
			Worker:   worker,
		}
		return q.AddTeamMember(ctx, member)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return member, nil
}

func (s *Service) RemoveTeamMember(ctx context.Context, installationID, actorID, teamID, workerID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetTeam(ctx, installationID, teamID); err != nil {
			return notFound(err, "team %s not found", teamID)
		}
		err := q.RemoveTeamMember(ctx, installationID, teamID, workerID, actorID, s.now())
		return notFound(err, "worker %s is not an active member of the team", workerID)
	})
	return StoreError(err)
}
