package memory

import (
	"context"
	"sort"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

func (t *tx) teamNameTaken(team *domain.Team) bool {
	if team.DeletedAt != nil {
		return false
	}
	for id, existing := range t.state.teams {
		if id != team.ID && existing.InstallationID == team.InstallationID &&
			existing.DeletedAt == nil && existing.Name == team.Name {
			return true
		}
	}
	return false
}

func (t *tx) CreateTeam(_ context.Context, team *domain.Team) error {
	if err := t.write(); err != nil {
		return err
	}
	if t.teamNameTaken(team) {
		return repository.ErrTeamNameTaken
	}

	now := t.now()
	team.CreatedAt = now
	team.UpdatedAt = now
	team.Version = 1
	row := *team
	row.Members = nil
	t.state.teams[team.ID] = row
	return nil
}

func (t *tx) GetTeam(_ context.Context, installationID, teamID uuid.UUID) (*domain.Team, error) {
	team, ok := t.state.teams[teamID]
	if !ok || team.InstallationID != installationID || team.DeletedAt != nil {
		return nil, repository.ErrRecordNotFound
	}
	return &team, nil
}

func (t *tx) ListTeams(_ context.Context, installationID uuid.UUID) ([]*domain.Team, error) {
	teams := make([]*domain.Team, 0)
	for _, team := range t.state.teams {
		if team.InstallationID == installationID && team.DeletedAt == nil {
			team := team
			teams = append(teams, &team)
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].Name < teams[j].Name
	})
	return teams, nil
}

func (t *tx) UpdateTeam(_ context.Context, team *domain.Team) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.teams[team.ID]
	if !ok || current.InstallationID != team.InstallationID || current.Version != team.Version {
		return repository.ErrEditConflict
	}
	if t.teamNameTaken(team) {
		return repository.ErrTeamNameTaken
	}

	team.Version++
	team.UpdatedAt = t.now()
	row := *team
	row.CreatedAt = current.CreatedAt
	row.CreatedBy = current.CreatedBy
	row.Members = nil
	t.state.teams[team.ID] = row
	return nil
}

func (t *tx) ListTeamMembers(_ context.Context, installationID, teamID uuid.UUID) ([]*domain.TeamMember, error) {
	members := make([]*domain.TeamMember, 0)
	for _, row := range t.state.teamMembers {
		if row.InstallationID != installationID || row.TeamID != teamID || row.RemovedAt != nil {
			continue
		}
		m := row.TeamMember
		if w, ok := t.state.workers[m.WorkerID]; ok {
			m.Worker = &w
		}
		members = append(members, &m)
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].AddedAt.Equal(members[j].AddedAt) {
			return members[i].AddedAt.Before(members[j].AddedAt)
		}
		return members[i].ID.String() < members[j].ID.String()
	})
	return members, nil
}

func (t *tx) AddTeamMember(_ context.Context, m *domain.TeamMember) error {
	if err := t.write(); err != nil {
		return err
	}
	team, ok := t.state.teams[m.TeamID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	for _, row := range t.state.teamMembers {
		if row.TeamID == m.TeamID && row.WorkerID == m.WorkerID && row.RemovedAt == nil {
			return repository.ErrTeamMemberExists
		}
	}

	m.AddedAt = t.now()
	row := teamMemberRow{InstallationID: team.InstallationID, TeamMember: *m}
	row.Worker = nil
	t.state.teamMembers[m.ID] = row
	return nil
}

func (t *tx) RemoveTeamMember(_ context.Context, installationID, teamID, workerID, actorID uuid.UUID, at time.Time) error {
	if err := t.write(); err != nil {
		return err
	}
	for id, row := range t.state.teamMembers {
		if row.InstallationID == installationID && row.TeamID == teamID &&
			row.WorkerID == workerID && row.RemovedAt == nil {
			removedAt, removedBy := at, actorID
			row.RemovedAt = &removedAt
			row.RemovedBy = &removedBy
			t.state.teamMembers[id] = row
			return nil
		}
	}
	return repository.ErrRecordNotFound
}
