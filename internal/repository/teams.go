package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

func (q *queries) CreateTeam(ctx context.Context, t *domain.Team) error {
	query := `
		INSERT INTO teams (id, installation_id, name, color, description, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{t.ID, t.InstallationID, t.Name, t.Color, t.Description, t.IsActive, t.CreatedBy}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&t.CreatedAt, &t.UpdatedAt, &t.Version); err != nil {
		return translate(err)
	}

	return nil
}

func scanTeam(row scanner) (*domain.Team, error) {
	t := &domain.Team{}
	var deletedAt sql.NullTime
	var deletedBy uuid.NullUUID

	dst := []any{
		&t.ID,
		&t.InstallationID,
		&t.Name,
		&t.Color,
		&t.Description,
		&t.IsActive,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
		&deletedAt,
		&deletedBy,
		&t.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	t.DeletedAt = timePtr(deletedAt)
	t.DeletedBy = uuidPtr(deletedBy)
	return t, nil
}

const teamColumns = `id, installation_id, name, color, description, is_active, created_by, created_at, updated_at, deleted_at, deleted_by, version`

func (q *queries) GetTeam(ctx context.Context, installationID, teamID uuid.UUID) (*domain.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE installation_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	t, err := scanTeam(q.tx.QueryRowContext(ctx, query, installationID, teamID))
	if err != nil {
		return nil, translate(err)
	}

	return t, nil
}

func (q *queries) ListTeams(ctx context.Context, installationID uuid.UUID) ([]*domain.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE installation_id = $1 AND deleted_at IS NULL
		ORDER BY name
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (q *queries) UpdateTeam(ctx context.Context, t *domain.Team) error {
	query := `
		UPDATE teams
		SET
			name = $1,
			color = $2,
			description = $3,
			is_active = $4,
			deleted_at = $5,
			deleted_by = $6,
			updated_at = NOW(),
			version = version + 1
		WHERE installation_id = $7 AND id = $8 AND version = $9
		RETURNING updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{t.Name, t.Color, t.Description, t.IsActive, t.DeletedAt, t.DeletedBy, t.InstallationID, t.ID, t.Version}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&t.UpdatedAt, &t.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return translate(err)
	}

	return nil
}

func (q *queries) ListTeamMembers(ctx context.Context, installationID, teamID uuid.UUID) ([]*domain.TeamMember, error) {
	query := `
		SELECT
			tm.id,
			tm.worker_id,
			tm.role,
			tm.added_by,
			tm.added_at,
			w.full_name,
			w.email,
			w.role,
			w.is_active,
			w.created_at,
			w.version
		FROM team_members tm
		JOIN workers w ON w.id = tm.worker_id
		WHERE tm.installation_id = $1 AND tm.team_id = $2 AND tm.removed_at IS NULL
		ORDER BY tm.added_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.TeamMember, 0)
	for rows.Next() {
		m := &domain.TeamMember{
			TeamID: teamID,
			Worker: &domain.Worker{InstallationID: installationID},
		}
		dst := []any{
			&m.ID,
			&m.WorkerID,
			&m.Role,
			&m.AddedBy,
			&m.AddedAt,
			&m.Worker.FullName,
			&m.Worker.Email,
			&m.Worker.Role,
			&m.Worker.IsActive,
			&m.Worker.CreatedAt,
			&m.Worker.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		m.Worker.ID = m.WorkerID
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (q *queries) AddTeamMember(ctx context.Context, m *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (id, installation_id, team_id, worker_id, role, added_by)
		SELECT $1, t.installation_id, t.id, $3, $4, $5
		FROM teams t WHERE t.id = $2
		RETURNING added_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{m.ID, m.TeamID, m.WorkerID, m.Role, m.AddedBy}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&m.AddedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) RemoveTeamMember(ctx context.Context, installationID, teamID, workerID, actorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE team_members
		SET removed_at = $1, removed_by = $2
		WHERE installation_id = $3 AND team_id = $4 AND worker_id = $5 AND removed_at IS NULL
	`

	return q.execOne(ctx, query, at, actorID, installationID, teamID, workerID)
}
