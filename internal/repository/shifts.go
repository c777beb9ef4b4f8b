package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

const shiftColumns = `
	id,
	installation_id,
	shift_date,
	template_id,
	team_id,
	status,
	notes,
	version,
	from_pattern,
	pattern_id,
	created_by,
	updated_by,
	created_at,
	updated_at,
	deleted_at,
	deleted_by
`

func scanShift(row scanner) (*domain.Shift, error) {
	s := &domain.Shift{}
	var teamID, patternID, deletedBy uuid.NullUUID
	var deletedAt sql.NullTime

	dst := []any{
		&s.ID,
		&s.InstallationID,
		&s.Date,
		&s.TemplateID,
		&teamID,
		&s.Status,
		&s.Notes,
		&s.Version,
		&s.FromPattern,
		&patternID,
		&s.CreatedBy,
		&s.UpdatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
		&deletedAt,
		&deletedBy,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	s.TeamID = uuidPtr(teamID)
	s.PatternID = uuidPtr(patternID)
	s.DeletedAt = timePtr(deletedAt)
	s.DeletedBy = uuidPtr(deletedBy)
	return s, nil
}

func (q *queries) CreateShift(ctx context.Context, s *domain.Shift) error {
	query := `
		INSERT INTO shifts (id, installation_id, shift_date, template_id, team_id, status, notes, from_pattern, pattern_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{
		s.ID,
		s.InstallationID,
		s.Date,
		s.TemplateID,
		s.TeamID,
		s.Status,
		s.Notes,
		s.FromPattern,
		s.PatternID,
		s.CreatedBy,
		s.UpdatedBy,
	}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&s.CreatedAt, &s.UpdatedAt, &s.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) GetShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error) {
	return q.getShift(ctx, installationID, shiftID, false)
}

func (q *queries) LockShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error) {
	return q.getShift(ctx, installationID, shiftID, true)
}

func (q *queries) getShift(ctx context.Context, installationID, shiftID uuid.UUID, forUpdate bool) (*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE installation_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	s, err := scanShift(q.tx.QueryRowContext(ctx, query, installationID, shiftID))
	if err != nil {
		return nil, translate(err)
	}

	return s, nil
}

func (q *queries) FindShift(ctx context.Context, installationID uuid.UUID, date domain.Date, templateID uuid.UUID) (*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE installation_id = $1 AND shift_date = $2 AND template_id = $3 AND deleted_at IS NULL
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	s, err := scanShift(q.tx.QueryRowContext(ctx, query, installationID, date, templateID))
	if err != nil {
		return nil, translate(err)
	}

	return s, nil
}

func (q *queries) ListShifts(ctx context.Context, filter ShiftFilter) ([]*domain.Shift, error) {
	conditions := []string{"installation_id = $1", "deleted_at IS NULL"}
	args := []any{filter.InstallationID}

	addCondition := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if !filter.From.IsZero() {
		addCondition("shift_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addCondition("shift_date <= $%d", filter.To)
	}
	if filter.TemplateID != nil {
		addCondition("template_id = $%d", *filter.TemplateID)
	}
	if filter.TeamID != nil {
		addCondition("team_id = $%d", *filter.TeamID)
	}

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY shift_date, created_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (q *queries) UpdateShift(ctx context.Context, s *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			team_id = $1,
			status = $2,
			notes = $3,
			updated_by = $4,
			updated_at = NOW(),
			deleted_at = $5,
			deleted_by = $6,
			version = version + 1
		WHERE installation_id = $7 AND id = $8 AND version = $9
		RETURNING updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{s.TeamID, s.Status, s.Notes, s.UpdatedBy, s.DeletedAt, s.DeletedBy, s.InstallationID, s.ID, s.Version}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&s.UpdatedAt, &s.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return translate(err)
	}

	return nil
}

func (q *queries) ShiftVersion(ctx context.Context, installationID, shiftID uuid.UUID) (int32, error) {
	query := `SELECT version FROM shifts WHERE installation_id = $1 AND id = $2`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	var version int32
	if err := q.tx.QueryRowContext(ctx, query, installationID, shiftID).Scan(&version); err != nil {
		return 0, translate(err)
	}

	return version, nil
}

func (q *queries) ListShiftMembers(ctx context.Context, installationID, shiftID uuid.UUID) ([]domain.ShiftMember, error) {
	query := `
		SELECT
			sm.id,
			sm.worker_id,
			sm.from_team,
			sm.shift_date,
			sm.assigned_by,
			sm.assigned_at,
			w.full_name,
			w.email,
			w.role,
			w.is_active,
			w.created_at,
			w.version
		FROM shift_members sm
		JOIN workers w ON w.id = sm.worker_id
		WHERE sm.installation_id = $1 AND sm.shift_id = $2 AND sm.removed_at IS NULL
		ORDER BY sm.assigned_at, w.full_name
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.ShiftMember, 0)
	for rows.Next() {
		m := domain.ShiftMember{
			ShiftID: shiftID,
			Worker:  &domain.Worker{InstallationID: installationID},
		}
		dst := []any{
			&m.ID,
			&m.WorkerID,
			&m.FromTeam,
			&m.ShiftDate,
			&m.AssignedBy,
			&m.AssignedAt,
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

func (q *queries) AddShiftMember(ctx context.Context, installationID uuid.UUID, m *domain.ShiftMember) error {
	query := `
		INSERT INTO shift_members (id, installation_id, shift_id, worker_id, shift_date, from_team, assigned_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING assigned_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{m.ID, installationID, m.ShiftID, m.WorkerID, m.ShiftDate, m.FromTeam, m.AssignedBy}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&m.AssignedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) RemoveShiftMember(ctx context.Context, installationID, memberID, actorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE shift_members
		SET removed_at = $1, removed_by = $2
		WHERE installation_id = $3 AND id = $4 AND removed_at IS NULL
	`

	return q.execOne(ctx, query, at, actorID, installationID, memberID)
}

func (q *queries) FindConflictingShift(ctx context.Context, installationID, workerID uuid.UUID, date domain.Date, excludingShiftID *uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT sm.shift_id
		FROM shift_members sm
		JOIN shifts s ON s.id = sm.shift_id
		WHERE sm.installation_id = $1
			AND sm.worker_id = $2
			AND sm.shift_date = $3
			AND sm.removed_at IS NULL
			AND s.deleted_at IS NULL
			AND ($4::uuid IS NULL OR sm.shift_id <> $4)
		LIMIT 1
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	var shiftID uuid.UUID
	err := q.tx.QueryRowContext(ctx, query, installationID, workerID, date, excludingShiftID).Scan(&shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	return shiftID, nil
}
