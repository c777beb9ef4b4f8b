package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

const patternColumns = `id, installation_id, name, description, number_of_weeks, start_date, end_date, is_active, created_by, created_at, updated_at, deleted_at, version`

func scanPattern(row scanner) (*domain.WeeklyPattern, error) {
	p := &domain.WeeklyPattern{}
	var endDate domain.Date
	var deletedAt sql.NullTime

	dst := []any{
		&p.ID,
		&p.InstallationID,
		&p.Name,
		&p.Description,
		&p.NumberOfWeeks,
		&p.StartDate,
		&endDate,
		&p.IsActive,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&deletedAt,
		&p.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if !endDate.IsZero() {
		p.EndDate = &endDate
	}
	p.DeletedAt = timePtr(deletedAt)
	return p, nil
}

func (q *queries) CreatePattern(ctx context.Context, p *domain.WeeklyPattern) error {
	query := `
		INSERT INTO weekly_patterns (id, installation_id, name, description, number_of_weeks, start_date, end_date, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{p.ID, p.InstallationID, p.Name, p.Description, p.NumberOfWeeks, p.StartDate, p.EndDate, p.IsActive, p.CreatedBy}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) GetPattern(ctx context.Context, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM weekly_patterns
		WHERE installation_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	p, err := scanPattern(q.tx.QueryRowContext(ctx, query, installationID, patternID))
	if err != nil {
		return nil, translate(err)
	}

	return p, nil
}

func (q *queries) GetActivePattern(ctx context.Context, installationID uuid.UUID) (*domain.WeeklyPattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM weekly_patterns
		WHERE installation_id = $1 AND is_active AND deleted_at IS NULL
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	p, err := scanPattern(q.tx.QueryRowContext(ctx, query, installationID))
	if err != nil {
		return nil, translate(err)
	}

	return p, nil
}

func (q *queries) ListPatterns(ctx context.Context, installationID uuid.UUID) ([]*domain.WeeklyPattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM weekly_patterns
		WHERE installation_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := make([]*domain.WeeklyPattern, 0)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

func (q *queries) UpdatePattern(ctx context.Context, p *domain.WeeklyPattern) error {
	query := `
		UPDATE weekly_patterns
		SET
			name = $1,
			description = $2,
			number_of_weeks = $3,
			start_date = $4,
			end_date = $5,
			is_active = $6,
			deleted_at = $7,
			updated_at = NOW(),
			version = version + 1
		WHERE installation_id = $8 AND id = $9 AND version = $10
		RETURNING updated_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{
		p.Name,
		p.Description,
		p.NumberOfWeeks,
		p.StartDate,
		p.EndDate,
		p.IsActive,
		p.DeletedAt,
		p.InstallationID,
		p.ID,
		p.Version,
	}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&p.UpdatedAt, &p.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return translate(err)
	}

	return nil
}

func (q *queries) DeactivatePatterns(ctx context.Context, installationID uuid.UUID, keepID uuid.UUID) error {
	query := `
		UPDATE weekly_patterns
		SET is_active = FALSE, updated_at = NOW(), version = version + 1
		WHERE installation_id = $1 AND id <> $2 AND is_active
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	_, err := q.tx.ExecContext(ctx, query, installationID, keepID)
	return translate(err)
}

func (q *queries) CreatePatternAssignment(ctx context.Context, a *domain.PatternAssignment) error {
	query := `
		INSERT INTO weekly_pattern_assignments (id, pattern_id, week_index, day_of_week, template_id, team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{a.ID, a.PatternID, a.WeekIndex, a.DayOfWeek, a.TemplateID, a.TeamID}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&a.CreatedAt); err != nil {
		return translate(err)
	}

	return nil
}

func scanAssignment(row scanner) (*domain.PatternAssignment, error) {
	a := &domain.PatternAssignment{}
	var teamID uuid.NullUUID

	dst := []any{&a.ID, &a.PatternID, &a.WeekIndex, &a.DayOfWeek, &a.TemplateID, &teamID, &a.CreatedAt}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	a.TeamID = uuidPtr(teamID)
	return a, nil
}

func (q *queries) GetPatternAssignment(ctx context.Context, patternID, assignmentID uuid.UUID) (*domain.PatternAssignment, error) {
	query := `
		SELECT id, pattern_id, week_index, day_of_week, template_id, team_id, created_at
		FROM weekly_pattern_assignments
		WHERE pattern_id = $1 AND id = $2
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	a, err := scanAssignment(q.tx.QueryRowContext(ctx, query, patternID, assignmentID))
	if err != nil {
		return nil, translate(err)
	}

	return a, nil
}

func (q *queries) ListPatternAssignments(ctx context.Context, patternID uuid.UUID) ([]*domain.PatternAssignment, error) {
	query := `
		SELECT id, pattern_id, week_index, day_of_week, template_id, team_id, created_at
		FROM weekly_pattern_assignments
		WHERE pattern_id = $1
		ORDER BY week_index, day_of_week, created_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, patternID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.PatternAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (q *queries) UpdatePatternAssignment(ctx context.Context, a *domain.PatternAssignment) error {
	query := `
		UPDATE weekly_pattern_assignments
		SET week_index = $1, day_of_week = $2, template_id = $3, team_id = $4
		WHERE pattern_id = $5 AND id = $6
	`

	return q.execOne(ctx, query, a.WeekIndex, a.DayOfWeek, a.TemplateID, a.TeamID, a.PatternID, a.ID)
}

func (q *queries) DeletePatternAssignment(ctx context.Context, patternID, assignmentID uuid.UUID) error {
	query := `DELETE FROM weekly_pattern_assignments WHERE pattern_id = $1 AND id = $2`

	return q.execOne(ctx, query, patternID, assignmentID)
}
