package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

const templateColumns = `
	st.id,
	st.type,
	st.name,
	to_char(st.start_time, 'HH24:MI:SS'),
	to_char(st.end_time, 'HH24:MI:SS'),
	st.duration_minutes,
	st.is_active,
	st.display_order,
	st.created_at,
	st.version,
	o.template_id,
	o.name,
	to_char(o.start_time, 'HH24:MI:SS'),
	to_char(o.end_time, 'HH24:MI:SS'),
	o.duration_minutes,
	o.enabled,
	o.updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner, installationID uuid.UUID) (*domain.ShiftTemplate, error) {
	var t domain.ShiftTemplate
	var o struct {
		TemplateID      uuid.NullUUID
		Name            sql.NullString
		StartTime       sql.NullString
		EndTime         sql.NullString
		DurationMinutes sql.NullInt32
		Enabled         sql.NullBool
		UpdatedAt       sql.NullTime
	}

	dst := []any{
		&t.ID,
		&t.Type,
		&t.Name,
		&t.StartTime,
		&t.EndTime,
		&t.DurationMinutes,
		&t.IsActive,
		&t.DisplayOrder,
		&t.CreatedAt,
		&t.Version,
		&o.TemplateID,
		&o.Name,
		&o.StartTime,
		&o.EndTime,
		&o.DurationMinutes,
		&o.Enabled,
		&o.UpdatedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	// no override row for this installation
	if !o.TemplateID.Valid {
		merged := t.WithOverride(nil)
		return &merged, nil
	}

	override := &domain.TemplateOverride{
		InstallationID: installationID,
		TemplateID:     t.ID,
		Enabled:        o.Enabled.Bool,
		UpdatedAt:      o.UpdatedAt.Time,
	}
	if o.Name.Valid {
		override.Name = &o.Name.String
	}
	if o.StartTime.Valid {
		override.StartTime = &o.StartTime.String
	}
	if o.EndTime.Valid {
		override.EndTime = &o.EndTime.String
	}
	if o.DurationMinutes.Valid {
		override.DurationMinutes = &o.DurationMinutes.Int32
	}

	merged := t.WithOverride(override)
	return &merged, nil
}

func (q *queries) ListShiftTemplates(ctx context.Context, installationID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM shift_templates st
		LEFT JOIN shift_template_overrides o ON o.template_id = st.id AND o.installation_id = $1
		ORDER BY st.display_order, st.name
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.ShiftTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows, installationID)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (q *queries) GetShiftTemplate(ctx context.Context, installationID, templateID uuid.UUID) (*domain.ShiftTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM shift_templates st
		LEFT JOIN shift_template_overrides o ON o.template_id = st.id AND o.installation_id = $1
		WHERE st.id = $2
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	t, err := scanTemplate(q.tx.QueryRowContext(ctx, query, installationID, templateID), installationID)
	if err != nil {
		return nil, translate(err)
	}

	return t, nil
}

func (q *queries) CreateShiftTemplate(ctx context.Context, t *domain.ShiftTemplate) error {
	query := `
		INSERT INTO shift_templates (id, type, name, start_time, end_time, duration_minutes, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{t.ID, t.Type, t.Name, t.StartTime, t.EndTime, t.DurationMinutes, t.IsActive, t.DisplayOrder}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&t.CreatedAt, &t.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) UpdateShiftTemplate(ctx context.Context, t *domain.ShiftTemplate) error {
	query := `
		UPDATE shift_templates
		SET
			type = $1,
			name = $2,
			start_time = $3,
			end_time = $4,
			duration_minutes = $5,
			is_active = $6,
			display_order = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{t.Type, t.Name, t.StartTime, t.EndTime, t.DurationMinutes, t.IsActive, t.DisplayOrder, t.ID, t.Version}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&t.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return translate(err)
	}

	return nil
}

func (q *queries) UpsertTemplateOverride(ctx context.Context, o *domain.TemplateOverride) error {
	query := `
		INSERT INTO shift_template_overrides (installation_id, template_id, name, start_time, end_time, duration_minutes, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (installation_id, template_id) DO UPDATE
		SET
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			duration_minutes = EXCLUDED.duration_minutes,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
		RETURNING updated_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{o.InstallationID, o.TemplateID, o.Name, o.StartTime, o.EndTime, o.DurationMinutes, o.Enabled}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&o.UpdatedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) DeleteTemplateOverride(ctx context.Context, installationID, templateID uuid.UUID) error {
	query := `
		DELETE FROM shift_template_overrides WHERE installation_id = $1 AND template_id = $2
	`

	return q.execOne(ctx, query, installationID, templateID)
}
