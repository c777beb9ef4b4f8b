package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

func (q *queries) CreateWorker(ctx context.Context, w *domain.Worker) error {
	query := `
		INSERT INTO workers (id, installation_id, full_name, email, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{w.ID, w.InstallationID, w.FullName, w.Email, w.Role, w.IsActive}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&w.CreatedAt, &w.Version); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) GetWorker(ctx context.Context, installationID, workerID uuid.UUID) (*domain.Worker, error) {
	query := `
		SELECT full_name, email, role, is_active, created_at, version
		FROM workers WHERE installation_id = $1 AND id = $2
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	w := &domain.Worker{
		ID:             workerID,
		InstallationID: installationID,
	}

	dst := []any{&w.FullName, &w.Email, &w.Role, &w.IsActive, &w.CreatedAt, &w.Version}
	if err := q.tx.QueryRowContext(ctx, query, installationID, workerID).Scan(dst...); err != nil {
		return nil, translate(err)
	}

	return w, nil
}

func (q *queries) ListWorkers(ctx context.Context, installationID uuid.UUID) ([]*domain.Worker, error) {
	query := `
		SELECT id, full_name, email, role, is_active, created_at, version
		FROM workers WHERE installation_id = $1
		ORDER BY full_name
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]*domain.Worker, 0)
	for rows.Next() {
		w := &domain.Worker{InstallationID: installationID}
		dst := []any{&w.ID, &w.FullName, &w.Email, &w.Role, &w.IsActive, &w.CreatedAt, &w.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workers, nil
}

func (q *queries) UpdateWorker(ctx context.Context, w *domain.Worker) error {
	query := `
		UPDATE workers
		SET
			full_name = $1,
			email = $2,
			role = $3,
			is_active = $4,
			version = version + 1
		WHERE installation_id = $5 AND id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{w.FullName, w.Email, w.Role, w.IsActive, w.InstallationID, w.ID, w.Version}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&w.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEditConflict
		}
		return translate(err)
	}

	return nil
}
