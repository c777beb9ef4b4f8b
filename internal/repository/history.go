package repository

import (
	"context"
	"encoding/json"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

func (q *queries) CreateSubstitution(ctx context.Context, s *domain.Substitution) error {
	query := `
		INSERT INTO shift_substitutions (id, installation_id, shift_id, type, reason, original_team_id, new_team_id, original_worker_id, new_worker_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{
		s.ID,
		s.InstallationID,
		s.ShiftID,
		s.Type,
		s.Reason,
		s.OriginalTeamID,
		s.NewTeamID,
		s.OriginalWorkerID,
		s.NewWorkerID,
		s.ActorID,
	}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&s.CreatedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) ListSubstitutions(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.Substitution, error) {
	query := `
		SELECT id, type, reason, original_team_id, new_team_id, original_worker_id, new_worker_id, actor_id, created_at
		FROM shift_substitutions
		WHERE installation_id = $1 AND shift_id = $2
		ORDER BY created_at DESC
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]*domain.Substitution, 0)
	for rows.Next() {
		s := &domain.Substitution{InstallationID: installationID, ShiftID: shiftID}
		var originalTeam, newTeam, originalWorker, newWorker uuid.NullUUID

		dst := []any{&s.ID, &s.Type, &s.Reason, &originalTeam, &newTeam, &originalWorker, &newWorker, &s.ActorID, &s.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		s.OriginalTeamID = uuidPtr(originalTeam)
		s.NewTeamID = uuidPtr(newTeam)
		s.OriginalWorkerID = uuidPtr(originalWorker)
		s.NewWorkerID = uuidPtr(newWorker)
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subs, nil
}

func (q *queries) CreateVersionHistoryEntry(ctx context.Context, e *domain.VersionHistoryEntry) error {
	query := `
		INSERT INTO shift_version_history (id, installation_id, shift_id, version_number, change_type, previous_state, new_state, changed_fields, reason, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	fields := e.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	changedFields, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	params := []any{
		e.ID,
		e.InstallationID,
		e.ShiftID,
		e.VersionNumber,
		e.ChangeType,
		jsonParam(e.PreviousState),
		jsonParam(e.NewState),
		string(changedFields),
		e.Reason,
		e.ActorID,
	}
	if err := q.tx.QueryRowContext(ctx, query, params...).Scan(&e.CreatedAt); err != nil {
		return translate(err)
	}

	return nil
}

func (q *queries) ListVersionHistory(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.VersionHistoryEntry, error) {
	query := `
		SELECT id, version_number, change_type, previous_state, new_state, changed_fields, reason, actor_id, created_at
		FROM shift_version_history
		WHERE installation_id = $1 AND shift_id = $2
		ORDER BY version_number DESC
	`

	ctx, cancel := q.timeout(ctx)
	defer cancel()

	rows, err := q.tx.QueryContext(ctx, query, installationID, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.VersionHistoryEntry, 0)
	for rows.Next() {
		e := &domain.VersionHistoryEntry{InstallationID: installationID, ShiftID: shiftID}
		var previous, next []byte
		var changedFields []byte

		dst := []any{&e.ID, &e.VersionNumber, &e.ChangeType, &previous, &next, &changedFields, &e.Reason, &e.ActorID, &e.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if previous != nil {
			e.PreviousState = json.RawMessage(previous)
		}
		if next != nil {
			e.NewState = json.RawMessage(next)
		}
		if err := json.Unmarshal(changedFields, &e.ChangedFields); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// jsonParam maps an empty state to SQL NULL.
func jsonParam(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
