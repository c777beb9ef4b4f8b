package staffing

import (
	"context"
	"encoding/json"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/utils"
	"github.com/google/uuid"
)

// recordVersion appends one immutable history entry for the shift. The
// version number is read from the shift inside the caller's transaction, so
// it always matches the version the mutation just produced.
func recordVersion(ctx context.Context, q repository.Queries, shift *domain.Shift, actorID uuid.UUID, changeType domain.ChangeType, reason string, prev, next any) error {
	version, err := q.ShiftVersion(ctx, shift.InstallationID, shift.ID)
	if err != nil {
		return err
	}

	previousState, err := marshalState(prev)
	if err != nil {
		return err
	}
	newState, err := marshalState(next)
	if err != nil {
		return err
	}

	entry := &domain.VersionHistoryEntry{
		ID:             uuid.New(),
		InstallationID: shift.InstallationID,
		ShiftID:        shift.ID,
		VersionNumber:  version,
		ChangeType:     changeType,
		PreviousState:  previousState,
		NewState:       newState,
		ChangedFields:  utils.ChangedFields(prev, next),
		Reason:         reason,
		ActorID:        actorID,
	}
	return q.CreateVersionHistoryEntry(ctx, entry)
}

func marshalState(state any) (json.RawMessage, error) {
	if state == nil {
		return nil, nil
	}
	if m, ok := state.(map[string]any); ok && m == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

// History returns the shift's versions, newest first. Deleted shifts keep
// their history.
func (s *Service) History(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.VersionHistoryEntry, error) {
	var entries []*domain.VersionHistoryEntry
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := q.ShiftVersion(ctx, installationID, shiftID); err != nil {
			return notFound(err, "shift %s not found", shiftID)
		}

		var err error
		entries, err = q.ListVersionHistory(ctx, installationID, shiftID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return entries, nil
}

func (s *Service) Substitutions(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.Substitution, error) {
	var subs []*domain.Substitution
	err := s.store.View(ctx, func(q repository.Queries) error {
		if _, err := q.ShiftVersion(ctx, installationID, shiftID); err != nil {
			return notFound(err, "shift %s not found", shiftID)
		}

		var err error
		subs, err = q.ListSubstitutions(ctx, installationID, shiftID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return subs, nil
}
