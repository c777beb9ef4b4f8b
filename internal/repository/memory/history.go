package memory

import (
	"context"
	"sort"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

func (t *tx) CreateSubstitution(_ context.Context, s *domain.Substitution) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.shifts[s.ShiftID]; !ok {
		return repository.ErrRecordNotFound
	}

	s.CreatedAt = t.now()
	t.state.substitutions = append(t.state.substitutions, *s)
	return nil
}

func (t *tx) ListSubstitutions(_ context.Context, installationID, shiftID uuid.UUID) ([]*domain.Substitution, error) {
	subs := make([]*domain.Substitution, 0)
	// newest first
	for i := len(t.state.substitutions) - 1; i >= 0; i-- {
		s := t.state.substitutions[i]
		if s.InstallationID == installationID && s.ShiftID == shiftID {
			subs = append(subs, &s)
		}
	}
	return subs, nil
}

func (t *tx) CreateVersionHistoryEntry(_ context.Context, e *domain.VersionHistoryEntry) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.shifts[e.ShiftID]; !ok {
		return repository.ErrRecordNotFound
	}
	for _, existing := range t.state.history {
		if existing.ShiftID == e.ShiftID && existing.VersionNumber == e.VersionNumber {
			return repository.ErrHistoryVersionTaken
		}
	}

	e.CreatedAt = t.now()
	row := *e
	row.ChangedFields = append([]string{}, e.ChangedFields...)
	t.state.history = append(t.state.history, row)
	return nil
}

func (t *tx) ListVersionHistory(_ context.Context, installationID, shiftID uuid.UUID) ([]*domain.VersionHistoryEntry, error) {
	entries := make([]*domain.VersionHistoryEntry, 0)
	for _, e := range t.state.history {
		if e.InstallationID == installationID && e.ShiftID == shiftID {
			e := e
			entries = append(entries, &e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].VersionNumber > entries[j].VersionNumber
	})
	return entries, nil
}
