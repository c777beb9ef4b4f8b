package memory

import (
	"context"
	"sort"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

func (t *tx) activePatternTaken(p *domain.WeeklyPattern) bool {
	if !p.IsActive || p.DeletedAt != nil {
		return false
	}
	for id, existing := range t.state.patterns {
		if id != p.ID && existing.InstallationID == p.InstallationID &&
			existing.IsActive && existing.DeletedAt == nil {
			return true
		}
	}
	return false
}

func (t *tx) CreatePattern(_ context.Context, p *domain.WeeklyPattern) error {
	if err := t.write(); err != nil {
		return err
	}
	if t.activePatternTaken(p) {
		return repository.ErrActivePatternExists
	}

	now := t.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1
	row := *p
	row.Assignments = nil
	t.state.patterns[p.ID] = row
	return nil
}

func (t *tx) GetPattern(_ context.Context, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error) {
	p, ok := t.state.patterns[patternID]
	if !ok || p.InstallationID != installationID || p.DeletedAt != nil {
		return nil, repository.ErrRecordNotFound
	}
	return &p, nil
}

func (t *tx) GetActivePattern(_ context.Context, installationID uuid.UUID) (*domain.WeeklyPattern, error) {
	for _, p := range t.state.patterns {
		if p.InstallationID == installationID && p.IsActive && p.DeletedAt == nil {
			return &p, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (t *tx) ListPatterns(_ context.Context, installationID uuid.UUID) ([]*domain.WeeklyPattern, error) {
	patterns := make([]*domain.WeeklyPattern, 0)
	for _, p := range t.state.patterns {
		if p.InstallationID == installationID && p.DeletedAt == nil {
			p := p
			patterns = append(patterns, &p)
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if !patterns[i].CreatedAt.Equal(patterns[j].CreatedAt) {
			return patterns[i].CreatedAt.After(patterns[j].CreatedAt)
		}
		return patterns[i].ID.String() < patterns[j].ID.String()
	})
	return patterns, nil
}

func (t *tx) UpdatePattern(_ context.Context, p *domain.WeeklyPattern) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.patterns[p.ID]
	if !ok || current.InstallationID != p.InstallationID || current.Version != p.Version {
		return repository.ErrEditConflict
	}
	if t.activePatternTaken(p) {
		return repository.ErrActivePatternExists
	}

	p.Version++
	p.UpdatedAt = t.now()
	row := *p
	row.CreatedAt = current.CreatedAt
	row.CreatedBy = current.CreatedBy
	row.Assignments = nil
	t.state.patterns[p.ID] = row
	return nil
}

func (t *tx) DeactivatePatterns(_ context.Context, installationID uuid.UUID, keepID uuid.UUID) error {
	if err := t.write(); err != nil {
		return err
	}
	for id, p := range t.state.patterns {
		if id == keepID || p.InstallationID != installationID || !p.IsActive {
			continue
		}
		p.IsActive = false
		p.UpdatedAt = t.now()
		p.Version++
		t.state.patterns[id] = p
	}
	return nil
}

func (t *tx) slotTaken(a *domain.PatternAssignment) bool {
	for id, existing := range t.state.assignments {
		if id != a.ID && existing.PatternID == a.PatternID && existing.WeekIndex == a.WeekIndex &&
			existing.DayOfWeek == a.DayOfWeek && existing.TemplateID == a.TemplateID {
			return true
		}
	}
	return false
}

func (t *tx) CreatePatternAssignment(_ context.Context, a *domain.PatternAssignment) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.patterns[a.PatternID]; !ok {
		return repository.ErrRecordNotFound
	}
	if t.slotTaken(a) {
		return repository.ErrDuplicatePatternAssignment
	}

	a.CreatedAt = t.now()
	t.state.assignments[a.ID] = *a
	return nil
}

func (t *tx) GetPatternAssignment(_ context.Context, patternID, assignmentID uuid.UUID) (*domain.PatternAssignment, error) {
	a, ok := t.state.assignments[assignmentID]
	if !ok || a.PatternID != patternID {
		return nil, repository.ErrRecordNotFound
	}
	return &a, nil
}

func (t *tx) ListPatternAssignments(_ context.Context, patternID uuid.UUID) ([]*domain.PatternAssignment, error) {
	assignments := make([]*domain.PatternAssignment, 0)
	for _, a := range t.state.assignments {
		if a.PatternID == patternID {
			a := a
			assignments = append(assignments, &a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		x, y := assignments[i], assignments[j]
		if x.WeekIndex != y.WeekIndex {
			return x.WeekIndex < y.WeekIndex
		}
		if x.DayOfWeek != y.DayOfWeek {
			return x.DayOfWeek < y.DayOfWeek
		}
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.Before(y.CreatedAt)
		}
		return x.ID.String() < y.ID.String()
	})
	return assignments, nil
}

func (t *tx) UpdatePatternAssignment(_ context.Context, a *domain.PatternAssignment) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.assignments[a.ID]
	if !ok || current.PatternID != a.PatternID {
		return repository.ErrRecordNotFound
	}
	if t.slotTaken(a) {
		return repository.ErrDuplicatePatternAssignment
	}

	a.CreatedAt = current.CreatedAt
	t.state.assignments[a.ID] = *a
	return nil
}

func (t *tx) DeletePatternAssignment(_ context.Context, patternID, assignmentID uuid.UUID) error {
	if err := t.write(); err != nil {
		return err
	}
	a, ok := t.state.assignments[assignmentID]
	if !ok || a.PatternID != patternID {
		return repository.ErrRecordNotFound
	}
	delete(t.state.assignments, assignmentID)
	return nil
}
