package memory

import (
	"context"
	"sort"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

func (t *tx) mergedTemplate(installationID uuid.UUID, base domain.ShiftTemplate) *domain.ShiftTemplate {
	var merged domain.ShiftTemplate
	if o, ok := t.state.overrides[overrideKey{installationID, base.ID}]; ok {
		merged = base.WithOverride(&o)
	} else {
		merged = base.WithOverride(nil)
	}
	return &merged
}

func (t *tx) ListShiftTemplates(_ context.Context, installationID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	templates := make([]*domain.ShiftTemplate, 0, len(t.state.templates))
	for _, base := range t.state.templates {
		templates = append(templates, t.mergedTemplate(installationID, base))
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].DisplayOrder != templates[j].DisplayOrder {
			return templates[i].DisplayOrder < templates[j].DisplayOrder
		}
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (t *tx) GetShiftTemplate(_ context.Context, installationID, templateID uuid.UUID) (*domain.ShiftTemplate, error) {
	base, ok := t.state.templates[templateID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return t.mergedTemplate(installationID, base), nil
}

func (t *tx) CreateShiftTemplate(_ context.Context, tmpl *domain.ShiftTemplate) error {
	if err := t.write(); err != nil {
		return err
	}
	for _, existing := range t.state.templates {
		if existing.Name == tmpl.Name {
			return repository.ErrTemplateNameTaken
		}
	}

	tmpl.CreatedAt = t.now()
	tmpl.Version = 1
	row := *tmpl
	row.Enabled, row.Overridden = false, false
	t.state.templates[tmpl.ID] = row
	return nil
}

func (t *tx) UpdateShiftTemplate(_ context.Context, tmpl *domain.ShiftTemplate) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.templates[tmpl.ID]
	if !ok || current.Version != tmpl.Version {
		return repository.ErrEditConflict
	}
	for id, existing := range t.state.templates {
		if id != tmpl.ID && existing.Name == tmpl.Name {
			return repository.ErrTemplateNameTaken
		}
	}

	tmpl.Version++
	row := *tmpl
	row.CreatedAt = current.CreatedAt
	row.Enabled, row.Overridden = false, false
	t.state.templates[tmpl.ID] = row
	return nil
}

func (t *tx) UpsertTemplateOverride(_ context.Context, o *domain.TemplateOverride) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.templates[o.TemplateID]; !ok {
		return repository.ErrRecordNotFound
	}

	o.UpdatedAt = t.now()
	t.state.overrides[overrideKey{o.InstallationID, o.TemplateID}] = *o
	return nil
}

func (t *tx) DeleteTemplateOverride(_ context.Context, installationID, templateID uuid.UUID) error {
	if err := t.write(); err != nil {
		return err
	}
	key := overrideKey{installationID, templateID}
	if _, ok := t.state.overrides[key]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(t.state.overrides, key)
	return nil
}

func (t *tx) CreateWorker(_ context.Context, w *domain.Worker) error {
	if err := t.write(); err != nil {
		return err
	}
	w.CreatedAt = t.now()
	w.Version = 1
	t.state.workers[w.ID] = *w
	return nil
}

func (t *tx) GetWorker(_ context.Context, installationID, workerID uuid.UUID) (*domain.Worker, error) {
	w, ok := t.state.workers[workerID]
	if !ok || w.InstallationID != installationID {
		return nil, repository.ErrRecordNotFound
	}
	return &w, nil
}

func (t *tx) ListWorkers(_ context.Context, installationID uuid.UUID) ([]*domain.Worker, error) {
	workers := make([]*domain.Worker, 0)
	for _, w := range t.state.workers {
		if w.InstallationID == installationID {
			w := w
			workers = append(workers, &w)
		}
	}
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].FullName < workers[j].FullName
	})
	return workers, nil
}

func (t *tx) UpdateWorker(_ context.Context, w *domain.Worker) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.workers[w.ID]
	if !ok || current.InstallationID != w.InstallationID || current.Version != w.Version {
		return repository.ErrEditConflict
	}

	w.Version++
	w.CreatedAt = current.CreatedAt
	t.state.workers[w.ID] = *w
	return nil
}
