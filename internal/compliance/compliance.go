// Package compliance answers how many workers a shift must have and whether
// the shifts of a period meet that minimum.
package compliance

import (
	"context"
	"errors"

	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MaxReportDays bounds a coverage report.
const MaxReportDays = 366

// Calculator is read-only and has no side effects.
type Calculator interface {
	MinimumRequiredWorkers(ctx context.Context, installationID uuid.UUID, date domain.Date, templateID uuid.UUID) (int, error)
	CoverageReport(ctx context.Context, installationID uuid.UUID, start, end domain.Date) ([]CoverageItem, error)
}

type CoverageItem struct {
	Shift     *domain.Shift `json:"shift"`
	Required  int           `json:"required"`
	Actual    int           `json:"actual"`
	Compliant bool          `json:"compliant"`
}

// Table looks the minimum up by template type.
type Table struct {
	store          repository.Store
	minimumByType  map[domain.TemplateType]int
	defaultMinimum int
}

var _ Calculator = (*Table)(nil)

func NewTable(store repository.Store, minimumByType map[domain.TemplateType]int, defaultMinimum int) *Table {
	return &Table{
		store:          store,
		minimumByType:  minimumByType,
		defaultMinimum: defaultMinimum,
	}
}

func NewTableFromConfig(store repository.Store, cfg *config.Config) *Table {
	byType := lo.MapKeys(cfg.Compliance.MinimumByType, func(_ int, name string) domain.TemplateType {
		return domain.TemplateType(name)
	})
	return NewTable(store, byType, cfg.Compliance.DefaultMinimum)
}

func (t *Table) required(tmpl *domain.ShiftTemplate) int {
	if n, ok := t.minimumByType[tmpl.Type]; ok {
		return n
	}
	return t.defaultMinimum
}

func (t *Table) MinimumRequiredWorkers(ctx context.Context, installationID uuid.UUID, date domain.Date, templateID uuid.UUID) (int, error) {
	if date.IsZero() {
		return 0, domain.BadRequest("date is required")
	}

	var tmpl *domain.ShiftTemplate
	err := t.store.View(ctx, func(q repository.Queries) error {
		var err error
		tmpl, err = q.GetShiftTemplate(ctx, installationID, templateID)
		return err
	})
	if errors.Is(err, repository.ErrRecordNotFound) {
		return 0, domain.NotFound("shift template %s not found", templateID)
	}
	if err != nil {
		return 0, err
	}
	return t.required(tmpl), nil
}

// CoverageReport lists every non-deleted shift between start and end
// inclusive with its required and actual headcount. Cancelled shifts are
// left out.
func (t *Table) CoverageReport(ctx context.Context, installationID uuid.UUID, start, end domain.Date) ([]CoverageItem, error) {
	if start.IsZero() || end.IsZero() {
		return nil, domain.BadRequest("start and end dates are required")
	}
	if end.Before(start) {
		return nil, domain.BadRequest("end date %s is before start date %s", end, start)
	}
	if end.DaysSince(start) >= MaxReportDays {
		return nil, domain.BadRequest("coverage reports span at most %d days", MaxReportDays)
	}

	items := make([]CoverageItem, 0)
	err := t.store.View(ctx, func(q repository.Queries) error {
		templates, err := q.ListShiftTemplates(ctx, installationID)
		if err != nil {
			return err
		}
		byID := lo.KeyBy(templates, func(tmpl *domain.ShiftTemplate) uuid.UUID { return tmpl.ID })

		shifts, err := q.ListShifts(ctx, repository.ShiftFilter{
			InstallationID: installationID,
			From:           start,
			To:             end,
		})
		if err != nil {
			return err
		}

		for _, shift := range shifts {
			if shift.Status == domain.ShiftStatusCancelled {
				continue
			}
			tmpl, ok := byID[shift.TemplateID]
			if !ok {
				continue
			}

			members, err := q.ListShiftMembers(ctx, installationID, shift.ID)
			if err != nil {
				return err
			}
			shift.Template = tmpl
			shift.Members = members

			required := t.required(tmpl)
			items = append(items, CoverageItem{
				Shift:     shift,
				Required:  required,
				Actual:    len(members),
				Compliant: len(members) >= required,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
