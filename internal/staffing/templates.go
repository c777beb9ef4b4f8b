package staffing

import (
	"context"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var templateTypes = []domain.TemplateType{
	domain.TemplateType6H,
	domain.TemplateType8H,
	domain.TemplateType12H,
	domain.TemplateTypeCustom,
}

func (s *Service) ListTemplates(ctx context.Context, installationID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	var templates []*domain.ShiftTemplate
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		templates, err = q.ListShiftTemplates(ctx, installationID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return templates, nil
}

func (s *Service) GetTemplate(ctx context.Context, installationID, templateID uuid.UUID) (*domain.ShiftTemplate, error) {
	var tmpl *domain.ShiftTemplate
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		tmpl, err = q.GetShiftTemplate(ctx, installationID, templateID)
		return notFound(err, "shift template %s not found", templateID)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return tmpl, nil
}

type CreateTemplateInput struct {
	Type            domain.TemplateType
	Name            string
	StartTime       string
	EndTime         string
	DurationMinutes int32
	DisplayOrder    int32
}

// CreateTemplate adds a template shared by every installation.
func (s *Service) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*domain.ShiftTemplate, error) {
	if !lo.Contains(templateTypes, in.Type) {
		return nil, domain.BadRequest("unknown template type %s", in.Type)
	}

	tmpl := &domain.ShiftTemplate{
		ID:              uuid.New(),
		Type:            in.Type,
		Name:            in.Name,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: in.DurationMinutes,
		IsActive:        true,
		DisplayOrder:    in.DisplayOrder,
	}
	if err := utils.ValidateTemplateTimes(tmpl); err != nil {
		return nil, domain.BadRequest("%s", err.Error())
	}

	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.CreateShiftTemplate(ctx, tmpl)
	})
	if err != nil {
		return nil, StoreError(err)
	}

	merged := tmpl.WithOverride(nil)
	return &merged, nil
}

type UpdateTemplateInput struct {
	Type            *domain.TemplateType
	Name            *string
	StartTime       *string
	EndTime         *string
	DurationMinutes *int32
	IsActive        *bool
	DisplayOrder    *int32
}

// UpdateTemplate changes the shared defaults. Templates are never deleted,
// only deactivated.
func (s *Service) UpdateTemplate(ctx context.Context, installationID, templateID uuid.UUID, in UpdateTemplateInput) (*domain.ShiftTemplate, error) {
	if in.Type != nil && !lo.Contains(templateTypes, *in.Type) {
		return nil, domain.BadRequest("unknown template type %s", *in.Type)
	}

	var tmpl *domain.ShiftTemplate
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		// uuid.Nil owns no overrides, so this reads the shared defaults
		base, err := q.GetShiftTemplate(ctx, uuid.Nil, templateID)
		if err != nil {
			return notFound(err, "shift template %s not found", templateID)
		}

		if in.Type != nil {
			base.Type = *in.Type
		}
		if in.Name != nil {
			base.Name = *in.Name
		}
		if in.StartTime != nil {
			base.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			base.EndTime = *in.EndTime
		}
		if in.DurationMinutes != nil {
			base.DurationMinutes = *in.DurationMinutes
		}
		if in.IsActive != nil {
			base.IsActive = *in.IsActive
		}
		if in.DisplayOrder != nil {
			base.DisplayOrder = *in.DisplayOrder
		}
		if err := utils.ValidateTemplateTimes(base); err != nil {
			return domain.BadRequest("%s", err.Error())
		}

		if err := q.UpdateShiftTemplate(ctx, base); err != nil {
			return err
		}

		tmpl, err = q.GetShiftTemplate(ctx, installationID, templateID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return tmpl, nil
}

type OverrideInput struct {
	Name            *string
	StartTime       *string
	EndTime         *string
	DurationMinutes *int32
	Enabled         *bool
}

// SetOverride customizes a template for one installation, replacing any
// previous override.
func (s *Service) SetOverride(ctx context.Context, installationID, templateID uuid.UUID, in OverrideInput) (*domain.ShiftTemplate, error) {
	override := &domain.TemplateOverride{
		InstallationID:  installationID,
		TemplateID:      templateID,
		Name:            in.Name,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: in.DurationMinutes,
		Enabled:         in.Enabled == nil || *in.Enabled,
	}

	var tmpl *domain.ShiftTemplate
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		base, err := q.GetShiftTemplate(ctx, uuid.Nil, templateID)
		if err != nil {
			return notFound(err, "shift template %s not found", templateID)
		}
		if err := utils.ValidateTemplateOverride(base, override); err != nil {
			return domain.BadRequest("%s", err.Error())
		}

		if err := q.UpsertTemplateOverride(ctx, override); err != nil {
			return err
		}

		tmpl, err = q.GetShiftTemplate(ctx, installationID, templateID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return tmpl, nil
}

func (s *Service) ClearOverride(ctx context.Context, installationID, templateID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		err := q.DeleteTemplateOverride(ctx, installationID, templateID)
		return notFound(err, "shift template %s has no override for this installation", templateID)
	})
	return StoreError(err)
}
