package staffing_test

import (
	"testing"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_CreateValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTemplate(f.ctx, staffing.CreateTemplateInput{
		Type: "4H", Name: "T-CURTO", StartTime: "08:00:00", EndTime: "12:00:00", DurationMinutes: 240,
	})
	assert.True(t, domain.IsBadRequest(err))

	_, err = f.svc.CreateTemplate(f.ctx, staffing.CreateTemplateInput{
		Type: domain.TemplateType6H, Name: "T-CURTO", StartTime: "08:00:00", EndTime: "12:00:00", DurationMinutes: 360,
	})
	assert.True(t, domain.IsBadRequest(err))

	_, err = f.svc.CreateTemplate(f.ctx, staffing.CreateTemplateInput{
		Type: domain.TemplateType8H, Name: "T-MANHA", StartTime: "06:00:00", EndTime: "14:00:00", DurationMinutes: 480,
	})
	assert.True(t, domain.IsConflict(err))
}

func TestTemplates_OverrideIsPerInstallation(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()

	// GIVEN an installation that renames and shifts the morning template
	name := "Manhã"
	start := "07:00:00"
	minutes := int32(420)
	merged, err := f.svc.SetOverride(f.ctx, f.inst, f.manha.ID, staffing.OverrideInput{
		Name: &name, StartTime: &start, DurationMinutes: &minutes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Manhã", merged.Name)
	assert.Equal(t, "07:00:00", merged.StartTime)
	assert.True(t, merged.Overridden)

	// THEN other installations still see the shared default
	shared, err := f.svc.GetTemplate(f.ctx, other, f.manha.ID)
	require.NoError(t, err)
	assert.Equal(t, "T-MANHA", shared.Name)
	assert.False(t, shared.Overridden)

	// WHEN the override is cleared
	require.NoError(t, f.svc.ClearOverride(f.ctx, f.inst, f.manha.ID))

	// THEN the default applies again
	got, err := f.svc.GetTemplate(f.ctx, f.inst, f.manha.ID)
	require.NoError(t, err)
	assert.Equal(t, "06:00:00", got.StartTime)

	// AND clearing twice is NotFound
	assert.True(t, domain.IsNotFound(f.svc.ClearOverride(f.ctx, f.inst, f.manha.ID)))
}

func TestTemplates_OverrideMustKeepDurationConsistent(t *testing.T) {
	f := newFixture(t)

	start := "07:00:00"
	_, err := f.svc.SetOverride(f.ctx, f.inst, f.manha.ID, staffing.OverrideInput{StartTime: &start})
	assert.True(t, domain.IsBadRequest(err))

	_, err = f.svc.SetOverride(f.ctx, f.inst, uuid.New(), staffing.OverrideInput{})
	assert.True(t, domain.IsNotFound(err))
}

func TestTemplates_UpdateSharedDefaults(t *testing.T) {
	f := newFixture(t)

	inactive := false
	order := int32(9)
	updated, err := f.svc.UpdateTemplate(f.ctx, f.inst, f.tarde.ID, staffing.UpdateTemplateInput{IsActive: &inactive, DisplayOrder: &order})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int32(9), updated.DisplayOrder)

	end := "23:00:00"
	_, err = f.svc.UpdateTemplate(f.ctx, f.inst, f.tarde.ID, staffing.UpdateTemplateInput{EndTime: &end})
	assert.True(t, domain.IsBadRequest(err))

	templates, err := f.svc.ListTemplates(f.ctx, f.inst)
	require.NoError(t, err)
	assert.Len(t, templates, 3)
	assert.Equal(t, "T-TARDE", templates[len(templates)-1].Name)
}
