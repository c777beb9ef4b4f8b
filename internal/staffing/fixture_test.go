package staffing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository/memory"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	assigned []string
	removed  []string
}

func (n *recordingNotifier) ShiftAssigned(_ context.Context, w *domain.Worker, _ *domain.Shift, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, w.FullName)
	return nil
}

func (n *recordingNotifier) ShiftRemoved(_ context.Context, w *domain.Worker, _ *domain.Shift, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, w.FullName)
	return nil
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	svc      *staffing.Service
	notifier *recordingNotifier
	inst     uuid.UUID
	actor    uuid.UUID
	manha    *domain.ShiftTemplate
	tarde    *domain.ShiftTemplate
	noite    *domain.ShiftTemplate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	inst := &domain.Installation{Name: "Residencial Teste", IsActive: true}
	store.AddInstallation(inst)

	notifier := &recordingNotifier{}
	svc := staffing.NewService(store, staffing.Options{
		EligibleRoles: []domain.Role{domain.RoleCaregiver, domain.RoleNurse, domain.RoleNursingTechnician, domain.RoleNursingAssistant},
		BypassRoles:   []domain.Role{domain.RoleNurse, domain.RoleNursingCoordinator, domain.RoleTechnicalManager},
		GraceAfterEnd: 30 * time.Minute,
		Location:      time.UTC,
		Notifier:      notifier,
	})

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		svc:      svc,
		notifier: notifier,
		inst:     inst.ID,
		actor:    uuid.New(),
	}
	f.manha = f.template("T-MANHA", domain.TemplateType8H, "06:00:00", "14:00:00", 480)
	f.tarde = f.template("T-TARDE", domain.TemplateType8H, "14:00:00", "22:00:00", 480)
	f.noite = f.template("T-NOITE", domain.TemplateType12H, "19:00:00", "07:00:00", 720)
	return f
}

func (f *fixture) template(name string, typ domain.TemplateType, start, end string, minutes int32) *domain.ShiftTemplate {
	f.t.Helper()
	tmpl, err := f.svc.CreateTemplate(f.ctx, staffing.CreateTemplateInput{
		Type:            typ,
		Name:            name,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: minutes,
	})
	require.NoError(f.t, err)
	return tmpl
}

func (f *fixture) worker(name string, role domain.Role) *domain.Worker {
	f.t.Helper()
	w, err := f.svc.CreateWorker(f.ctx, f.inst, staffing.CreateWorkerInput{
		FullName: name,
		Email:    name + "@example.com",
		Role:     role,
	})
	require.NoError(f.t, err)
	return w
}

func (f *fixture) team(name string, workers ...*domain.Worker) *domain.Team {
	f.t.Helper()
	team, err := f.svc.CreateTeam(f.ctx, f.inst, f.actor, staffing.CreateTeamInput{Name: name, Color: "#2E86AB"})
	require.NoError(f.t, err)
	for _, w := range workers {
		_, err := f.svc.AddTeamMember(f.ctx, f.inst, f.actor, team.ID, w.ID, "")
		require.NoError(f.t, err)
	}
	return team
}

func (f *fixture) shift(date domain.Date, tmpl *domain.ShiftTemplate) *domain.Shift {
	f.t.Helper()
	shift, err := f.svc.CreateShift(f.ctx, f.inst, f.actor, staffing.CreateShiftInput{
		Date:       date,
		TemplateID: tmpl.ID,
	})
	require.NoError(f.t, err)
	return shift
}

func (f *fixture) setStatus(shift *domain.Shift, status domain.ShiftStatus) *domain.Shift {
	f.t.Helper()
	updated, err := f.svc.UpdateShift(f.ctx, f.inst, f.actor, shift.ID, staffing.UpdateShiftInput{Status: &status})
	require.NoError(f.t, err)
	return updated
}

func (f *fixture) history(shiftID uuid.UUID) []*domain.VersionHistoryEntry {
	f.t.Helper()
	entries, err := f.svc.History(f.ctx, f.inst, shiftID)
	require.NoError(f.t, err)
	return entries
}

func memberIDs(shift *domain.Shift) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(shift.Members))
	for _, m := range shift.Members {
		ids = append(ids, m.WorkerID)
	}
	return ids
}

var march10 = domain.NewDate(2025, time.March, 10)
