package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march10 = domain.NewDate(2025, time.March, 10)

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	inst   uuid.UUID
	tmpl   uuid.UUID
	worker uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	inst := &domain.Installation{Name: "Residencial Teste", IsActive: true}
	store.AddInstallation(inst)

	f := &fixture{ctx: context.Background(), store: store, inst: inst.ID, tmpl: uuid.New(), worker: uuid.New()}
	err := store.WithTx(f.ctx, func(q repository.Queries) error {
		if err := q.CreateShiftTemplate(f.ctx, &domain.ShiftTemplate{
			ID: f.tmpl, Type: domain.TemplateType8H, Name: "T-MANHA",
			StartTime: "06:00:00", EndTime: "14:00:00", DurationMinutes: 480, IsActive: true,
		}); err != nil {
			return err
		}
		return q.CreateWorker(f.ctx, &domain.Worker{
			ID: f.worker, InstallationID: f.inst, FullName: "Ana Souza", Role: domain.RoleCaregiver, IsActive: true,
		})
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) createShift(t *testing.T, date domain.Date) *domain.Shift {
	t.Helper()

	shift := &domain.Shift{
		ID: uuid.New(), InstallationID: f.inst, Date: date, TemplateID: f.tmpl, Status: domain.ShiftStatusScheduled,
	}
	require.NoError(t, f.store.WithTx(f.ctx, func(q repository.Queries) error {
		return q.CreateShift(f.ctx, shift)
	}))
	return shift
}

func (f *fixture) addMember(shift *domain.Shift) error {
	return f.store.WithTx(f.ctx, func(q repository.Queries) error {
		return q.AddShiftMember(f.ctx, f.inst, &domain.ShiftMember{
			ID: uuid.New(), ShiftID: shift.ID, WorkerID: f.worker, ShiftDate: shift.Date,
		})
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")

	// WHEN a transaction writes and then fails
	err := f.store.WithTx(f.ctx, func(q repository.Queries) error {
		if err := q.CreateShift(f.ctx, &domain.Shift{ID: uuid.New(), InstallationID: f.inst, Date: march10, TemplateID: f.tmpl}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// THEN nothing it wrote is visible
	err = f.store.View(f.ctx, func(q repository.Queries) error {
		shifts, err := q.ListShifts(f.ctx, repository.ShiftFilter{InstallationID: f.inst})
		assert.Empty(t, shifts)
		return err
	})
	require.NoError(t, err)

	// AND the slot is still free
	f.createShift(t, march10)
}

func TestViewIsReadOnly(t *testing.T) {
	f := newFixture(t)

	err := f.store.View(f.ctx, func(q repository.Queries) error {
		return q.CreateShift(f.ctx, &domain.Shift{ID: uuid.New(), InstallationID: f.inst, Date: march10, TemplateID: f.tmpl})
	})
	assert.ErrorIs(t, err, repository.ErrReadOnly)
}

func TestShiftSlotIsUnique(t *testing.T) {
	f := newFixture(t)
	f.createShift(t, march10)

	err := f.store.WithTx(f.ctx, func(q repository.Queries) error {
		return q.CreateShift(f.ctx, &domain.Shift{ID: uuid.New(), InstallationID: f.inst, Date: march10, TemplateID: f.tmpl})
	})
	assert.ErrorIs(t, err, repository.ErrShiftSlotTaken)

	// another day is fine
	f.createShift(t, march10.AddDays(1))
}

func TestWorkerCanOnlyBeBookedOncePerDay(t *testing.T) {
	f := newFixture(t)
	first := f.createShift(t, march10)
	next := f.createShift(t, march10.AddDays(1))

	require.NoError(t, f.addMember(first))
	assert.ErrorIs(t, f.addMember(first), repository.ErrWorkerDayBooked)
	assert.NoError(t, f.addMember(next))
}

func TestFindConflictingShift(t *testing.T) {
	f := newFixture(t)
	shift := f.createShift(t, march10)
	require.NoError(t, f.addMember(shift))

	find := func(date domain.Date, excluding *uuid.UUID) uuid.UUID {
		var id uuid.UUID
		require.NoError(t, f.store.View(f.ctx, func(q repository.Queries) error {
			var err error
			id, err = q.FindConflictingShift(f.ctx, f.inst, f.worker, date, excluding)
			return err
		}))
		return id
	}

	assert.Equal(t, shift.ID, find(march10, nil))
	assert.Equal(t, uuid.Nil, find(march10, &shift.ID))
	assert.Equal(t, uuid.Nil, find(march10.AddDays(1), nil))

	// a tombstoned shift no longer blocks the day
	require.NoError(t, f.store.WithTx(f.ctx, func(q repository.Queries) error {
		s, err := q.GetShift(f.ctx, f.inst, shift.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		s.DeletedAt = &now
		return q.UpdateShift(f.ctx, s)
	}))
	assert.Equal(t, uuid.Nil, find(march10, nil))
}

func TestUpdateShiftChecksVersion(t *testing.T) {
	f := newFixture(t)
	shift := f.createShift(t, march10)
	assert.Equal(t, int32(1), shift.Version)

	require.NoError(t, f.store.WithTx(f.ctx, func(q repository.Queries) error {
		shift.Notes = "first"
		return q.UpdateShift(f.ctx, shift)
	}))
	assert.Equal(t, int32(2), shift.Version)

	stale := *shift
	stale.Version = 1
	err := f.store.WithTx(f.ctx, func(q repository.Queries) error {
		return q.UpdateShift(f.ctx, &stale)
	})
	assert.ErrorIs(t, err, repository.ErrEditConflict)
}

func TestListInstallationsSkipsInactive(t *testing.T) {
	f := newFixture(t)
	closed := &domain.Installation{Name: "Fechada", IsActive: false}
	f.store.AddInstallation(closed)

	ids, err := f.store.ListInstallations(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.inst}, ids)
}
