package memory

import (
	"context"
	"sort"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

func (t *tx) CreateShift(_ context.Context, s *domain.Shift) error {
	if err := t.write(); err != nil {
		return err
	}
	for _, existing := range t.state.shifts {
		if existing.InstallationID == s.InstallationID && existing.DeletedAt == nil &&
			existing.Date.Equal(s.Date) && existing.TemplateID == s.TemplateID {
			return repository.ErrShiftSlotTaken
		}
	}

	now := t.now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Version = 1
	t.state.shifts[s.ID] = bareShift(*s)
	return nil
}

// bareShift strips the joined data that is not part of the shifts table.
func bareShift(s domain.Shift) domain.Shift {
	s.Template = nil
	s.Members = nil
	return s
}

func (t *tx) GetShift(_ context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error) {
	s, ok := t.state.shifts[shiftID]
	if !ok || s.InstallationID != installationID || s.DeletedAt != nil {
		return nil, repository.ErrRecordNotFound
	}
	return &s, nil
}

// LockShift needs no extra locking: the Store serializes write transactions.
func (t *tx) LockShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error) {
	return t.GetShift(ctx, installationID, shiftID)
}

func (t *tx) FindShift(_ context.Context, installationID uuid.UUID, date domain.Date, templateID uuid.UUID) (*domain.Shift, error) {
	for _, s := range t.state.shifts {
		if s.InstallationID == installationID && s.DeletedAt == nil &&
			s.Date.Equal(date) && s.TemplateID == templateID {
			return &s, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (t *tx) ListShifts(_ context.Context, filter repository.ShiftFilter) ([]*domain.Shift, error) {
	shifts := make([]*domain.Shift, 0)
	for _, s := range t.state.shifts {
		if s.InstallationID != filter.InstallationID || s.DeletedAt != nil {
			continue
		}
		if !filter.From.IsZero() && s.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && s.Date.After(filter.To) {
			continue
		}
		if filter.TemplateID != nil && s.TemplateID != *filter.TemplateID {
			continue
		}
		if filter.TeamID != nil && (s.TeamID == nil || *s.TeamID != *filter.TeamID) {
			continue
		}
		s := s
		shifts = append(shifts, &s)
	}
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		if !shifts[i].CreatedAt.Equal(shifts[j].CreatedAt) {
			return shifts[i].CreatedAt.Before(shifts[j].CreatedAt)
		}
		return shifts[i].ID.String() < shifts[j].ID.String()
	})
	return shifts, nil
}

func (t *tx) UpdateShift(_ context.Context, s *domain.Shift) error {
	if err := t.write(); err != nil {
		return err
	}
	current, ok := t.state.shifts[s.ID]
	if !ok || current.InstallationID != s.InstallationID || current.Version != s.Version {
		return repository.ErrEditConflict
	}

	current.TeamID = s.TeamID
	current.Status = s.Status
	current.Notes = s.Notes
	current.UpdatedBy = s.UpdatedBy
	current.UpdatedAt = t.now()
	current.DeletedAt = s.DeletedAt
	current.DeletedBy = s.DeletedBy
	current.Version++
	t.state.shifts[s.ID] = current

	s.UpdatedAt = current.UpdatedAt
	s.Version = current.Version
	return nil
}

func (t *tx) ShiftVersion(_ context.Context, installationID, shiftID uuid.UUID) (int32, error) {
	s, ok := t.state.shifts[shiftID]
	if !ok || s.InstallationID != installationID {
		return 0, repository.ErrRecordNotFound
	}
	return s.Version, nil
}

func (t *tx) ListShiftMembers(_ context.Context, installationID, shiftID uuid.UUID) ([]domain.ShiftMember, error) {
	members := make([]domain.ShiftMember, 0)
	for _, row := range t.state.shiftMembers {
		if row.InstallationID != installationID || row.ShiftID != shiftID || row.RemovedAt != nil {
			continue
		}
		m := row.ShiftMember
		if w, ok := t.state.workers[m.WorkerID]; ok {
			m.Worker = &w
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].AssignedAt.Equal(members[j].AssignedAt) {
			return members[i].AssignedAt.Before(members[j].AssignedAt)
		}
		return members[i].ID.String() < members[j].ID.String()
	})
	return members, nil
}

func (t *tx) AddShiftMember(_ context.Context, installationID uuid.UUID, m *domain.ShiftMember) error {
	if err := t.write(); err != nil {
		return err
	}
	if _, ok := t.state.shifts[m.ShiftID]; !ok {
		return repository.ErrRecordNotFound
	}
	for _, row := range t.state.shiftMembers {
		if row.InstallationID == installationID && row.WorkerID == m.WorkerID &&
			row.RemovedAt == nil && row.ShiftDate.Equal(m.ShiftDate) {
			return repository.ErrWorkerDayBooked
		}
	}

	m.AssignedAt = t.now()
	row := shiftMemberRow{InstallationID: installationID, ShiftMember: *m}
	row.Worker = nil
	t.state.shiftMembers[m.ID] = row
	return nil
}

func (t *tx) RemoveShiftMember(_ context.Context, installationID, memberID, actorID uuid.UUID, at time.Time) error {
	if err := t.write(); err != nil {
		return err
	}
	row, ok := t.state.shiftMembers[memberID]
	if !ok || row.InstallationID != installationID || row.RemovedAt != nil {
		return repository.ErrRecordNotFound
	}

	removedAt, removedBy := at, actorID
	row.RemovedAt = &removedAt
	row.RemovedBy = &removedBy
	t.state.shiftMembers[memberID] = row
	return nil
}

func (t *tx) FindConflictingShift(_ context.Context, installationID, workerID uuid.UUID, date domain.Date, excludingShiftID *uuid.UUID) (uuid.UUID, error) {
	for _, row := range t.state.shiftMembers {
		if row.InstallationID != installationID || row.WorkerID != workerID ||
			row.RemovedAt != nil || !row.ShiftDate.Equal(date) {
			continue
		}
		if excludingShiftID != nil && row.ShiftID == *excludingShiftID {
			continue
		}
		if s, ok := t.state.shifts[row.ShiftID]; !ok || s.DeletedAt != nil {
			continue
		}
		return row.ShiftID, nil
	}
	return uuid.Nil, nil
}
