package staffing

import (
	"context"
	"fmt"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type RegistrationContext struct {
	CanRegister bool          `json:"canRegister"`
	Bypassed    bool          `json:"bypassed"`
	Reason      string        `json:"reason,omitempty"`
	ActiveShift *domain.Shift `json:"activeShift,omitempty"`
}

// RegistrationContext decides whether the worker may create care records at
// the given instant. Bypass roles always may. Everyone else must be an active
// member of an IN_PROGRESS shift whose window, extended by the grace period
// after its end, covers the instant. It performs no writes.
func (s *Service) RegistrationContext(ctx context.Context, installationID, workerID uuid.UUID, at time.Time) (*RegistrationContext, error) {
	at = at.In(s.loc)
	day := domain.DateOf(at)

	var result *RegistrationContext
	err := s.store.View(ctx, func(q repository.Queries) error {
		worker, err := q.GetWorker(ctx, installationID, workerID)
		if err != nil {
			return notFound(err, "worker %s not found", workerID)
		}

		if lo.Contains(s.bypassRoles, worker.Role) {
			result = &RegistrationContext{CanRegister: true, Bypassed: true}
			return nil
		}
		if !worker.IsActive {
			result = &RegistrationContext{Reason: fmt.Sprintf("worker %s is inactive", worker.FullName)}
			return nil
		}
		if !lo.Contains(s.eligibleRoles, worker.Role) {
			result = &RegistrationContext{Reason: fmt.Sprintf("role %s cannot register care records", worker.Role)}
			return nil
		}

		// the previous day is included for shifts that run past midnight
		shifts, err := q.ListShifts(ctx, repository.ShiftFilter{
			InstallationID: installationID,
			From:           day.AddDays(-1),
			To:             day,
		})
		if err != nil {
			return err
		}

		for _, shift := range shifts {
			if shift.Status != domain.ShiftStatusInProgress {
				continue
			}

			ok, err := s.coversInstant(ctx, q, shift, worker.ID, day, at)
			if err != nil {
				return err
			}
			if ok {
				result = &RegistrationContext{CanRegister: true, ActiveShift: shift}
				return nil
			}
		}

		result = &RegistrationContext{
			Reason: fmt.Sprintf("worker %s has no shift in progress at %s on %s", worker.FullName, at.Format("15:04"), day),
		}
		return nil
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return result, nil
}

func (s *Service) coversInstant(ctx context.Context, q repository.Queries, shift *domain.Shift, workerID uuid.UUID, day domain.Date, at time.Time) (bool, error) {
	tmpl, err := q.GetShiftTemplate(ctx, shift.InstallationID, shift.TemplateID)
	if err != nil {
		return false, err
	}
	if !shift.Date.Equal(day) && !tmpl.Overnight() {
		return false, nil
	}

	start, end, err := tmpl.Window(shift.Date, s.loc)
	if err != nil {
		return false, err
	}
	if at.Before(start) || at.After(end.Add(s.grace)) {
		return false, nil
	}

	members, err := q.ListShiftMembers(ctx, shift.InstallationID, shift.ID)
	if err != nil {
		return false, err
	}
	if !lo.ContainsBy(members, func(m domain.ShiftMember) bool { return m.WorkerID == workerID }) {
		return false, nil
	}

	shift.Template = tmpl
	shift.Members = members
	return true, nil
}
