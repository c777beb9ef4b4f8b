// Package staffing implements shift staffing: shift lifecycle, team and
// worker assignment, conflict checks, version history and the shift
// membership gate used by record-creation workflows.
package staffing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/samber/lo"
)

// Notifier is told about workers who gained or lost a shift, after the change
// has been committed.
type Notifier interface {
	ShiftAssigned(ctx context.Context, worker *domain.Worker, shift *domain.Shift, reason string) error
	ShiftRemoved(ctx context.Context, worker *domain.Worker, shift *domain.Shift, reason string) error
}

type noopNotifier struct{}

func (noopNotifier) ShiftAssigned(context.Context, *domain.Worker, *domain.Shift, string) error {
	return nil
}

func (noopNotifier) ShiftRemoved(context.Context, *domain.Worker, *domain.Shift, string) error {
	return nil
}

type Options struct {
	// EligibleRoles may be assigned to shifts and must pass the membership gate.
	EligibleRoles []domain.Role
	// BypassRoles skip the membership gate entirely.
	BypassRoles   []domain.Role
	GraceAfterEnd time.Duration
	Location      *time.Location
	Now           func() time.Time
	Notifier      Notifier
	Logger        *slog.Logger
}

func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}

	toRoles := func(names []string) []domain.Role {
		return lo.Map(names, func(name string, _ int) domain.Role { return domain.Role(name) })
	}

	return Options{
		EligibleRoles: toRoles(cfg.Staffing.EligibleRoles),
		BypassRoles:   toRoles(cfg.Staffing.BypassRoles),
		GraceAfterEnd: time.Duration(cfg.Staffing.PostShiftToleranceMinutes) * time.Minute,
		Location:      loc,
	}, nil
}

// Service is safe for concurrent use. Every operation receives the
// installation and the acting user explicitly.
type Service struct {
	store         repository.Store
	eligibleRoles []domain.Role
	bypassRoles   []domain.Role
	grace         time.Duration
	loc           *time.Location
	now           func() time.Time
	notifier      Notifier
	logger        *slog.Logger
}

func NewService(store repository.Store, opts Options) *Service {
	s := &Service{
		store:         store,
		eligibleRoles: opts.EligibleRoles,
		bypassRoles:   opts.BypassRoles,
		grace:         opts.GraceAfterEnd,
		loc:           opts.Location,
		now:           opts.Now,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the current instant in the service's time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today is the current calendar day in the service's time zone.
func (s *Service) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// StoreError turns store sentinels into user-facing errors. Call sites that
// know which record was missing should handle ErrRecordNotFound first.
func StoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRecordNotFound):
		return domain.NotFound("record not found")
	case errors.Is(err, repository.ErrEditConflict), errors.Is(err, repository.ErrHistoryVersionTaken):
		return domain.Conflict("the record was modified concurrently, reload and retry")
	case errors.Is(err, repository.ErrShiftSlotTaken):
		return domain.Conflict("a shift already exists for this date and template")
	case errors.Is(err, repository.ErrTeamNameTaken):
		return domain.Conflict("team name is already in use")
	case errors.Is(err, repository.ErrTeamMemberExists):
		return domain.Conflict("worker is already an active member of this team")
	case errors.Is(err, repository.ErrDuplicatePatternAssignment):
		return domain.Conflict("an assignment already exists for this week, day and template")
	case errors.Is(err, repository.ErrActivePatternExists):
		return domain.Conflict("another weekly pattern is already active")
	case errors.Is(err, repository.ErrTemplateNameTaken):
		return domain.Conflict("template name is already in use")
	}
	return err
}

// notFound maps a missing record to a NotFound naming it and leaves other
// errors untouched.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return domain.NotFound(format, args...)
	}
	return err
}

type notification struct {
	worker  *domain.Worker
	removed bool
}

// notify runs after commit. Delivery failures are logged, never returned.
func (s *Service) notify(ctx context.Context, shift *domain.Shift, reason string, events []notification) {
	for _, ev := range events {
		var err error
		if ev.removed {
			err = s.notifier.ShiftRemoved(ctx, ev.worker, shift, reason)
		} else {
			err = s.notifier.ShiftAssigned(ctx, ev.worker, shift, reason)
		}
		if err != nil {
			s.logger.Error("failed to queue shift notification",
				slog.String("shiftID", shift.ID.String()),
				slog.String("workerID", ev.worker.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}
