// Package scheduler expands the active weekly pattern of an installation into
// concrete shifts and manages the patterns themselves.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/lock"
	"github.com/carehome-dev/care-shift/backend/internal/metrics"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ShiftCreator creates one shift in its own transaction, attaching the team
// members when a team is given. It also owns the clock.
type ShiftCreator interface {
	CreateShift(ctx context.Context, installationID, actorID uuid.UUID, in staffing.CreateShiftInput) (*domain.Shift, error)
	Now() time.Time
	Today() domain.Date
}

type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error)
}

type Options struct {
	Parameters Parameters
	// Locker is optional. Without one, concurrent runs are not prevented.
	Locker  Locker
	LockTTL time.Duration
	Logger  *slog.Logger
}

type Service struct {
	store   repository.Store
	shifts  ShiftCreator
	params  Parameters
	locker  Locker
	lockTTL time.Duration
	logger  *slog.Logger
}

func New(store repository.Store, shifts ShiftCreator, opts Options) *Service {
	s := &Service{
		store:   store,
		shifts:  shifts,
		params:  opts.Parameters,
		locker:  opts.Locker,
		lockTTL: opts.LockTTL,
		logger:  opts.Logger,
	}
	if s.params.DefaultDays <= 0 {
		s.params.DefaultDays = 14
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 5 * time.Minute
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Generate creates the shifts the active pattern asks for over the horizon.
// Existing shifts are never touched. Each shift is created in its own
// transaction and per-item failures are reported in the result.
func (s *Service) Generate(ctx context.Context, installationID, actorID uuid.UUID, opts GenerateOptions) (*GenerateResult, error) {
	days := clampDays(opts.Days, s.params)
	from := opts.From
	if from.IsZero() {
		from = s.shifts.Today()
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "generation_"+installationID.String(), s.lockTTL)
		if errors.Is(err, lock.ErrHeld) {
			return nil, domain.Conflict("shift generation is already running for this installation")
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error("failed to release generation lock",
					slog.String("installationID", installationID.String()),
					slog.String("error", err.Error()))
			}
		}()
	}

	timer := prometheus.NewTimer(metrics.GenerationDuration)
	defer timer.ObserveDuration()

	var pattern *domain.WeeklyPattern
	var assignments []*domain.PatternAssignment
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		pattern, err = q.GetActivePattern(ctx, installationID)
		if errors.Is(err, repository.ErrRecordNotFound) {
			return domain.BadRequest("there is no active weekly pattern to generate shifts from")
		}
		if err != nil {
			return err
		}

		assignments, err = q.ListPatternAssignments(ctx, pattern.ID)
		return err
	})
	if err != nil {
		return nil, staffing.StoreError(err)
	}

	result := &GenerateResult{
		PatternID: pattern.ID,
		From:      from,
		To:        from.AddDays(days - 1),
		Created:   []*domain.Shift{},
		Skipped:   []SkippedItem{},
		Errors:    []ItemError{},
	}

	for _, sl := range expand(pattern, assignments, from, days) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.generateOne(ctx, installationID, actorID, pattern, sl, result)
	}

	s.logger.Info("shift generation finished",
		slog.String("installationID", installationID.String()),
		slog.String("patternID", pattern.ID.String()),
		slog.String("from", result.From.String()),
		slog.String("to", result.To.String()),
		slog.Int("created", len(result.Created)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

func (s *Service) generateOne(ctx context.Context, installationID, actorID uuid.UUID, pattern *domain.WeeklyPattern, sl slot, result *GenerateResult) {
	existing, err := s.existingShift(ctx, installationID, sl)
	if err != nil {
		s.recordError(installationID, sl, err, result)
		return
	}
	if existing != uuid.Nil {
		metrics.GeneratedShifts.WithLabelValues("skipped").Inc()
		result.Skipped = append(result.Skipped, SkippedItem{Item: sl.item(), ExistingShiftID: existing})
		return
	}

	patternID := pattern.ID
	shift, err := s.shifts.CreateShift(ctx, installationID, actorID, staffing.CreateShiftInput{
		Date:        sl.date,
		TemplateID:  sl.templateID,
		TeamID:      sl.teamID,
		FromPattern: true,
		PatternID:   &patternID,
		Reason:      fmt.Sprintf("generated from weekly pattern %s", pattern.Name),
	})
	switch {
	case err == nil:
		metrics.GeneratedShifts.WithLabelValues("created").Inc()
		result.Created = append(result.Created, shift)
	case domain.IsConflict(err):
		// another writer created the slot after our check
		metrics.GeneratedShifts.WithLabelValues("skipped").Inc()
		result.Skipped = append(result.Skipped, SkippedItem{Item: sl.item()})
	default:
		s.recordError(installationID, sl, err, result)
	}
}

func (s *Service) existingShift(ctx context.Context, installationID uuid.UUID, sl slot) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.store.View(ctx, func(q repository.Queries) error {
		shift, err := q.FindShift(ctx, installationID, sl.date, sl.templateID)
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		id = shift.ID
		return nil
	})
	return id, err
}

func (s *Service) recordError(installationID uuid.UUID, sl slot, err error, result *GenerateResult) {
	metrics.GeneratedShifts.WithLabelValues("error").Inc()
	s.logger.Warn("failed to generate shift",
		slog.String("installationID", installationID.String()),
		slog.String("date", sl.date.String()),
		slog.String("templateID", sl.templateID.String()),
		slog.String("error", err.Error()))
	result.Errors = append(result.Errors, ItemError{Item: sl.item(), Message: err.Error()})
}

// GenerateAll runs Generate for every active installation. Installations
// without an active pattern are skipped.
func (s *Service) GenerateAll(ctx context.Context, registry repository.InstallationRegistry, actorID uuid.UUID, opts GenerateOptions) (map[uuid.UUID]*GenerateResult, error) {
	installations, err := registry.ListInstallations(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[uuid.UUID]*GenerateResult, len(installations))
	var errs []error
	for _, id := range installations {
		result, err := s.Generate(ctx, id, actorID, opts)
		switch {
		case err == nil:
			results[id] = result
		case domain.IsBadRequest(err):
			s.logger.Info("skipping installation", slog.String("installationID", id.String()), slog.String("reason", err.Error()))
		default:
			errs = append(errs, fmt.Errorf("installation %s: %w", id, err))
		}
	}
	return results, errors.Join(errs...)
}
