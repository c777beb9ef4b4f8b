package repository

import (
	"context"
	"errors"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrEditConflict is returned when an optimistic version check fails.
	ErrEditConflict = errors.New("edit conflict")
	// ErrReadOnly is returned when a write is attempted inside View.
	ErrReadOnly = errors.New("write attempted in a read-only transaction")

	ErrShiftSlotTaken             = errors.New("a shift already exists for this date and template")
	ErrWorkerDayBooked            = errors.New("worker already has an active membership on this date")
	ErrTeamNameTaken              = errors.New("team name already in use")
	ErrTeamMemberExists           = errors.New("worker is already an active team member")
	ErrDuplicatePatternAssignment = errors.New("pattern assignment already exists for this week, day and template")
	ErrActivePatternExists        = errors.New("another pattern is already active")
	ErrTemplateNameTaken          = errors.New("template name already in use")
	ErrHistoryVersionTaken        = errors.New("version history entry already exists for this version")
)

type ShiftFilter struct {
	InstallationID uuid.UUID
	From           domain.Date
	To             domain.Date
	TemplateID     *uuid.UUID
	TeamID         *uuid.UUID
}

// Store gives access to Queries inside a transaction. Everything done within
// fn commits together or not at all.
type Store interface {
	WithTx(ctx context.Context, fn func(q Queries) error) error
	View(ctx context.Context, fn func(q Queries) error) error
}

// InstallationRegistry lists the installations jobs must fan out to.
type InstallationRegistry interface {
	ListInstallations(ctx context.Context) ([]uuid.UUID, error)
}

type Queries interface {
	// Shift templates are global; reads merge the installation override.
	ListShiftTemplates(ctx context.Context, installationID uuid.UUID) ([]*domain.ShiftTemplate, error)
	GetShiftTemplate(ctx context.Context, installationID, templateID uuid.UUID) (*domain.ShiftTemplate, error)
	CreateShiftTemplate(ctx context.Context, t *domain.ShiftTemplate) error
	UpdateShiftTemplate(ctx context.Context, t *domain.ShiftTemplate) error
	UpsertTemplateOverride(ctx context.Context, o *domain.TemplateOverride) error
	DeleteTemplateOverride(ctx context.Context, installationID, templateID uuid.UUID) error

	CreateWorker(ctx context.Context, w *domain.Worker) error
	GetWorker(ctx context.Context, installationID, workerID uuid.UUID) (*domain.Worker, error)
	ListWorkers(ctx context.Context, installationID uuid.UUID) ([]*domain.Worker, error)
	UpdateWorker(ctx context.Context, w *domain.Worker) error

	CreateTeam(ctx context.Context, t *domain.Team) error
	GetTeam(ctx context.Context, installationID, teamID uuid.UUID) (*domain.Team, error)
	ListTeams(ctx context.Context, installationID uuid.UUID) ([]*domain.Team, error)
	UpdateTeam(ctx context.Context, t *domain.Team) error
	ListTeamMembers(ctx context.Context, installationID, teamID uuid.UUID) ([]*domain.TeamMember, error)
	AddTeamMember(ctx context.Context, m *domain.TeamMember) error
	RemoveTeamMember(ctx context.Context, installationID, teamID, workerID, actorID uuid.UUID, at time.Time) error

	CreateShift(ctx context.Context, s *domain.Shift) error
	GetShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error)
	// LockShift is GetShift that also blocks concurrent writers until the transaction ends.
	LockShift(ctx context.Context, installationID, shiftID uuid.UUID) (*domain.Shift, error)
	FindShift(ctx context.Context, installationID uuid.UUID, date domain.Date, templateID uuid.UUID) (*domain.Shift, error)
	ListShifts(ctx context.Context, filter ShiftFilter) ([]*domain.Shift, error)
	// UpdateShift persists the shift and bumps its version by one.
	UpdateShift(ctx context.Context, s *domain.Shift) error
	// ShiftVersion reads the current version, tombstoned shifts included.
	ShiftVersion(ctx context.Context, installationID, shiftID uuid.UUID) (int32, error)

	ListShiftMembers(ctx context.Context, installationID, shiftID uuid.UUID) ([]domain.ShiftMember, error)
	AddShiftMember(ctx context.Context, installationID uuid.UUID, m *domain.ShiftMember) error
	RemoveShiftMember(ctx context.Context, installationID, memberID, actorID uuid.UUID, at time.Time) error
	// FindConflictingShift returns the id of another non-deleted shift on date
	// where the worker is an active member, or uuid.Nil.
	FindConflictingShift(ctx context.Context, installationID, workerID uuid.UUID, date domain.Date, excludingShiftID *uuid.UUID) (uuid.UUID, error)

	CreateSubstitution(ctx context.Context, s *domain.Substitution) error
	ListSubstitutions(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.Substitution, error)
	CreateVersionHistoryEntry(ctx context.Context, e *domain.VersionHistoryEntry) error
	// ListVersionHistory returns entries newest first.
	ListVersionHistory(ctx context.Context, installationID, shiftID uuid.UUID) ([]*domain.VersionHistoryEntry, error)

	CreatePattern(ctx context.Context, p *domain.WeeklyPattern) error
	GetPattern(ctx context.Context, installationID, patternID uuid.UUID) (*domain.WeeklyPattern, error)
	GetActivePattern(ctx context.Context, installationID uuid.UUID) (*domain.WeeklyPattern, error)
	ListPatterns(ctx context.Context, installationID uuid.UUID) ([]*domain.WeeklyPattern, error)
	UpdatePattern(ctx context.Context, p *domain.WeeklyPattern) error
	// DeactivatePatterns clears the active flag on every pattern except keepID.
	DeactivatePatterns(ctx context.Context, installationID uuid.UUID, keepID uuid.UUID) error

	CreatePatternAssignment(ctx context.Context, a *domain.PatternAssignment) error
	GetPatternAssignment(ctx context.Context, patternID, assignmentID uuid.UUID) (*domain.PatternAssignment, error)
	ListPatternAssignments(ctx context.Context, patternID uuid.UUID) ([]*domain.PatternAssignment, error)
	UpdatePatternAssignment(ctx context.Context, a *domain.PatternAssignment) error
	DeletePatternAssignment(ctx context.Context, patternID, assignmentID uuid.UUID) error
}
