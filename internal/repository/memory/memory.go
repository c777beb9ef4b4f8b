// Package memory is an in-process repository.Store used by tests and local
// development. It enforces the same uniqueness rules as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
)

type overrideKey struct {
	InstallationID uuid.UUID
	TemplateID     uuid.UUID
}

type teamMemberRow struct {
	InstallationID uuid.UUID
	domain.TeamMember
}

type shiftMemberRow struct {
	InstallationID uuid.UUID
	domain.ShiftMember
}

type state struct {
	installations map[uuid.UUID]domain.Installation
	templates     map[uuid.UUID]domain.ShiftTemplate
	overrides     map[overrideKey]domain.TemplateOverride
	workers       map[uuid.UUID]domain.Worker
	teams         map[uuid.UUID]domain.Team
	teamMembers   map[uuid.UUID]teamMemberRow
	shifts        map[uuid.UUID]domain.Shift
	shiftMembers  map[uuid.UUID]shiftMemberRow
	substitutions []domain.Substitution
	history       []domain.VersionHistoryEntry
	patterns      map[uuid.UUID]domain.WeeklyPattern
	assignments   map[uuid.UUID]domain.PatternAssignment
}

func newState() *state {
	return &state{
		installations: make(map[uuid.UUID]domain.Installation),
		templates:     make(map[uuid.UUID]domain.ShiftTemplate),
		overrides:     make(map[overrideKey]domain.TemplateOverride),
		workers:       make(map[uuid.UUID]domain.Worker),
		teams:         make(map[uuid.UUID]domain.Team),
		teamMembers:   make(map[uuid.UUID]teamMemberRow),
		shifts:        make(map[uuid.UUID]domain.Shift),
		shiftMembers:  make(map[uuid.UUID]shiftMemberRow),
		patterns:      make(map[uuid.UUID]domain.WeeklyPattern),
		assignments:   make(map[uuid.UUID]domain.PatternAssignment),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Rows are stored by value and replaced whole on
// write, so a shallow copy of each map is enough.
func (s *state) clone() *state {
	return &state{
		installations: copyMap(s.installations),
		templates:     copyMap(s.templates),
		overrides:     copyMap(s.overrides),
		workers:       copyMap(s.workers),
		teams:         copyMap(s.teams),
		teamMembers:   copyMap(s.teamMembers),
		shifts:        copyMap(s.shifts),
		shiftMembers:  copyMap(s.shiftMembers),
		substitutions: append([]domain.Substitution(nil), s.substitutions...),
		history:       append([]domain.VersionHistoryEntry(nil), s.history...),
		patterns:      copyMap(s.patterns),
		assignments:   copyMap(s.assignments),
	}
}

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

var (
	_ repository.Store                = (*Store)(nil)
	_ repository.InstallationRegistry = (*Store)(nil)
	_ repository.Queries              = (*tx)(nil)
)

func New() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithTx runs fn with exclusive access. Every write made by fn is discarded
// when it returns an error.
func (s *Store) WithTx(_ context.Context, fn func(q repository.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&tx{state: s.state, now: s.now}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) View(_ context.Context, fn func(q repository.Queries) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{state: s.state, now: s.now, readOnly: true})
}

func (s *Store) AddInstallation(inst *domain.Installation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	inst.CreatedAt = s.now()
	s.state.installations[inst.ID] = *inst
}

func (s *Store) ListInstallations(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insts := make([]domain.Installation, 0, len(s.state.installations))
	for _, inst := range s.state.installations {
		if inst.IsActive {
			insts = append(insts, inst)
		}
	}
	sort.Slice(insts, func(i, j int) bool {
		if !insts[i].CreatedAt.Equal(insts[j].CreatedAt) {
			return insts[i].CreatedAt.Before(insts[j].CreatedAt)
		}
		return insts[i].ID.String() < insts[j].ID.String()
	})

	ids := make([]uuid.UUID, len(insts))
	for i, inst := range insts {
		ids[i] = inst.ID
	}
	return ids, nil
}

// tx implements repository.Queries over the shared state. The Store holds the
// lock for as long as a tx is in use.
type tx struct {
	state    *state
	now      func() time.Time
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return repository.ErrReadOnly
	}
	return nil
}
