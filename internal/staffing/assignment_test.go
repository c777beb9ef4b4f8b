package staffing_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignTeam_ConfirmsShiftAndAddsActiveMembers(t *testing.T) {
	// GIVEN: a shift on 2025-03-10 (T-MANHA) without a team, and team A with
	//        three active members plus one deactivated worker
	// WHEN: team A is assigned
	// THEN: the shift is CONFIRMED on team A with three memberships and
	//       version 2 recorded as TEAM_ASSIGNMENT
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleCaregiver)
	carla := f.worker("Carla Lima", domain.RoleNursingTechnician)
	inactive := f.worker("Davi Rocha", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana, bruno, carla, inactive)

	off := false
	_, err := f.svc.UpdateWorker(f.ctx, f.inst, inactive.ID, staffing.UpdateWorkerInput{IsActive: &off})
	require.NoError(t, err)

	shift := f.shift(march10, f.manha)
	require.Equal(t, int32(1), shift.Version)

	updated, err := f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, "weekly roster")
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusConfirmed, updated.Status)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, teamA.ID, *updated.TeamID)
	assert.Equal(t, int32(2), updated.Version)
	assert.ElementsMatch(t, []uuid.UUID{ana.ID, bruno.ID, carla.ID}, memberIDs(updated))
	for _, m := range updated.Members {
		assert.True(t, m.FromTeam)
	}

	entries := f.history(shift.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, int32(2), entries[0].VersionNumber)
	assert.Equal(t, domain.ChangeTeamAssignment, entries[0].ChangeType)
	assert.Equal(t, []string{"memberIds", "status", "teamId"}, entries[0].ChangedFields)
	assert.Equal(t, "weekly roster", entries[0].Reason)
	assert.Equal(t, int32(1), entries[1].VersionNumber)
	assert.Equal(t, domain.ChangeCreate, entries[1].ChangeType)

	assert.ElementsMatch(t, []string{"Ana Silva", "Bruno Costa", "Carla Lima"}, f.notifier.assigned)
}

func TestAssignTeam_RejectsMissingInactiveOrSecondTeam(t *testing.T) {
	f := newFixture(t)
	shift := f.shift(march10, f.manha)

	_, err := f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, uuid.New(), "")
	assert.True(t, domain.IsNotFound(err))

	paused := f.team("Equipe Pausada")
	off := false
	_, err = f.svc.UpdateTeam(f.ctx, f.inst, paused.ID, staffing.UpdateTeamInput{IsActive: &off})
	require.NoError(t, err)

	_, err = f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, paused.ID, "")
	assert.True(t, domain.IsBadRequest(err))

	teamA := f.team("Equipe A")
	_, err = f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, "")
	require.NoError(t, err)

	teamB := f.team("Equipe B")
	_, err = f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamB.ID, "")
	assert.True(t, domain.IsBadRequest(err))
}

func TestAssignTeam_AbortsWhenAMemberIsBookedThatDay(t *testing.T) {
	// GIVEN: Ana already works the afternoon shift on 2025-03-10
	// WHEN: Ana's team is assigned to the morning shift of the same day
	// THEN: the assignment fails and the morning shift is untouched
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana, bruno)

	afternoon := f.shift(march10, f.tarde)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, afternoon.ID, ana.ID, "")
	require.NoError(t, err)

	morning := f.shift(march10, f.manha)
	_, err = f.svc.AssignTeam(f.ctx, f.inst, f.actor, morning.ID, teamA.ID, "")
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))

	current, err := f.svc.GetShift(f.ctx, f.inst, morning.ID)
	require.NoError(t, err)
	assert.Nil(t, current.TeamID)
	assert.Empty(t, current.Members)
	assert.Equal(t, int32(1), current.Version)
	assert.Len(t, f.history(morning.ID), 1)
}

func TestAddMember_RejectsWorkerBookedOnAnotherShiftThatDay(t *testing.T) {
	// GIVEN: worker U is an active member of S1 on 2025-03-10
	// WHEN: U is added to S2, also on 2025-03-10
	// THEN: BadRequest citing the conflict on 2025-03-10, S2 unchanged
	f := newFixture(t)
	u := f.worker("Ursula Gomes", domain.RoleCaregiver)
	s1 := f.shift(march10, f.manha)
	s2 := f.shift(march10, f.tarde)

	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, s1.ID, u.ID, "")
	require.NoError(t, err)

	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, s2.ID, u.ID, "")
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
	assert.Contains(t, err.Error(), "2025-03-10")

	var conflict *domain.SchedulingConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, u.ID, conflict.WorkerID)
	assert.Equal(t, s1.ID, conflict.ConflictShiftID)

	current, err := f.svc.GetShift(f.ctx, f.inst, s2.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Members)
	assert.Equal(t, int32(1), current.Version)

	subs, err := f.svc.Substitutions(f.ctx, f.inst, s2.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestAddMember_AllowsSameWorkerOnAnotherDay(t *testing.T) {
	f := newFixture(t)
	u := f.worker("Ursula Gomes", domain.RoleCaregiver)
	s1 := f.shift(march10, f.manha)
	s2 := f.shift(march10.AddDays(1), f.manha)

	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, s1.ID, u.ID, "")
	require.NoError(t, err)
	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, s2.ID, u.ID, "")
	require.NoError(t, err)
}

func TestAddMember_ConcurrentRequestsBookAtMostOneShift(t *testing.T) {
	// GIVEN: three shifts on the same day
	// WHEN: many requests race to add the same worker to them
	// THEN: exactly one succeeds
	f := newFixture(t)
	u := f.worker("Ursula Gomes", domain.RoleCaregiver)
	shifts := []*domain.Shift{
		f.shift(march10, f.manha),
		f.shift(march10, f.tarde),
		f.shift(march10, f.noite),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(shift *domain.Shift) {
			defer wg.Done()
			_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, u.ID, "")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, domain.IsBadRequest(err) || domain.IsConflict(err), err.Error())
		}(shifts[i%len(shifts)])
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	booked := 0
	for _, s := range shifts {
		current, err := f.svc.GetShift(f.ctx, f.inst, s.ID)
		require.NoError(t, err)
		booked += len(current.Members)
	}
	assert.Equal(t, 1, booked)
}

func TestAddMember_RejectsIneligibleAndDuplicateWorkers(t *testing.T) {
	f := newFixture(t)
	shift := f.shift(march10, f.manha)

	admin := f.worker("Alice Admin", domain.RoleAdministrator)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, admin.ID, "")
	assert.True(t, domain.IsBadRequest(err))
	assert.Contains(t, err.Error(), "Alice Admin")

	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, uuid.New(), "")
	assert.True(t, domain.IsNotFound(err))

	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	require.NoError(t, err)

	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	assert.True(t, domain.IsConflict(err))
}

func TestAddMember_RecordsAddition(t *testing.T) {
	f := newFixture(t)
	shift := f.shift(march10, f.manha)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)

	updated, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "extra cover")
	require.NoError(t, err)
	require.Len(t, updated.Members, 1)
	assert.False(t, updated.Members[0].FromTeam)

	subs, err := f.svc.Substitutions(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, domain.SubstitutionMemberAddition, subs[0].Type)
	assert.Equal(t, ana.ID, *subs[0].NewWorkerID)
	assert.Equal(t, "extra cover", subs[0].Reason)

	entries := f.history(shift.ID)
	assert.Equal(t, domain.ChangeMemberAddition, entries[0].ChangeType)
	assert.Equal(t, []string{"memberIds"}, entries[0].ChangedFields)
}

func TestSubstituteMember_SwapsWorker(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleNursingAssistant)
	shift := f.shift(march10, f.manha)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	require.NoError(t, err)

	updated, err := f.svc.SubstituteMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, bruno.ID, "sick leave")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bruno.ID}, memberIDs(updated))
	assert.False(t, updated.Members[0].FromTeam)

	subs, err := f.svc.Substitutions(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, domain.SubstitutionMemberReplacement, subs[0].Type)
	assert.Equal(t, ana.ID, *subs[0].OriginalWorkerID)
	assert.Equal(t, bruno.ID, *subs[0].NewWorkerID)

	assert.Equal(t, domain.ChangeMemberSubstitution, f.history(shift.ID)[0].ChangeType)
	assert.Contains(t, f.notifier.removed, "Ana Silva")
	assert.Contains(t, f.notifier.assigned, "Bruno Costa")
}

func TestSubstituteMember_FailedEligibilityLeavesOriginalActive(t *testing.T) {
	// GIVEN: Ana on the shift
	// WHEN: she is substituted by an inactive worker, an ineligible worker,
	//       a worker booked that day and a worker who is not on the shift
	// THEN: every attempt fails and nothing is written
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	shift := f.shift(march10, f.manha)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	require.NoError(t, err)

	inactive := f.worker("Igor Souza", domain.RoleCaregiver)
	off := false
	_, err = f.svc.UpdateWorker(f.ctx, f.inst, inactive.ID, staffing.UpdateWorkerInput{IsActive: &off})
	require.NoError(t, err)

	coordinator := f.worker("Clara Mendes", domain.RoleNursingCoordinator)

	busy := f.worker("Beatriz Alves", domain.RoleCaregiver)
	other := f.shift(march10, f.tarde)
	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, other.ID, busy.ID, "")
	require.NoError(t, err)

	for _, replacement := range []*domain.Worker{inactive, coordinator, busy} {
		_, err := f.svc.SubstituteMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, replacement.ID, "")
		assert.True(t, domain.IsBadRequest(err), "replacement %s", replacement.FullName)
	}

	stranger := f.worker("Pedro Nunes", domain.RoleCaregiver)
	_, err = f.svc.SubstituteMember(f.ctx, f.inst, f.actor, shift.ID, stranger.ID, ana.ID, "")
	assert.True(t, domain.IsBadRequest(err))

	current, err := f.svc.GetShift(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(current))
	assert.Equal(t, int32(2), current.Version)
	assert.Len(t, f.history(shift.ID), 2)

	subs, err := f.svc.Substitutions(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, domain.SubstitutionMemberAddition, subs[0].Type)
}

func TestSubstituteMember_NewWorkerAlreadyOnShiftIsConflict(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleCaregiver)
	shift := f.shift(march10, f.manha)
	for _, w := range []*domain.Worker{ana, bruno} {
		_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, w.ID, "")
		require.NoError(t, err)
	}

	_, err := f.svc.SubstituteMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, bruno.ID, "")
	assert.True(t, domain.IsConflict(err))
}

func TestSubstituteTeam_RejectsStaleOriginalTeam(t *testing.T) {
	// GIVEN: a shift staffed by team A
	// WHEN: a substitution claims team B is the current team
	// THEN: BadRequest and the shift is unchanged
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana)
	teamB := f.team("Equipe B")
	teamC := f.team("Equipe C")

	shift := f.shift(march10, f.manha)
	assigned, err := f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, "")
	require.NoError(t, err)

	_, err = f.svc.SubstituteTeam(f.ctx, f.inst, f.actor, shift.ID, teamB.ID, teamC.ID, "")
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))

	current, err := f.svc.GetShift(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, teamA.ID, *current.TeamID)
	assert.Equal(t, assigned.Version, current.Version)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(current))

	subs, err := f.svc.Substitutions(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubstituteTeam_ReplacesAllMembers(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleCaregiver)
	carla := f.worker("Carla Lima", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana, bruno)
	teamB := f.team("Equipe B", carla)

	shift := f.shift(march10, f.manha)
	_, err := f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, "")
	require.NoError(t, err)

	updated, err := f.svc.SubstituteTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, teamB.ID, "team A on training")
	require.NoError(t, err)
	assert.Equal(t, teamB.ID, *updated.TeamID)
	assert.Equal(t, []uuid.UUID{carla.ID}, memberIDs(updated))
	assert.Equal(t, int32(3), updated.Version)

	subs, err := f.svc.Substitutions(f.ctx, f.inst, shift.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, domain.SubstitutionTeamReplacement, subs[0].Type)
	assert.Equal(t, teamA.ID, *subs[0].OriginalTeamID)
	assert.Equal(t, teamB.ID, *subs[0].NewTeamID)

	entry := f.history(shift.ID)[0]
	assert.Equal(t, domain.ChangeTeamSubstitution, entry.ChangeType)
	assert.Equal(t, []string{"memberIds", "teamId"}, entry.ChangedFields)

	// Ana and Bruno are free again that day
	afternoon := f.shift(march10, f.tarde)
	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, afternoon.ID, ana.ID, "")
	require.NoError(t, err)
}

func TestAssignTeam_SkipsRolesOutsideWhitelist(t *testing.T) {
	// GIVEN: team A holds a caregiver and an administrator
	// WHEN: team A is assigned, or a shift is created with it
	// THEN: only the caregiver becomes a shift member
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	admin := f.worker("Adm Souza", domain.RoleAdministrator)
	teamA := f.team("Equipe A", ana, admin)

	shift := f.shift(march10, f.manha)
	updated, err := f.svc.AssignTeam(f.ctx, f.inst, f.actor, shift.ID, teamA.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(updated))
	assert.Equal(t, []string{"Ana Silva"}, f.notifier.assigned)

	created, err := f.svc.CreateShift(f.ctx, f.inst, f.actor, staffing.CreateShiftInput{
		Date:       march10.AddDays(1),
		TemplateID: f.manha.ID,
		TeamID:     &teamA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(created))

	// AND the administrator stays free on both days
	busy, err := f.svc.HasConflict(f.ctx, f.inst, admin.ID, march10, nil)
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestSubstituteTeam_RollsBackWhenNewMemberIsBooked(t *testing.T) {
	// GIVEN: a morning shift staffed by team A, and Carla of team B already
	//        working the afternoon of the same day
	// WHEN: team B substitutes team A
	// THEN: the conflict error is returned and team A is still on the shift
	//       with no substitution or extra history recorded
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	carla := f.worker("Carla Lima", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana)
	teamB := f.team("Equipe B", carla)

	afternoon := f.shift(march10, f.tarde)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, afternoon.ID, carla.ID, "")
	require.NoError(t, err)

	morning := f.shift(march10, f.manha)
	_, err = f.svc.AssignTeam(f.ctx, f.inst, f.actor, morning.ID, teamA.ID, "")
	require.NoError(t, err)

	_, err = f.svc.SubstituteTeam(f.ctx, f.inst, f.actor, morning.ID, teamA.ID, teamB.ID, "")
	var conflict *domain.SchedulingConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, carla.ID, conflict.WorkerID)

	current, err := f.svc.GetShift(f.ctx, f.inst, morning.ID)
	require.NoError(t, err)
	assert.Equal(t, teamA.ID, *current.TeamID)
	assert.Equal(t, int32(2), current.Version)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(current))

	subs, err := f.svc.Substitutions(f.ctx, f.inst, morning.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Len(t, f.history(morning.ID), 2)

	// Ana is still booked on the morning
	busy, err := f.svc.HasConflict(f.ctx, f.inst, ana.ID, march10, nil)
	require.NoError(t, err)
	assert.True(t, busy)
}

func TestRemoveMember_TombstonesMembership(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	shift := f.shift(march10, f.manha)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	require.NoError(t, err)

	updated, err := f.svc.RemoveMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "swapped day")
	require.NoError(t, err)
	assert.Empty(t, updated.Members)
	assert.Equal(t, domain.ChangeMemberRemoval, f.history(shift.ID)[0].ChangeType)
	assert.Equal(t, []string{"Ana Silva"}, f.notifier.removed)

	_, err = f.svc.RemoveMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	assert.True(t, domain.IsBadRequest(err))
}

func TestVersionHistory_IsGapFreeAndMatchesShiftVersion(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	bruno := f.worker("Bruno Costa", domain.RoleCaregiver)
	carla := f.worker("Carla Lima", domain.RoleCaregiver)
	shift := f.shift(march10, f.manha)

	steps := []func() (*domain.Shift, error){
		func() (*domain.Shift, error) { return f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "") },
		func() (*domain.Shift, error) { return f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, bruno.ID, "") },
		func() (*domain.Shift, error) {
			return f.svc.SubstituteMember(f.ctx, f.inst, f.actor, shift.ID, bruno.ID, carla.ID, "")
		},
		func() (*domain.Shift, error) { return f.svc.RemoveMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "") },
		func() (*domain.Shift, error) {
			notes := "short-staffed"
			return f.svc.UpdateShift(f.ctx, f.inst, f.actor, shift.ID, staffing.UpdateShiftInput{Notes: &notes})
		},
	}

	for i, step := range steps {
		updated, err := step()
		require.NoError(t, err)
		assert.Equal(t, int32(i+2), updated.Version)

		entries := f.history(shift.ID)
		require.Len(t, entries, i+2)
		assert.Equal(t, updated.Version, entries[0].VersionNumber)
	}

	entries := f.history(shift.ID)
	for i, e := range entries {
		assert.Equal(t, int32(len(entries)-i), e.VersionNumber)
	}
}

func TestUpdateShift_StaleVersionIsConflict(t *testing.T) {
	f := newFixture(t)
	shift := f.shift(march10, f.manha)

	stale := int32(7)
	status := domain.ShiftStatusCancelled
	_, err := f.svc.UpdateShift(f.ctx, f.inst, f.actor, shift.ID, staffing.UpdateShiftInput{Status: &status, Version: &stale})
	assert.True(t, domain.IsConflict(err))

	bogus := domain.ShiftStatus("PAUSED")
	_, err = f.svc.UpdateShift(f.ctx, f.inst, f.actor, shift.ID, staffing.UpdateShiftInput{Status: &bogus})
	assert.True(t, domain.IsBadRequest(err))
}

func TestCreateShift_DuplicateSlotIsConflict(t *testing.T) {
	f := newFixture(t)
	f.shift(march10, f.manha)

	_, err := f.svc.CreateShift(f.ctx, f.inst, f.actor, staffing.CreateShiftInput{Date: march10, TemplateID: f.manha.ID})
	assert.True(t, domain.IsConflict(err))

	_, err = f.svc.CreateShift(f.ctx, f.inst, f.actor, staffing.CreateShiftInput{Date: march10, TemplateID: uuid.New()})
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateShift_WithTeamAttachesMembers(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	teamA := f.team("Equipe A", ana)

	shift, err := f.svc.CreateShift(f.ctx, f.inst, f.actor, staffing.CreateShiftInput{
		Date:       march10,
		TemplateID: f.manha.ID,
		TeamID:     &teamA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusConfirmed, shift.Status)
	assert.Equal(t, int32(1), shift.Version)
	assert.Equal(t, []uuid.UUID{ana.ID}, memberIDs(shift))

	entries := f.history(shift.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeCreate, entries[0].ChangeType)
	assert.Nil(t, entries[0].PreviousState)
	assert.NotEmpty(t, entries[0].NewState)
	assert.Empty(t, entries[0].ChangedFields)
}

func TestDeleteShift_FreesWorkersAndKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	morning := f.shift(march10, f.manha)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, morning.ID, ana.ID, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteShift(f.ctx, f.inst, f.actor, morning.ID, "duplicate"))

	_, err = f.svc.GetShift(f.ctx, f.inst, morning.ID)
	assert.True(t, domain.IsNotFound(err))

	entries := f.history(morning.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ChangeDelete, entries[0].ChangeType)
	assert.Contains(t, entries[0].ChangedFields, "deleted")

	afternoon := f.shift(march10, f.tarde)
	_, err = f.svc.AddMember(f.ctx, f.inst, f.actor, afternoon.ID, ana.ID, "")
	require.NoError(t, err)

	// the slot can be reused once the old shift is tombstoned
	f.shift(march10, f.manha)
}

func TestHasConflict(t *testing.T) {
	f := newFixture(t)
	ana := f.worker("Ana Silva", domain.RoleCaregiver)
	shift := f.shift(march10, f.manha)
	_, err := f.svc.AddMember(f.ctx, f.inst, f.actor, shift.ID, ana.ID, "")
	require.NoError(t, err)

	conflict, err := f.svc.HasConflict(f.ctx, f.inst, ana.ID, march10, nil)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = f.svc.HasConflict(f.ctx, f.inst, ana.ID, march10, &shift.ID)
	require.NoError(t, err)
	assert.False(t, conflict)

	conflict, err = f.svc.HasConflict(f.ctx, f.inst, ana.ID, march10.AddDays(1), nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestStoreError(t *testing.T) {
	assert.True(t, domain.IsNotFound(staffing.StoreError(repository.ErrRecordNotFound)))
	assert.True(t, domain.IsConflict(staffing.StoreError(repository.ErrEditConflict)))
	assert.True(t, domain.IsConflict(staffing.StoreError(repository.ErrShiftSlotTaken)))
	assert.Nil(t, staffing.StoreError(nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, staffing.StoreError(other))
}
