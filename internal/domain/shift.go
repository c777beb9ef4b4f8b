package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftStatusScheduled  ShiftStatus = "SCHEDULED"
	ShiftStatusConfirmed  ShiftStatus = "CONFIRMED"
	ShiftStatusInProgress ShiftStatus = "IN_PROGRESS"
	ShiftStatusCompleted  ShiftStatus = "COMPLETED"
	ShiftStatusCancelled  ShiftStatus = "CANCELLED"
)

var ShiftStatuses = []ShiftStatus{
	ShiftStatusScheduled,
	ShiftStatusConfirmed,
	ShiftStatusInProgress,
	ShiftStatusCompleted,
	ShiftStatusCancelled,
}

type Shift struct {
	ID             uuid.UUID      `json:"id"`
	InstallationID uuid.UUID      `json:"installationID"`
	Date           Date           `json:"date"`
	TemplateID     uuid.UUID      `json:"templateID"`
	TeamID         *uuid.UUID     `json:"teamID"`
	Status         ShiftStatus    `json:"status"`
	Notes          string         `json:"notes"`
	Version        int32          `json:"version"`
	FromPattern    bool           `json:"fromPattern"`
	PatternID      *uuid.UUID     `json:"patternID,omitempty"`
	CreatedBy      uuid.UUID      `json:"createdBy"`
	UpdatedBy      uuid.UUID      `json:"updatedBy"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      *time.Time     `json:"deletedAt,omitempty"`
	DeletedBy      *uuid.UUID     `json:"deletedBy,omitempty"`
	Template       *ShiftTemplate `json:"template,omitempty"`
	Members        []ShiftMember  `json:"members"`
}

// Snapshot is the flat state recorded in the version history.
func (s *Shift) Snapshot() map[string]any {
	memberIDs := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		if m.RemovedAt == nil {
			memberIDs = append(memberIDs, m.WorkerID.String())
		}
	}
	sort.Strings(memberIDs)

	var teamID any
	if s.TeamID != nil {
		teamID = s.TeamID.String()
	}

	return map[string]any{
		"date":       s.Date.String(),
		"templateId": s.TemplateID.String(),
		"teamId":     teamID,
		"status":     string(s.Status),
		"notes":      s.Notes,
		"deleted":    s.DeletedAt != nil,
		"memberIds":  memberIDs,
	}
}

func (s *Shift) ActiveMember(workerID uuid.UUID) *ShiftMember {
	for i := range s.Members {
		if s.Members[i].WorkerID == workerID && s.Members[i].RemovedAt == nil {
			return &s.Members[i]
		}
	}
	return nil
}

type ShiftMember struct {
	ID         uuid.UUID  `json:"id"`
	ShiftID    uuid.UUID  `json:"shiftID"`
	WorkerID   uuid.UUID  `json:"workerID"`
	FromTeam   bool       `json:"fromTeam"`
	ShiftDate  Date       `json:"-"`
	AssignedBy uuid.UUID  `json:"assignedBy"`
	AssignedAt time.Time  `json:"assignedAt"`
	RemovedAt  *time.Time `json:"removedAt,omitempty"`
	RemovedBy  *uuid.UUID `json:"removedBy,omitempty"`
	Worker     *Worker    `json:"worker,omitempty"`
}

type SubstitutionType string

const (
	SubstitutionTeamReplacement   SubstitutionType = "TEAM_REPLACEMENT"
	SubstitutionMemberReplacement SubstitutionType = "MEMBER_REPLACEMENT"
	SubstitutionMemberAddition    SubstitutionType = "MEMBER_ADDITION"
)

type Substitution struct {
	ID               uuid.UUID        `json:"id"`
	InstallationID   uuid.UUID        `json:"installationID"`
	ShiftID          uuid.UUID        `json:"shiftID"`
	Type             SubstitutionType `json:"type"`
	Reason           string           `json:"reason"`
	OriginalTeamID   *uuid.UUID       `json:"originalTeamID,omitempty"`
	NewTeamID        *uuid.UUID       `json:"newTeamID,omitempty"`
	OriginalWorkerID *uuid.UUID       `json:"originalWorkerID,omitempty"`
	NewWorkerID      *uuid.UUID       `json:"newWorkerID,omitempty"`
	ActorID          uuid.UUID        `json:"actorID"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type ChangeType string

const (
	ChangeCreate             ChangeType = "CREATE"
	ChangeUpdate             ChangeType = "UPDATE"
	ChangeDelete             ChangeType = "DELETE"
	ChangeTeamAssignment     ChangeType = "TEAM_ASSIGNMENT"
	ChangeTeamSubstitution   ChangeType = "TEAM_SUBSTITUTION"
	ChangeMemberSubstitution ChangeType = "MEMBER_SUBSTITUTION"
	ChangeMemberAddition     ChangeType = "MEMBER_ADDITION"
	ChangeMemberRemoval      ChangeType = "MEMBER_REMOVAL"
)

type VersionHistoryEntry struct {
	ID             uuid.UUID       `json:"id"`
	InstallationID uuid.UUID       `json:"installationID"`
	ShiftID        uuid.UUID       `json:"shiftID"`
	VersionNumber  int32           `json:"versionNumber"`
	ChangeType     ChangeType      `json:"changeType"`
	PreviousState  json.RawMessage `json:"previousState"`
	NewState       json.RawMessage `json:"newState"`
	ChangedFields  []string        `json:"changedFields"`
	Reason         string          `json:"reason"`
	ActorID        uuid.UUID       `json:"actorID"`
	CreatedAt      time.Time       `json:"createdAt"`
}
