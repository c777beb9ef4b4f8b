package domain

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID             uuid.UUID    `json:"id"`
	InstallationID uuid.UUID    `json:"installationID"`
	Name           string       `json:"name"`
	Color          string       `json:"color"`
	Description    string       `json:"description"`
	IsActive       bool         `json:"isActive"`
	CreatedBy      uuid.UUID    `json:"createdBy"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	DeletedAt      *time.Time   `json:"deletedAt,omitempty"`
	DeletedBy      *uuid.UUID   `json:"deletedBy,omitempty"`
	Members        []TeamMember `json:"members,omitempty"`
	Version        int32        `json:"-"`
}

type TeamMember struct {
	ID        uuid.UUID  `json:"id"`
	TeamID    uuid.UUID  `json:"teamID"`
	WorkerID  uuid.UUID  `json:"workerID"`
	Role      string     `json:"role"`
	AddedBy   uuid.UUID  `json:"addedBy"`
	AddedAt   time.Time  `json:"addedAt"`
	RemovedAt *time.Time `json:"removedAt,omitempty"`
	RemovedBy *uuid.UUID `json:"removedBy,omitempty"`
	Worker    *Worker    `json:"worker,omitempty"`
}
