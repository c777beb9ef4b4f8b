package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCaregiver          Role = "caregiver"
	RoleNurse              Role = "nurse"
	RoleNursingTechnician  Role = "nursing_technician"
	RoleNursingAssistant   Role = "nursing_assistant"
	RoleNursingCoordinator Role = "nursing_coordinator"
	RoleTechnicalManager   Role = "technical_manager"
	RoleAdministrator      Role = "administrator"
)

var Roles = []Role{
	RoleCaregiver,
	RoleNurse,
	RoleNursingTechnician,
	RoleNursingAssistant,
	RoleNursingCoordinator,
	RoleTechnicalManager,
	RoleAdministrator,
}

type Worker struct {
	ID             uuid.UUID `json:"id"`
	InstallationID uuid.UUID `json:"installationID"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

type Installation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
