package handler

import (
	"net/http"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.staffing.ListTeams(r.Context(), identity(r.Context()).InstallationID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "teams retrieved", teams)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Color       string `json:"color" validate:"omitempty,hexcolor"`
		Description string `json:"description" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	team, err := h.staffing.CreateTeam(r.Context(), id.InstallationID, id.ActorID, staffing.CreateTeamInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "team created", team)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team := r.Context().Value(TeamCtx).(*domain.Team)

	h.successResponse(w, r, "team retrieved", team)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	team := r.Context().Value(TeamCtx).(*domain.Team)

	var req struct {
		Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
		Color       *string `json:"color" validate:"omitnil,hexcolor"`
		Description *string `json:"description" validate:"omitnil,max=500"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.staffing.UpdateTeam(r.Context(), identity(r.Context()).InstallationID, team.ID, staffing.UpdateTeamInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "team updated", updated)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	team := r.Context().Value(TeamCtx).(*domain.Team)

	id := identity(r.Context())
	if err := h.staffing.DeleteTeam(r.Context(), id.InstallationID, id.ActorID, team.ID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "team deleted", nil)
}

func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	team := r.Context().Value(TeamCtx).(*domain.Team)

	var req struct {
		WorkerID uuid.UUID `json:"workerId" validate:"required"`
		Role     string    `json:"role" validate:"max=50"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	member, err := h.staffing.AddTeamMember(r.Context(), id.InstallationID, id.ActorID, team.ID, req.WorkerID, req.Role)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "team member added", member)
}

func (h *Handler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	team := r.Context().Value(TeamCtx).(*domain.Team)

	workerID, err := uuidParam(r, "workerId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	if err := h.staffing.RemoveTeamMember(r.Context(), id.InstallationID, id.ActorID, team.ID, workerID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "team member removed", nil)
}
