package handler

import (
	"net/http"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
)

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	var in staffing.ListShiftsInput
	var err error
	if in.From, err = dateQuery(r, "from"); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if in.To, err = dateQuery(r, "to"); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if in.TemplateID, err = uuidQuery(r, "templateId"); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if in.TeamID, err = uuidQuery(r, "teamId"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.staffing.ListShifts(r.Context(), identity(r.Context()).InstallationID, in)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts retrieved", shifts)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       domain.Date `json:"date" validate:"required"`
		TemplateID uuid.UUID   `json:"templateId" validate:"required"`
		TeamID     *uuid.UUID  `json:"teamId"`
		Notes      string      `json:"notes" validate:"max=2000"`
		Reason     string      `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	shift, err := h.staffing.CreateShift(r.Context(), id.InstallationID, id.ActorID, staffing.CreateShiftInput{
		Date:       req.Date,
		TemplateID: req.TemplateID,
		TeamID:     req.TeamID,
		Notes:      req.Notes,
		Reason:     req.Reason,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "shift created", shift)
}

func (h *Handler) GenerateShifts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int         `json:"days" validate:"gte=0"`
		From domain.Date `json:"from"`
	}
	if r.ContentLength != 0 {
		if err := h.readRequest(r, &req); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	id := identity(r.Context())
	result, err := h.scheduler.Generate(r.Context(), id.InstallationID, id.ActorID, scheduler.GenerateOptions{
		Days: req.Days,
		From: req.From,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift generation finished", result)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	h.successResponse(w, r, "shift retrieved", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Status  *domain.ShiftStatus `json:"status" validate:"omitnil,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
		Notes   *string             `json:"notes" validate:"omitnil,max=2000"`
		Version *int32              `json:"version"`
		Reason  string              `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.UpdateShift(r.Context(), id.InstallationID, id.ActorID, shift.ID, staffing.UpdateShiftInput{
		Status:  req.Status,
		Notes:   req.Notes,
		Version: req.Version,
		Reason:  req.Reason,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift updated", updated)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	reason := r.URL.Query().Get("reason")

	id := identity(r.Context())
	if err := h.staffing.DeleteShift(r.Context(), id.InstallationID, id.ActorID, shift.ID, reason); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}

func (h *Handler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		TeamID uuid.UUID `json:"teamId" validate:"required"`
		Reason string    `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.AssignTeam(r.Context(), id.InstallationID, id.ActorID, shift.ID, req.TeamID, req.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "team assigned", updated)
}

func (h *Handler) SubstituteTeam(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		OriginalTeamID uuid.UUID `json:"originalTeamId" validate:"required"`
		NewTeamID      uuid.UUID `json:"newTeamId" validate:"required"`
		Reason         string    `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.SubstituteTeam(r.Context(), id.InstallationID, id.ActorID, shift.ID, req.OriginalTeamID, req.NewTeamID, req.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "team substituted", updated)
}

func (h *Handler) AddShiftMember(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		WorkerID uuid.UUID `json:"workerId" validate:"required"`
		Reason   string    `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.AddMember(r.Context(), id.InstallationID, id.ActorID, shift.ID, req.WorkerID, req.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "member added", updated)
}

func (h *Handler) SubstituteShiftMember(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		OriginalWorkerID uuid.UUID `json:"originalWorkerId" validate:"required"`
		NewWorkerID      uuid.UUID `json:"newWorkerId" validate:"required"`
		Reason           string    `json:"reason" validate:"max=500"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.SubstituteMember(r.Context(), id.InstallationID, id.ActorID, shift.ID, req.OriginalWorkerID, req.NewWorkerID, req.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "member substituted", updated)
}

func (h *Handler) RemoveShiftMember(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	workerID, err := uuidParam(r, "workerId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	updated, err := h.staffing.RemoveMember(r.Context(), id.InstallationID, id.ActorID, shift.ID, workerID, r.URL.Query().Get("reason"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "member removed", updated)
}

func (h *Handler) GetShiftHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	entries, err := h.staffing.History(r.Context(), identity(r.Context()).InstallationID, id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift history retrieved", entries)
}

func (h *Handler) GetShiftSubstitutions(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	subs, err := h.staffing.Substitutions(r.Context(), identity(r.Context()).InstallationID, id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift substitutions retrieved", subs)
}
