package handler

import (
	"net/http"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/google/uuid"
)

func (h *Handler) ListWeeklyPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.scheduler.ListPatterns(r.Context(), identity(r.Context()).InstallationID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "weekly patterns retrieved", patterns)
}

func (h *Handler) CreateWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string       `json:"name" validate:"required,max=100"`
		Description   string       `json:"description" validate:"max=500"`
		NumberOfWeeks int32        `json:"numberOfWeeks" validate:"required,min=1,max=4"`
		StartDate     domain.Date  `json:"startDate" validate:"required"`
		EndDate       *domain.Date `json:"endDate"`
		IsActive      bool         `json:"isActive"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	id := identity(r.Context())
	pattern, err := h.scheduler.CreatePattern(r.Context(), id.InstallationID, id.ActorID, scheduler.CreatePatternInput{
		Name:          req.Name,
		Description:   req.Description,
		NumberOfWeeks: req.NumberOfWeeks,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      req.IsActive,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "weekly pattern created", pattern)
}

func (h *Handler) GetWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	h.successResponse(w, r, "weekly pattern retrieved", pattern)
}

func (h *Handler) UpdateWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	var req struct {
		Name          *string      `json:"name" validate:"omitnil,min=1,max=100"`
		Description   *string      `json:"description" validate:"omitnil,max=500"`
		NumberOfWeeks *int32       `json:"numberOfWeeks" validate:"omitnil,min=1,max=4"`
		StartDate     *domain.Date `json:"startDate"`
		EndDate       *domain.Date `json:"endDate"`
		ClearEndDate  bool         `json:"clearEndDate"`
		IsActive      *bool        `json:"isActive"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.scheduler.UpdatePattern(r.Context(), identity(r.Context()).InstallationID, pattern.ID, scheduler.UpdatePatternInput{
		Name:          req.Name,
		Description:   req.Description,
		NumberOfWeeks: req.NumberOfWeeks,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ClearEndDate:  req.ClearEndDate,
		IsActive:      req.IsActive,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "weekly pattern updated", updated)
}

func (h *Handler) DeleteWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	if err := h.scheduler.DeletePattern(r.Context(), identity(r.Context()).InstallationID, pattern.ID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "weekly pattern deleted", nil)
}

func (h *Handler) ActivateWeeklyPattern(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	activated, err := h.scheduler.ActivatePattern(r.Context(), identity(r.Context()).InstallationID, pattern.ID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "weekly pattern activated", activated)
}

func (h *Handler) ListPatternAssignments(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	assignments, err := h.scheduler.ListAssignments(r.Context(), identity(r.Context()).InstallationID, pattern.ID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "pattern assignments retrieved", assignments)
}

func (h *Handler) CreatePatternAssignment(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	var req struct {
		WeekIndex  int32      `json:"weekIndex" validate:"min=0,max=3"`
		DayOfWeek  int32      `json:"dayOfWeek" validate:"min=0,max=6"`
		TemplateID uuid.UUID  `json:"templateId" validate:"required"`
		TeamID     *uuid.UUID `json:"teamId"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.scheduler.CreateAssignment(r.Context(), identity(r.Context()).InstallationID, pattern.ID, scheduler.AssignmentInput{
		WeekIndex:  req.WeekIndex,
		DayOfWeek:  req.DayOfWeek,
		TemplateID: req.TemplateID,
		TeamID:     req.TeamID,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "pattern assignment created", assignment)
}

func (h *Handler) UpdatePatternAssignment(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	assignmentID, err := uuidParam(r, "assignmentId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req struct {
		TeamID *uuid.UUID `json:"teamId"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, err := h.scheduler.UpdateAssignment(r.Context(), identity(r.Context()).InstallationID, pattern.ID, assignmentID, req.TeamID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "pattern assignment updated", assignment)
}

func (h *Handler) DeletePatternAssignment(w http.ResponseWriter, r *http.Request) {
	pattern := r.Context().Value(PatternCtx).(*domain.WeeklyPattern)

	assignmentID, err := uuidParam(r, "assignmentId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.scheduler.DeleteAssignment(r.Context(), identity(r.Context()).InstallationID, pattern.ID, assignmentID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "pattern assignment deleted", nil)
}
