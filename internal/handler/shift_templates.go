package handler

import (
	"net/http"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
)

func (h *Handler) ListShiftTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.staffing.ListTemplates(r.Context(), identity(r.Context()).InstallationID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift templates retrieved", templates)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type            domain.TemplateType `json:"type" validate:"required,oneof=6H 8H 12H CUSTOM"`
		Name            string              `json:"name" validate:"required,max=100"`
		StartTime       string              `json:"startTime" validate:"required"`
		EndTime         string              `json:"endTime" validate:"required"`
		DurationMinutes int32               `json:"durationMinutes" validate:"required,gt=0,lte=1440"`
		DisplayOrder    int32               `json:"displayOrder" validate:"gte=0"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tmpl, err := h.staffing.CreateTemplate(r.Context(), staffing.CreateTemplateInput{
		Type:            req.Type,
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "shift template created", tmpl)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(TemplateCtx).(*domain.ShiftTemplate)

	h.successResponse(w, r, "shift template retrieved", tmpl)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(TemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		Type            *domain.TemplateType `json:"type" validate:"omitnil,oneof=6H 8H 12H CUSTOM"`
		Name            *string              `json:"name" validate:"omitnil,min=1,max=100"`
		StartTime       *string              `json:"startTime"`
		EndTime         *string              `json:"endTime"`
		DurationMinutes *int32               `json:"durationMinutes" validate:"omitnil,gt=0,lte=1440"`
		IsActive        *bool                `json:"isActive"`
		DisplayOrder    *int32               `json:"displayOrder" validate:"omitnil,gte=0"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.staffing.UpdateTemplate(r.Context(), identity(r.Context()).InstallationID, tmpl.ID, staffing.UpdateTemplateInput{
		Type:            req.Type,
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift template updated", updated)
}

func (h *Handler) SetTemplateOverride(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(TemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		Name            *string `json:"name" validate:"omitnil,min=1,max=100"`
		StartTime       *string `json:"startTime"`
		EndTime         *string `json:"endTime"`
		DurationMinutes *int32  `json:"durationMinutes" validate:"omitnil,gt=0,lte=1440"`
		Enabled         *bool   `json:"enabled"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.staffing.SetOverride(r.Context(), identity(r.Context()).InstallationID, tmpl.ID, staffing.OverrideInput{
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Enabled:         req.Enabled,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift template override saved", updated)
}

func (h *Handler) ClearTemplateOverride(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(TemplateCtx).(*domain.ShiftTemplate)

	if err := h.staffing.ClearOverride(r.Context(), identity(r.Context()).InstallationID, tmpl.ID); err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift template override removed", nil)
}
