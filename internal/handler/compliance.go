package handler

import (
	"net/http"

	"github.com/google/uuid"
)

func (h *Handler) GetMinimumRequired(w http.ResponseWriter, r *http.Request) {
	day, err := requiredDateQuery(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	templateID, err := uuid.Parse(r.URL.Query().Get("templateId"))
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid templateId")
		return
	}

	minimum, err := h.compliance.MinimumRequiredWorkers(r.Context(), identity(r.Context()).InstallationID, day, templateID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "minimum staffing retrieved", map[string]int{"minimumRequired": minimum})
}

func (h *Handler) GetCoverageReport(w http.ResponseWriter, r *http.Request) {
	start, err := requiredDateQuery(r, "startDate")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	end, err := requiredDateQuery(r, "endDate")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := h.compliance.CoverageReport(r.Context(), identity(r.Context()).InstallationID, start, end)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "coverage report retrieved", report)
}
