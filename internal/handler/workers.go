package handler

import (
	"net/http"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
)

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.staffing.ListWorkers(r.Context(), identity(r.Context()).InstallationID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "workers retrieved", workers)
}

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string      `json:"fullName" validate:"required,max=150"`
		Email    string      `json:"email" validate:"omitempty,email"`
		Role     domain.Role `json:"role" validate:"required"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	worker, err := h.staffing.CreateWorker(r.Context(), identity(r.Context()).InstallationID, staffing.CreateWorkerInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.created(w, r, "worker created", worker)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerCtx).(*domain.Worker)

	h.successResponse(w, r, "worker retrieved", worker)
}

func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerCtx).(*domain.Worker)

	var req struct {
		FullName *string      `json:"fullName" validate:"omitnil,min=1,max=150"`
		Email    *string      `json:"email" validate:"omitnil,email"`
		Role     *domain.Role `json:"role"`
		IsActive *bool        `json:"isActive"`
	}
	if err := h.readRequest(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.staffing.UpdateWorker(r.Context(), identity(r.Context()).InstallationID, worker.ID, staffing.UpdateWorkerInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "worker updated", updated)
}

// GetRegistrationContext answers whether the worker may register care
// records. The instant defaults to now. date defaults to today and time
// (HH:MM) to midnight when only date is given, both in the installation's
// time zone.
func (h *Handler) GetRegistrationContext(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerCtx).(*domain.Worker)

	loc := h.staffing.Location()
	at := h.staffing.Now()

	day, err := dateQuery(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	clock := r.URL.Query().Get("time")
	if !day.IsZero() || clock != "" {
		if day.IsZero() {
			day = h.staffing.Today()
		}
		at = day.In(loc)
		if clock != "" {
			parsed, err := time.Parse("15:04", clock)
			if err != nil {
				h.errorResponse(w, r, http.StatusBadRequest, "time must be HH:MM")
				return
			}
			at = at.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
		}
	}

	result, err := h.staffing.RegistrationContext(r.Context(), identity(r.Context()).InstallationID, worker.ID, at)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "registration context retrieved", result)
}

func (h *Handler) CheckWorkerConflict(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerCtx).(*domain.Worker)

	day, err := requiredDateQuery(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	excluding, err := uuidQuery(r, "excludingShiftId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	conflict, err := h.staffing.HasConflict(r.Context(), identity(r.Context()).InstallationID, worker.ID, day, excluding)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "conflict check finished", map[string]bool{"hasConflict": conflict})
}
