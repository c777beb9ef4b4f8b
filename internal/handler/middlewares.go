package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := tokenFromRequest(r)
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "not logged in")
			return
		}

		id, err := parseToken(h.config.JWT.Secret, tokenString)
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityCtx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, identity(r.Context()).Role) {
				h.errorResponse(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.BadRequest("invalid %s", name)
	}
	return id, nil
}

// loader builds a middleware that loads the record named by the {id} URL
// parameter and puts it in the request context.
func loader[T any](h *Handler, key ContextKey, load func(ctx context.Context, installationID, id uuid.UUID) (T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuidParam(r, "id")
			if err != nil {
				h.badRequest(w, r, err)
				return
			}

			record, err := load(r.Context(), identity(r.Context()).InstallationID, id)
			if err != nil {
				h.serviceError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), key, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handler) shift(next http.Handler) http.Handler {
	return loader(h, ShiftCtx, h.staffing.GetShift)(next)
}

func (h *Handler) team(next http.Handler) http.Handler {
	return loader(h, TeamCtx, h.staffing.GetTeam)(next)
}

func (h *Handler) worker(next http.Handler) http.Handler {
	return loader(h, WorkerCtx, h.staffing.GetWorker)(next)
}

func (h *Handler) shiftTemplate(next http.Handler) http.Handler {
	return loader(h, TemplateCtx, h.staffing.GetTemplate)(next)
}

func (h *Handler) weeklyPattern(next http.Handler) http.Handler {
	return loader(h, PatternCtx, h.scheduler.GetPattern)(next)
}
