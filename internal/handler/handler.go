package handler

import (
	"github.com/carehome-dev/care-shift/backend/internal/compliance"
	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// managers may change the shared template catalog.
var managers = []domain.Role{domain.RoleTechnicalManager, domain.RoleAdministrator}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator
	staffing   *staffing.Service
	scheduler  *scheduler.Service
	compliance compliance.Calculator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, staffingSvc *staffing.Service, schedulerSvc *scheduler.Service, calc compliance.Calculator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		staffing:   staffingSvc,
		scheduler:  schedulerSvc,
		compliance: calc,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/generate", h.GenerateShifts)
			r.Route("/{id}", func(r chi.Router) {
				// history outlives the shift, so these skip the loader
				r.Get("/history", h.GetShiftHistory)
				r.Get("/substitutions", h.GetShiftSubstitutions)

				r.Group(func(r chi.Router) {
					r.Use(h.shift)
					r.Get("/", h.GetShift)
					r.Patch("/", h.UpdateShift)
					r.Delete("/", h.DeleteShift)
					r.Post("/team", h.AssignTeam)
					r.Post("/team/substitute", h.SubstituteTeam)
					r.Post("/members", h.AddShiftMember)
					r.Post("/members/substitute", h.SubstituteShiftMember)
					r.Delete("/members/{workerId}", h.RemoveShiftMember)
				})
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.Get("/", h.ListShiftTemplates)
			r.With(h.RequiredRole(managers)).Post("/", h.CreateShiftTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredRole(managers)).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredRole(managers)).Put("/override", h.SetTemplateOverride)
				r.With(h.RequiredRole(managers)).Delete("/override", h.ClearTemplateOverride)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.ListTeams)
			r.Post("/", h.CreateTeam)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.team)
				r.Get("/", h.GetTeam)
				r.Patch("/", h.UpdateTeam)
				r.Delete("/", h.DeleteTeam)
				r.Post("/members", h.AddTeamMember)
				r.Delete("/members/{workerId}", h.RemoveTeamMember)
			})
		})

		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.worker)
				r.Get("/", h.GetWorker)
				r.Patch("/", h.UpdateWorker)
				r.Get("/registration-context", h.GetRegistrationContext)
				r.Get("/conflicts", h.CheckWorkerConflict)
			})
		})

		r.Route("/weekly-patterns", func(r chi.Router) {
			r.Get("/", h.ListWeeklyPatterns)
			r.Post("/", h.CreateWeeklyPattern)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.weeklyPattern)
				r.Get("/", h.GetWeeklyPattern)
				r.Patch("/", h.UpdateWeeklyPattern)
				r.Delete("/", h.DeleteWeeklyPattern)
				r.Post("/activate", h.ActivateWeeklyPattern)
				r.Get("/assignments", h.ListPatternAssignments)
				r.Post("/assignments", h.CreatePatternAssignment)
				r.Patch("/assignments/{assignmentId}", h.UpdatePatternAssignment)
				r.Delete("/assignments/{assignmentId}", h.DeletePatternAssignment)
			})
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/minimum-required", h.GetMinimumRequired)
			r.Get("/coverage", h.GetCoverageReport)
		})
	})
}
