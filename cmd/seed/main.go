package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/seed"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
)

func main() {
	var n int
	var installation string
	var emailDomain string

	flag.IntVar(&n, "n", 10, "number of workers to insert")
	flag.StringVar(&installation, "installation", "", "seed an existing installation instead of creating one")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "domain of the generated worker e-mails")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	actor, err := cfg.SystemActor()
	if err != nil {
		logger.Error("invalid system actor", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	dbpool, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to the database", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply the schema", "error", err)
		return
	}

	var installationID uuid.UUID
	if installation != "" {
		if installationID, err = uuid.Parse(installation); err != nil {
			logger.Error("invalid installation id", slog.String("error", err.Error()))
			return
		}
	} else {
		inst := &domain.Installation{ID: uuid.New(), Name: cfg.Seed.InstallationName, IsActive: true}
		if err := repo.CreateInstallation(ctx, inst); err != nil {
			logger.Error("failed to insert the installation", slog.String("error", err.Error()))
			return
		}
		installationID = inst.ID
		logger.Info("installation inserted", slog.String("id", inst.ID.String()), slog.String("name", inst.Name))
	}

	staffingOpts, err := staffing.OptionsFromConfig(cfg)
	if err != nil {
		logger.Error("invalid staffing config", slog.String("error", err.Error()))
		return
	}
	staffingOpts.Logger = logger
	staffingSvc := staffing.NewService(repo, staffingOpts)
	schedulerSvc := scheduler.New(repo, staffingSvc, scheduler.Options{
		Parameters: scheduler.Parameters{
			DefaultDays: cfg.Generation.DefaultDays,
			MaxDays:     cfg.Generation.MaxDays,
		},
		Logger: logger,
	})

	result, err := seed.New(staffingSvc, schedulerSvc, logger).Run(ctx, installationID, actor, seed.Options{
		Workers:     n,
		EmailDomain: emailDomain,
	})
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("seeding finished",
		slog.Int("workers", len(result.Workers)),
		slog.Int("teams", len(result.Teams)),
		slog.String("pattern", result.Pattern.ID.String()))
}
