// Command generate materializes the active weekly pattern of every
// installation into shifts. It is meant to run from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/lock"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func main() {
	var days int
	var from string
	var installation string

	flag.IntVar(&days, "days", 0, "number of days to generate (0 uses GENERATION_DEFAULT_DAYS)")
	flag.StringVar(&from, "from", "", "first day to generate, YYYY-MM-DD (default today)")
	flag.StringVar(&installation, "installation", "", "only generate for this installation id")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, days, from, installation); err != nil {
		logger.Error("shift generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, days int, from, installation string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	actor, err := cfg.SystemActor()
	if err != nil {
		return err
	}

	opts := scheduler.GenerateOptions{Days: days}
	if from != "" {
		if opts.From, err = domain.ParseDate(from); err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
	}

	ctx := context.Background()

	dbpool, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer dbpool.Close()
	repo := repository.NewRepository(cfg, dbpool)

	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	staffingOpts, err := staffing.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	staffingOpts.Logger = logger
	staffingSvc := staffing.NewService(repo, staffingOpts)

	svc := scheduler.New(repo, staffingSvc, scheduler.Options{
		Parameters: scheduler.Parameters{
			DefaultDays: cfg.Generation.DefaultDays,
			MaxDays:     cfg.Generation.MaxDays,
		},
		Locker:  lock.New(rdb, "care_shift"),
		LockTTL: time.Duration(cfg.Generation.LockTTL) * time.Second,
		Logger:  logger,
	})

	if installation != "" {
		id, err := uuid.Parse(installation)
		if err != nil {
			return fmt.Errorf("invalid -installation: %w", err)
		}
		_, err = svc.Generate(ctx, id, actor, opts)
		return err
	}

	results, err := svc.GenerateAll(ctx, repo, actor, opts)
	logger.Info("generation finished", slog.Int("installations", len(results)))
	return err
}
