package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/compliance"
	"github.com/carehome-dev/care-shift/backend/internal/config"
	"github.com/carehome-dev/care-shift/backend/internal/handler"
	"github.com/carehome-dev/care-shift/backend/internal/lock"
	"github.com/carehome-dev/care-shift/backend/internal/mailqueue"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/carehome-dev/care-shift/backend/internal/scheduler"
	"github.com/carehome-dev/care-shift/backend/internal/staffing"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	/**********************************************
	 * database
	 **********************************************/
	dbpool, err := repository.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to connect to the database", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)
	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Error("failed to apply the schema", "error", err)
			return
		}
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open a channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to declare the queue", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	/**********************************************
	 * services
	 **********************************************/
	staffingOpts, err := staffing.OptionsFromConfig(cfg)
	if err != nil {
		logger.Error("invalid staffing config", "error", err)
		return
	}
	publisher := mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	staffingOpts.Notifier = publisher
	staffingOpts.Logger = logger
	staffingSvc := staffing.NewService(repo, staffingOpts)

	schedulerSvc := scheduler.New(repo, staffingSvc, scheduler.Options{
		Parameters: scheduler.Parameters{
			DefaultDays: cfg.Generation.DefaultDays,
			MaxDays:     cfg.Generation.MaxDays,
		},
		Locker:  lock.New(rdb, "care_shift"),
		LockTTL: time.Duration(cfg.Generation.LockTTL) * time.Second,
		Logger:  logger,
	})

	calc := compliance.NewTableFromConfig(repo, cfg)

	/**********************************************
	 * handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, staffingSvc, schedulerSvc, calc)
	if err != nil {
		logger.Error("failed to create the handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down the server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
