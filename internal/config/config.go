package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		TransactionRetries int    `env:"TRANSACTION_RETRIES" envDefault:"3"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Staffing struct {
		EligibleRoles             []string `env:"ELIGIBLE_ROLES" envDefault:"caregiver,nurse,nursing_technician,nursing_assistant"`
		BypassRoles               []string `env:"BYPASS_ROLES" envDefault:"nurse,nursing_coordinator,technical_manager"`
		PostShiftToleranceMinutes int      `env:"POST_SHIFT_TOLERANCE_MINUTES" envDefault:"30"`
		Timezone                  string   `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
	} `envPrefix:"STAFFING_"`
	Generation struct {
		DefaultDays   int    `env:"DEFAULT_DAYS" envDefault:"14"`
		MaxDays       int    `env:"MAX_DAYS" envDefault:"90"`
		LockTTL       int    `env:"LOCK_TTL" envDefault:"300"` // seconds
		SystemActorID string `env:"SYSTEM_ACTOR_ID" envDefault:"00000000-0000-0000-0000-000000000000"`
	} `envPrefix:"GENERATION_"`
	Compliance struct {
		DefaultMinimum int            `env:"DEFAULT_MINIMUM" envDefault:"1"`
		MinimumByType  map[string]int `env:"MINIMUM_BY_TYPE" envDefault:"6H:2,8H:2,12H:3"`
	} `envPrefix:"COMPLIANCE_"`
	Seed struct {
		InstallationName string `env:"INSTALLATION_NAME" envDefault:"Residencial Exemplo"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := cfg.SystemActor(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Staffing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STAFFING_TIMEZONE %q: %w", c.Staffing.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SystemActor() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Generation.SystemActorID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid GENERATION_SYSTEM_ACTOR_ID: %w", err)
	}
	return id, nil
}
