package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gym_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	DB       DBConfig
	Redis    RedisConfig
	Log      utils.LoggerConfig
	Location *time.Location

	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins []string
	PhoneRegion        string

	AdminUsername string
	AdminPassword string

	StatsCacheTTL           time.Duration
	LedgerReconcileSchedule string
	ExpirySweepSchedule     string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// DSN renders a lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string // empty disables the cache
	Password string
	DB       int
}

const devJWTSecret = "dev-only-gym-backend-secret-change-me"

// Load reads an optional .env file then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	tzName := utils.Getenv("TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Port:            utils.Getenv("PORT", "8080"),
		GinMode:         utils.Getenv("GIN_MODE", "release"),
		ShutdownTimeout: utils.GetenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DB: DBConfig{
			Host:         utils.Getenv("DB_HOST", "localhost"),
			Port:         utils.Getenv("DB_PORT", "5432"),
			User:         utils.Getenv("DB_USER", "gym_user"),
			Password:     utils.Getenv("DB_PASSWORD", "gym_password"),
			Name:         utils.Getenv("DB_NAME", "gym_db"),
			SSLMode:      utils.Getenv("DB_SSLMODE", "disable"),
			MaxOpenConns: utils.GetenvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
			AutoMigrate:  utils.GetenvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     utils.Getenv("REDIS_ADDR", ""),
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			DB:       utils.GetenvInt("REDIS_DB", 0),
		},
		Log: utils.LoggerConfig{
			Level:      utils.Getenv("LOG_LEVEL", "info"),
			File:       utils.Getenv("LOG_FILE", ""),
			MaxSizeMB:  utils.GetenvInt("LOG_MAX_SIZE_MB", 64),
			MaxBackups: utils.GetenvInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: utils.GetenvInt("LOG_MAX_AGE_DAYS", 30),
		},
		Location:                loc,
		JWTSecret:               utils.Getenv("JWT_SECRET", ""),
		JWTTTL:                  utils.GetenvDuration("JWT_TTL", utils.DefaultTokenTTL),
		CORSAllowedOrigins:      utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		PhoneRegion:             utils.Getenv("PHONE_REGION", utils.DefaultPhoneRegion),
		AdminUsername:           utils.Getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:           utils.Getenv("ADMIN_PASSWORD", ""),
		StatsCacheTTL:           utils.GetenvDuration("STATS_CACHE_TTL", time.Minute),
		LedgerReconcileSchedule: utils.Getenv("LEDGER_RECONCILE_SCHEDULE", "@every 1h"),
		ExpirySweepSchedule:     utils.Getenv("EXPIRY_SWEEP_SCHEDULE", "0 7 * * *"),
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return nil, errors.New("JWT_SECRET must be set in release mode")
		}
		utils.LogWarn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}
