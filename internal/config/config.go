package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Callback CallbackConfig
	Digest   DigestConfig
	Planning PlanningConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// CallbackConfig configures the outbound webhook used for completion events.
// An empty URL disables callbacks entirely.
type CallbackConfig struct {
	WebhookURL string
	AuthToken  string
}

// DigestConfig holds scheduler-related settings for the at-risk order digest.
type DigestConfig struct {
	CronSchedule string
}

// PlanningConfig tunes the planning and simulation engines.
type PlanningConfig struct {
	BOMMaxDepth      int
	WarnThreshold    float64
	TriangularSpread float64
	ReworkRetryCap   int
	ScenarioWorkers  int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	bomMaxDepth, err := getenvInt("BOM_MAX_DEPTH", 20)
	if err != nil {
		return nil, err
	}
	warnThreshold, err := getenvFloat("CAPACITY_WARN_THRESHOLD", 0.9)
	if err != nil {
		return nil, err
	}
	spread, err := getenvFloat("SIM_TRIANGULAR_SPREAD", 0.25)
	if err != nil {
		return nil, err
	}
	retryCap, err := getenvInt("SIM_REWORK_RETRY_CAP", 3)
	if err != nil {
		return nil, err
	}
	workers, err := getenvInt("SCENARIO_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "capaplan"),
		},
		Callback: CallbackConfig{
			WebhookURL: os.Getenv("CALLBACK_WEBHOOK_URL"),
			AuthToken:  os.Getenv("CALLBACK_AUTH_TOKEN"),
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 6 * * *"),
		},
		Planning: PlanningConfig{
			BOMMaxDepth:      bomMaxDepth,
			WarnThreshold:    warnThreshold,
			TriangularSpread: spread,
			ReworkRetryCap:   retryCap,
			ScenarioWorkers:  workers,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and sane.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if c.Planning.BOMMaxDepth < 1 {
		return errors.New("BOM_MAX_DEPTH must be at least 1")
	}
	if c.Planning.WarnThreshold <= 0 || c.Planning.WarnThreshold > 1 {
		return errors.New("CAPACITY_WARN_THRESHOLD must be within (0,1]")
	}
	if c.Planning.TriangularSpread < 0 || c.Planning.TriangularSpread >= 1 {
		return errors.New("SIM_TRIANGULAR_SPREAD must be within [0,1)")
	}
	if c.Planning.ReworkRetryCap < 1 {
		return errors.New("SIM_REWORK_RETRY_CAP must be at least 1")
	}
	if c.Planning.ScenarioWorkers < 1 {
		return errors.New("SCENARIO_WORKERS must be at least 1")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
