package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendS3     = "s3"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig selects and locates the artifact store
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// FeedConfig locates the league feed
type FeedConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Identities []string      `yaml:"identities"`
}

// TriggerConfig names the triggers and their schedules
type TriggerConfig struct {
	ManagerID         string        `yaml:"manager_id"`
	PollerID          string        `yaml:"poller_id"`
	KickoffID         string        `yaml:"kickoff_id"`
	ScoreboardID      string        `yaml:"scoreboard_id"`
	ManagerSpec       string        `yaml:"manager_spec"`
	PollerSpec        string        `yaml:"poller_spec"`
	ScoreboardSpec    string        `yaml:"scoreboard_spec"` // empty disables the scoreboard refresh
	Timezone          string        `yaml:"timezone"`
	InvocationTimeout time.Duration `yaml:"invocation_timeout"`
}

// FanoutConfig tunes subscriber notification
type FanoutConfig struct {
	Stream        string `yaml:"stream"`
	ConsumerGroup string `yaml:"consumer_group"`
	ConsumerID    string `yaml:"consumer_id"`
	BatchSize     int    `yaml:"batch_size"`
	Concurrency   int    `yaml:"concurrency"`
}

// LegacyConfig points at the legacy games table
type LegacyConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// Config holds all application configuration
type Config struct {
	Server        ServerConfig  `yaml:"server"`
	Redis         RedisConfig   `yaml:"redis"`
	Storage       StorageConfig `yaml:"storage"`
	Feed          FeedConfig    `yaml:"feed"`
	Trigger       TriggerConfig `yaml:"trigger"`
	Fanout        FanoutConfig  `yaml:"fanout"`
	Legacy        LegacyConfig  `yaml:"legacy"`
	ReconcileDays int           `yaml:"reconcile_days"`
	IncludeEvents bool          `yaml:"include_events"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Redis: RedisConfig{
			URL: "localhost:6380",
		},
		Storage: StorageConfig{
			Backend: BackendRedis,
		},
		Feed: FeedConfig{
			BaseURL: "https://cdn.nba.com/static/json",
			Timeout: 10 * time.Second,
		},
		Trigger: TriggerConfig{
			ManagerID:         "pbp-manager",
			PollerID:          "pbp-poller",
			KickoffID:         "pbp-kickoff",
			ScoreboardID:      "pbp-scoreboard",
			ManagerSpec:       "0 12 * * *",
			PollerSpec:        "* * * * *",
			ScoreboardSpec:    "*/30 * * * *",
			Timezone:          "America/New_York",
			InvocationTimeout: 60 * time.Second,
		},
		Fanout: FanoutConfig{
			Stream:        "artifacts.updates",
			ConsumerGroup: "pbp-fanout",
			ConsumerID:    "fanout-1",
			BatchSize:     50,
			Concurrency:   10,
		},
		Legacy: LegacyConfig{
			Table: "nba_games",
		},
		ReconcileDays: 3,
		IncludeEvents: true,
	}
}

// LoadConfig builds configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	c.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Storage.Backend = strings.ToLower(getEnv("STORAGE_BACKEND", c.Storage.Backend))
	c.Storage.Bucket = getEnv("S3_BUCKET", c.Storage.Bucket)
	c.Storage.Prefix = getEnv("STORAGE_PREFIX", c.Storage.Prefix)
	c.Storage.Region = getEnv("AWS_REGION", c.Storage.Region)
	c.Storage.Endpoint = getEnv("S3_ENDPOINT", c.Storage.Endpoint)

	c.Feed.BaseURL = getEnv("FEED_BASE_URL", c.Feed.BaseURL)
	c.Feed.Timeout = getEnvDuration("FEED_TIMEOUT", c.Feed.Timeout)
	c.Feed.Identities = getEnvList("FEED_IDENTITIES", c.Feed.Identities)

	c.Trigger.PollerID = getEnv("POLLER_TRIGGER", c.Trigger.PollerID)
	c.Trigger.KickoffID = getEnv("KICKOFF_TRIGGER", c.Trigger.KickoffID)
	c.Trigger.ManagerSpec = getEnv("MANAGER_SCHEDULE", c.Trigger.ManagerSpec)
	c.Trigger.PollerSpec = getEnv("POLLER_SCHEDULE", c.Trigger.PollerSpec)
	if value, ok := os.LookupEnv("SCOREBOARD_SCHEDULE"); ok {
		c.Trigger.ScoreboardSpec = value
	}
	c.Trigger.Timezone = getEnv("TRIGGER_TIMEZONE", c.Trigger.Timezone)
	c.Trigger.InvocationTimeout = getEnvDuration("INVOCATION_TIMEOUT", c.Trigger.InvocationTimeout)

	c.Fanout.Stream = getEnv("FANOUT_STREAM", c.Fanout.Stream)
	c.Fanout.ConsumerGroup = getEnv("CONSUMER_GROUP", c.Fanout.ConsumerGroup)
	c.Fanout.ConsumerID = getEnv("CONSUMER_ID", c.Fanout.ConsumerID)
	c.Fanout.BatchSize = getEnvInt("FANOUT_BATCH_SIZE", c.Fanout.BatchSize)
	c.Fanout.Concurrency = getEnvInt("FANOUT_CONCURRENCY", c.Fanout.Concurrency)

	c.Legacy.DatabaseURL = getEnv("DATABASE_URL", c.Legacy.DatabaseURL)
	c.Legacy.Table = getEnv("LEGACY_TABLE", c.Legacy.Table)

	c.ReconcileDays = getEnvInt("SCHEDULE_RECONCILE_DAYS", c.ReconcileDays)
	c.IncludeEvents = getEnvBool("INCLUDE_EVENTS", c.IncludeEvents)
}

// Validate reports settings the service cannot run without
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendS3:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Trigger.PollerID == "" {
		errs = append(errs, errors.New("POLLER_TRIGGER is required"))
	}
	if c.Trigger.InvocationTimeout <= 0 {
		errs = append(errs, errors.New("INVOCATION_TIMEOUT must be positive"))
	}
	if _, err := time.LoadLocation(c.Trigger.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TRIGGER_TIMEZONE: %w", err))
	}
	if c.ReconcileDays < 0 {
		errs = append(errs, errors.New("SCHEDULE_RECONCILE_DAYS must not be negative"))
	}

	return errors.Join(errs...)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or whole seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
