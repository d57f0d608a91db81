package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default server addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != config.BackendRedis {
		t.Errorf("Expected default backend 'redis', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Trigger.ManagerSpec != "0 12 * * *" {
		t.Errorf("Expected daily manager schedule, got '%s'", cfg.Trigger.ManagerSpec)
	}
	if cfg.Fanout.BatchSize != 50 || cfg.Fanout.Concurrency != 10 {
		t.Errorf("Expected fanout 50/10, got %d/%d", cfg.Fanout.BatchSize, cfg.Fanout.Concurrency)
	}
	if cfg.ReconcileDays != 3 {
		t.Errorf("Expected 3 reconcile days, got %d", cfg.ReconcileDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadConfig_CustomValues(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("S3_BUCKET", "pbp-artifacts")
	t.Setenv("FEED_TIMEOUT", "15")
	t.Setenv("FEED_IDENTITIES", "agent-a, agent-b,")
	t.Setenv("INVOCATION_TIMEOUT", "2m")
	t.Setenv("SCHEDULE_RECONCILE_DAYS", "5")
	t.Setenv("INCLUDE_EVENTS", "false")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected server addr ':9090', got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != config.BackendS3 || cfg.Storage.Bucket != "pbp-artifacts" {
		t.Errorf("Expected s3 backend with bucket, got %+v", cfg.Storage)
	}
	if cfg.Feed.Timeout != 15*time.Second {
		t.Errorf("Expected 15s feed timeout, got %v", cfg.Feed.Timeout)
	}
	if len(cfg.Feed.Identities) != 2 || cfg.Feed.Identities[1] != "agent-b" {
		t.Errorf("Expected two identities, got %v", cfg.Feed.Identities)
	}
	if cfg.Trigger.InvocationTimeout != 2*time.Minute {
		t.Errorf("Expected 2m invocation timeout, got %v", cfg.Trigger.InvocationTimeout)
	}
	if cfg.ReconcileDays != 5 {
		t.Errorf("Expected 5 reconcile days, got %d", cfg.ReconcileDays)
	}
	if cfg.IncludeEvents {
		t.Error("Expected events to be disabled")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":7070"
storage:
  backend: memory
trigger:
  poller_id: nightly-poller
  invocation_timeout: 45s
fanout:
  batch_size: 20
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDR", ":6060")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":6060" {
		t.Errorf("Expected environment to override file, got '%s'", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != config.BackendMemory {
		t.Errorf("Expected memory backend from file, got '%s'", cfg.Storage.Backend)
	}
	if cfg.Trigger.PollerID != "nightly-poller" || cfg.Trigger.InvocationTimeout != 45*time.Second {
		t.Errorf("Unexpected trigger config %+v", cfg.Trigger)
	}
	if cfg.Fanout.BatchSize != 20 || cfg.Fanout.Concurrency != 10 {
		t.Errorf("Expected file to override only batch size, got %+v", cfg.Fanout)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := config.LoadConfig(); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"defaults", func(c *config.Config) {}, ""},
		{"s3 without bucket", func(c *config.Config) { c.Storage.Backend = config.BackendS3 }, "S3_BUCKET"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "ftp" }, "unknown storage backend"},
		{"missing poller trigger", func(c *config.Config) { c.Trigger.PollerID = "" }, "POLLER_TRIGGER"},
		{"bad timezone", func(c *config.Config) { c.Trigger.Timezone = "Mars/Olympus" }, "TRIGGER_TIMEZONE"},
		{"negative reconcile", func(c *config.Config) { c.ReconcileDays = -1 }, "SCHEDULE_RECONCILE_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
