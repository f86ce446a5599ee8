package worker

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CronSchedule != "*/5 * * * *" {
		t.Errorf("Expected CronSchedule '*/5 * * * *', got '%s'", config.CronSchedule)
	}
	if config.Timezone != "UTC" {
		t.Errorf("Expected Timezone 'UTC', got '%s'", config.Timezone)
	}
	if config.IngestParallelism != 4 {
		t.Errorf("Expected IngestParallelism 4, got %d", config.IngestParallelism)
	}
	if config.IngestTimeout != 10*time.Minute {
		t.Errorf("Expected IngestTimeout 10m, got %v", config.IngestTimeout)
	}
	if config.HealthPort != 9091 {
		t.Errorf("Expected HealthPort 9091, got %d", config.HealthPort)
	}
	if config.InboxDir == "" {
		t.Error("Expected a default InboxDir")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestDefaultConfig_Immutability(t *testing.T) {
	config1 := DefaultConfig()
	config1.IngestParallelism = 20
	config1.InboxDir = "/elsewhere"

	config2 := DefaultConfig()
	if config2.IngestParallelism != 4 {
		t.Error("DefaultConfig should return a fresh value")
	}
	if config2.InboxDir == "/elsewhere" {
		t.Error("DefaultConfig should return a fresh value")
	}
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerConfig)
		wantErr bool
	}{
		{"defaults", func(*WorkerConfig) {}, false},
		{"invalid cron", func(c *WorkerConfig) { c.CronSchedule = "invalid" }, true},
		{"empty cron", func(c *WorkerConfig) { c.CronSchedule = "" }, true},
		{"invalid timezone", func(c *WorkerConfig) { c.Timezone = "Invalid/Zone" }, true},
		{"empty timezone", func(c *WorkerConfig) { c.Timezone = "" }, true},
		{"parallelism zero", func(c *WorkerConfig) { c.IngestParallelism = 0 }, true},
		{"parallelism min", func(c *WorkerConfig) { c.IngestParallelism = 1 }, false},
		{"parallelism max", func(c *WorkerConfig) { c.IngestParallelism = 32 }, false},
		{"parallelism too high", func(c *WorkerConfig) { c.IngestParallelism = 33 }, true},
		{"timeout zero", func(c *WorkerConfig) { c.IngestTimeout = 0 }, true},
		{"timeout below min", func(c *WorkerConfig) { c.IngestTimeout = 30 * time.Second }, true},
		{"timeout max", func(c *WorkerConfig) { c.IngestTimeout = 4 * time.Hour }, false},
		{"timeout above max", func(c *WorkerConfig) { c.IngestTimeout = 5 * time.Hour }, true},
		{"health port too low", func(c *WorkerConfig) { c.HealthPort = 1023 }, true},
		{"health port too high", func(c *WorkerConfig) { c.HealthPort = 65536 }, true},
		{"health port boundary", func(c *WorkerConfig) { c.HealthPort = 1024 }, false},
		{"empty inbox", func(c *WorkerConfig) { c.InboxDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkerConfig_Validate_MultipleErrors(t *testing.T) {
	config := WorkerConfig{
		CronSchedule:      "invalid",
		Timezone:          "Invalid/Zone",
		IngestParallelism: 0,
		IngestTimeout:     0,
		HealthPort:        80,
	}

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	for _, want := range []string{"cron schedule", "timezone", "ingest parallelism", "ingest timeout", "health port", "inbox dir"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got: %v", want, err)
		}
	}
}

// promauto registers globally, so the package shares one metrics instance.
var globalTestMetrics = NewWorkerMetrics()

var workerEnvKeys = []string{
	"CRON_SCHEDULE",
	"WORKER_TIMEZONE",
	"INGEST_PARALLELISM",
	"INGEST_TIMEOUT",
	"WORKER_HEALTH_PORT",
	"INBOX_DIR",
	"ARCHIVE_DIR",
	"FAILED_DIR",
}

// setEnv is a test helper that sets an environment variable and fails the test if it errors
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Failed to set %s: %v", key, err)
	}
}

// clearEnv unsets every worker variable now and again when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	unset := func() {
		for _, key := range workerEnvKeys {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("Failed to unset %s: %v", key, err)
			}
		}
	}
	unset()
	t.Cleanup(unset)
}

func loadWithBuffer(t *testing.T) (*WorkerConfig, string) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return config, buf.String()
}

func TestLoadConfigFromEnv_AllEnvVarsValid(t *testing.T) {
	clearEnv(t)
	setEnv(t, "CRON_SCHEDULE", "0 * * * *")
	setEnv(t, "WORKER_TIMEZONE", "America/New_York")
	setEnv(t, "INGEST_PARALLELISM", "8")
	setEnv(t, "INGEST_TIMEOUT", "1h")
	setEnv(t, "WORKER_HEALTH_PORT", "8080")
	setEnv(t, "INBOX_DIR", "/data/inbox")
	setEnv(t, "ARCHIVE_DIR", "/data/archive")
	setEnv(t, "FAILED_DIR", "/data/failed")

	config, logs := loadWithBuffer(t)

	if config.CronSchedule != "0 * * * *" {
		t.Errorf("Expected CronSchedule '0 * * * *', got '%s'", config.CronSchedule)
	}
	if config.Timezone != "America/New_York" {
		t.Errorf("Expected Timezone 'America/New_York', got '%s'", config.Timezone)
	}
	if config.IngestParallelism != 8 {
		t.Errorf("Expected IngestParallelism 8, got %d", config.IngestParallelism)
	}
	if config.IngestTimeout != time.Hour {
		t.Errorf("Expected IngestTimeout 1h, got %v", config.IngestTimeout)
	}
	if config.HealthPort != 8080 {
		t.Errorf("Expected HealthPort 8080, got %d", config.HealthPort)
	}
	if config.InboxDir != "/data/inbox" || config.ArchiveDir != "/data/archive" || config.FailedDir != "/data/failed" {
		t.Errorf("Directories not loaded: %+v", config)
	}
	if logs != "" {
		t.Errorf("Expected no warnings, got: %s", logs)
	}
}

func TestLoadConfigFromEnv_MissingEnvVars(t *testing.T) {
	clearEnv(t)

	config, logs := loadWithBuffer(t)

	if *config != DefaultConfig() {
		t.Errorf("Expected defaults, got %+v", *config)
	}
	if logs != "" {
		t.Errorf("Expected no warnings, got: %s", logs)
	}
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		key   string
		value string
		field string
		check func(*WorkerConfig) bool
	}{
		{"CRON_SCHEDULE", "invalid cron", "CronSchedule", func(c *WorkerConfig) bool { return c.CronSchedule == DefaultConfig().CronSchedule }},
		{"WORKER_TIMEZONE", "Invalid/Timezone", "Timezone", func(c *WorkerConfig) bool { return c.Timezone == DefaultConfig().Timezone }},
		{"INGEST_PARALLELISM", "0", "IngestParallelism", func(c *WorkerConfig) bool { return c.IngestParallelism == 4 }},
		{"INGEST_PARALLELISM", "33", "IngestParallelism", func(c *WorkerConfig) bool { return c.IngestParallelism == 4 }},
		{"INGEST_PARALLELISM", "abc", "IngestParallelism", func(c *WorkerConfig) bool { return c.IngestParallelism == 4 }},
		{"INGEST_TIMEOUT", "30s", "IngestTimeout", func(c *WorkerConfig) bool { return c.IngestTimeout == 10*time.Minute }},
		{"INGEST_TIMEOUT", "5h", "IngestTimeout", func(c *WorkerConfig) bool { return c.IngestTimeout == 10*time.Minute }},
		{"INGEST_TIMEOUT", "invalid", "IngestTimeout", func(c *WorkerConfig) bool { return c.IngestTimeout == 10*time.Minute }},
		{"WORKER_HEALTH_PORT", "1023", "HealthPort", func(c *WorkerConfig) bool { return c.HealthPort == 9091 }},
		{"WORKER_HEALTH_PORT", "abc", "HealthPort", func(c *WorkerConfig) bool { return c.HealthPort == 9091 }},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			setEnv(t, tt.key, tt.value)

			config, logs := loadWithBuffer(t)

			if !tt.check(config) {
				t.Errorf("Expected default for %s, got %+v", tt.field, *config)
			}
			if !strings.Contains(logs, "Configuration fallback applied") {
				t.Error("Expected fallback warning in logs")
			}
			if !strings.Contains(logs, tt.field) {
				t.Errorf("Expected %s field in warning", tt.field)
			}
		})
	}
}

func TestLoadConfigFromEnv_MultipleInvalidFields(t *testing.T) {
	clearEnv(t)
	setEnv(t, "CRON_SCHEDULE", "invalid")
	setEnv(t, "WORKER_TIMEZONE", "Invalid/Zone")
	setEnv(t, "INGEST_PARALLELISM", "0")
	setEnv(t, "INGEST_TIMEOUT", "invalid")
	setEnv(t, "WORKER_HEALTH_PORT", "100")

	config, logs := loadWithBuffer(t)

	defaults := DefaultConfig()
	if *config != defaults {
		t.Errorf("Expected all defaults, got %+v", *config)
	}
	if n := strings.Count(logs, "Configuration fallback applied"); n != 5 {
		t.Errorf("Expected 5 warnings, got %d", n)
	}
}

func TestLoadConfigFromEnv_PartiallyValid(t *testing.T) {
	clearEnv(t)
	setEnv(t, "CRON_SCHEDULE", "0 6 * * *")      // valid
	setEnv(t, "WORKER_TIMEZONE", "Invalid/Zone") // invalid
	setEnv(t, "INGEST_PARALLELISM", "16")        // valid
	setEnv(t, "INGEST_TIMEOUT", "invalid")       // invalid

	config, logs := loadWithBuffer(t)

	if config.CronSchedule != "0 6 * * *" {
		t.Errorf("Expected CronSchedule '0 6 * * *', got '%s'", config.CronSchedule)
	}
	if config.IngestParallelism != 16 {
		t.Errorf("Expected IngestParallelism 16, got %d", config.IngestParallelism)
	}
	if config.Timezone != DefaultConfig().Timezone {
		t.Errorf("Expected default Timezone, got '%s'", config.Timezone)
	}
	if config.IngestTimeout != DefaultConfig().IngestTimeout {
		t.Errorf("Expected default IngestTimeout, got %v", config.IngestTimeout)
	}
	if n := strings.Count(logs, "Configuration fallback applied"); n != 2 {
		t.Errorf("Expected 2 warnings, got %d", n)
	}
}
