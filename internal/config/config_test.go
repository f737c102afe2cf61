package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
database:
  dsn: postgres://jm:secret@db:5432/jurismonitor
datajud:
  baseUrl: https://datajud.example.com/
  requestDelay: 500ms
  breakerFailures: 3
scheduler:
  times: ["07:15"]
  timezone: America/Manaus
  maxBatch: 20
notifications:
  appUrl: https://app.example.com
  email:
    host: smtp.example.com
    from: alertas@example.com
reminders:
  daysBefore: [2, 0]
logging:
  level: debug
  format: json
`

func TestParseAndMerge(t *testing.T) {
	t.Parallel()

	fileCfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cfg := mergeConfig(defaultConfig(), fileCfg)

	if cfg.Database.DSN != "postgres://jm:secret@db:5432/jurismonitor" {
		t.Fatalf("unexpected dsn: %s", cfg.Database.DSN)
	}
	if cfg.Datajud.BaseURL != "https://datajud.example.com" {
		t.Fatalf("base url not trimmed: %s", cfg.Datajud.BaseURL)
	}
	if cfg.Datajud.RequestDelay != 500*time.Millisecond || cfg.Datajud.BreakerFailures != 3 {
		t.Fatalf("unexpected datajud config: %+v", cfg.Datajud)
	}
	if cfg.Datajud.Timeout != 30*time.Second || cfg.Datajud.BreakerCooldown != 2*time.Minute {
		t.Fatalf("defaults lost: %+v", cfg.Datajud)
	}
	if len(cfg.Scheduler.Times) != 1 || cfg.Scheduler.Times[0] != "07:15" || cfg.Scheduler.MaxBatch != 20 {
		t.Fatalf("unexpected scheduler config: %+v", cfg.Scheduler)
	}
	if cfg.Notifications.Email.Port != 587 || cfg.Notifications.Email.FromName != "JurisMonitor" {
		t.Fatalf("email defaults lost: %+v", cfg.Notifications.Email)
	}
	if !cfg.Notifications.Email.Enabled() || cfg.Notifications.WhatsApp.Enabled() {
		t.Fatalf("unexpected channel enablement: %+v", cfg.Notifications)
	}
	if len(cfg.Reminders.DaysBefore) != 2 || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected reminders/logging: %+v %+v", cfg.Reminders, cfg.Logging)
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(datajudKeyEnv, "key-from-env")
	t.Setenv(smtpPortEnv, "465")
	t.Setenv(evolutionURLEnv, "https://evo.example.com")
	t.Setenv(evolutionKeyEnv, "evo-key")
	t.Setenv(evolutionInstEnv, "escritorio")
	t.Setenv(httpAddrEnv, ":9090")

	cfg := Load()

	if cfg.Datajud.APIKey != "key-from-env" {
		t.Fatalf("env override missing: %q", cfg.Datajud.APIKey)
	}
	if cfg.Notifications.Email.Port != 465 {
		t.Fatalf("smtp port override missing: %d", cfg.Notifications.Email.Port)
	}
	if !cfg.Notifications.WhatsApp.Enabled() || cfg.Notifications.WhatsApp.Region != "BR" {
		t.Fatalf("unexpected whatsapp config: %+v", cfg.Notifications.WhatsApp)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("http addr override missing: %s", cfg.HTTP.Addr)
	}
	if cfg.Scheduler.Location().String() != "America/Manaus" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus"
	cfg.bindTimezone()
	if cfg.Scheduler.Location() != time.UTC {
		t.Fatalf("expected UTC, got %s", cfg.Scheduler.Location())
	}
}
