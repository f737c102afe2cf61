package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "America/Sao_Paulo"
	configPathEnv    = "JURISMONITOR_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	datajudKeyEnv    = "DATAJUD_API_KEY"
	datajudURLEnv    = "DATAJUD_BASE_URL"
	smtpHostEnv      = "SMTP_HOST"
	smtpPortEnv      = "SMTP_PORT"
	smtpUserEnv      = "SMTP_USER"
	smtpPasswordEnv  = "SMTP_PASSWORD"
	smtpFromEnv      = "SMTP_FROM"
	evolutionURLEnv  = "EVOLUTION_API_URL"
	evolutionKeyEnv  = "EVOLUTION_API_KEY"
	evolutionInstEnv = "EVOLUTION_INSTANCE"
	appURLEnv        = "APP_URL"
	httpAddrEnv      = "HTTP_ADDR"
	logLevelEnv      = "LOG_LEVEL"
	logFormatEnv     = "LOG_FORMAT"
)

// Config holds high-level settings required across the application.
// It is loaded once and treated as read-only afterwards.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Datajud       DatajudConfig      `yaml:"datajud"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Reminders     ReminderConfig     `yaml:"reminders"`
	HTTP          HTTPConfig         `yaml:"http"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig selects the backend by DSN: postgres:// URLs use Postgres,
// anything else is a SQLite path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// DatajudConfig describes the public judicial API.
type DatajudConfig struct {
	BaseURL         string        `yaml:"baseUrl"`
	APIKey          string        `yaml:"apiKey"`
	Timeout         time.Duration `yaml:"timeout"`
	RequestDelay    time.Duration `yaml:"requestDelay"`
	BreakerFailures uint32        `yaml:"breakerFailures"`
	BreakerCooldown time.Duration `yaml:"breakerCooldown"`
}

// SchedulerConfig defines when automatic runs happen.
type SchedulerConfig struct {
	Times      []string       `yaml:"times"`
	Timezone   string         `yaml:"timezone"`
	MaxBatch   int            `yaml:"maxBatch"`
	RunOnStart bool           `yaml:"runOnStart"`
	Disabled   bool           `yaml:"disabled"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	AppURL   string         `yaml:"appUrl"`
	Email    EmailConfig    `yaml:"email"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

// EmailConfig wires the SMTP relay.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"fromName"`
}

// Enabled reports whether enough is set to send mail.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != ""
}

// WhatsAppConfig wires the Evolution API gateway.
type WhatsAppConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	APIKey   string `yaml:"apiKey"`
	Instance string `yaml:"instance"`
	Region   string `yaml:"region"`
}

// Enabled reports whether the gateway is configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.BaseURL != "" && w.APIKey != "" && w.Instance != ""
}

// ReminderConfig controls deadline reminders and the daily summary.
type ReminderConfig struct {
	DaysBefore []int `yaml:"daysBefore"`
	Disabled   bool  `yaml:"disabled"`
}

// HTTPConfig is the listen address of the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig picks the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env and the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(datajudKeyEnv); v != "" {
		c.Datajud.APIKey = v
	}
	if v := os.Getenv(datajudURLEnv); v != "" {
		c.Datajud.BaseURL = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Notifications.Email.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Notifications.Email.Port = port
		} else {
			log.Printf("config: ignoring %s=%q: %v", smtpPortEnv, v, err)
		}
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.Notifications.Email.User = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Notifications.Email.Password = v
	}
	if v := os.Getenv(smtpFromEnv); v != "" {
		c.Notifications.Email.From = v
	}

	if v := os.Getenv(evolutionURLEnv); v != "" {
		c.Notifications.WhatsApp.BaseURL = v
	}
	if v := os.Getenv(evolutionKeyEnv); v != "" {
		c.Notifications.WhatsApp.APIKey = v
	}
	if v := os.Getenv(evolutionInstEnv); v != "" {
		c.Notifications.WhatsApp.Instance = v
	}

	if v := os.Getenv(appURLEnv); v != "" {
		c.Notifications.AppURL = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Datajud.BaseURL != "" {
		base.Datajud.BaseURL = strings.TrimRight(override.Datajud.BaseURL, "/")
	}
	if override.Datajud.APIKey != "" {
		base.Datajud.APIKey = override.Datajud.APIKey
	}
	if override.Datajud.Timeout > 0 {
		base.Datajud.Timeout = override.Datajud.Timeout
	}
	if override.Datajud.RequestDelay > 0 {
		base.Datajud.RequestDelay = override.Datajud.RequestDelay
	}
	if override.Datajud.BreakerFailures > 0 {
		base.Datajud.BreakerFailures = override.Datajud.BreakerFailures
	}
	if override.Datajud.BreakerCooldown > 0 {
		base.Datajud.BreakerCooldown = override.Datajud.BreakerCooldown
	}

	if len(override.Scheduler.Times) > 0 {
		base.Scheduler.Times = override.Scheduler.Times
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.MaxBatch > 0 {
		base.Scheduler.MaxBatch = override.Scheduler.MaxBatch
	}
	base.Scheduler.RunOnStart = base.Scheduler.RunOnStart || override.Scheduler.RunOnStart
	base.Scheduler.Disabled = base.Scheduler.Disabled || override.Scheduler.Disabled

	if override.Notifications.AppURL != "" {
		base.Notifications.AppURL = override.Notifications.AppURL
	}
	if override.Notifications.Email.Host != "" {
		base.Notifications.Email = mergeEmail(base.Notifications.Email, override.Notifications.Email)
	}
	if override.Notifications.WhatsApp.BaseURL != "" {
		region := base.Notifications.WhatsApp.Region
		base.Notifications.WhatsApp = override.Notifications.WhatsApp
		if base.Notifications.WhatsApp.Region == "" {
			base.Notifications.WhatsApp.Region = region
		}
	}

	if len(override.Reminders.DaysBefore) > 0 {
		base.Reminders.DaysBefore = override.Reminders.DaysBefore
	}
	base.Reminders.Disabled = base.Reminders.Disabled || override.Reminders.Disabled

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func mergeEmail(base, override EmailConfig) EmailConfig {
	out := override
	if out.Port == 0 {
		out.Port = base.Port
	}
	if out.FromName == "" {
		out.FromName = base.FromName
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "data/jurismonitor.db"},
		Datajud: DatajudConfig{
			BaseURL:         "https://api-publica.datajud.cnj.jus.br",
			Timeout:         30 * time.Second,
			RequestDelay:    2 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 2 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Times:    []string{"08:00", "17:30"},
			Timezone: defaultTimezone,
			MaxBatch: 50,
		},
		Notifications: NotificationConfig{
			Email:    EmailConfig{Port: 587, FromName: "JurisMonitor"},
			WhatsApp: WhatsAppConfig{Region: "BR"},
		},
		Reminders: ReminderConfig{DaysBefore: []int{3, 1, 0}},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
