package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultQueueSize = 100
	DefaultBatchSize = 500
)

var DefaultCampuses = []string{"eschol", "ucla", "uci", "ucsf"}

type Config struct {
	Database    DatabaseConfig `yaml:"database"`
	Elements    ElementsConfig `yaml:"elements"`
	EZID        EZIDConfig     `yaml:"ezid"`
	RabbitMQ    RabbitMQConfig `yaml:"rabbitmq"`
	Sync        SyncConfig     `yaml:"sync"`
	LogLevel    string         `yaml:"log_level"`
	Environment string         `yaml:"environment"`
}

// DatabaseConfig selects the SQL backend. For postgres either DSN or the
// individual connection fields may be given.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" || d.Driver != "postgres" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ElementsConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Source    string        `yaml:"source"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Retry     RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

type EZIDConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Shoulder string        `yaml:"shoulder"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RabbitMQConfig is optional; an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

type SyncConfig struct {
	Interval   time.Duration `yaml:"interval"`
	QueueSize  int           `yaml:"queue_size"`
	BatchSize  int           `yaml:"batch_size"`
	Force      bool          `yaml:"force"`
	OnlyCampus string        `yaml:"only_campus"`
	Campuses   []string      `yaml:"campuses"`
}

// credentials are read from OAP_* environment variables and override the file.
type credentials struct {
	ElementsUsername string `envconfig:"ELEMENTS_USERNAME"`
	ElementsPassword string `envconfig:"ELEMENTS_PASSWORD"`
	EZIDUsername     string `envconfig:"EZID_USERNAME"`
	EZIDPassword     string `envconfig:"EZID_PASSWORD"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.loadCredentials(); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadCredentials() error {
	var creds credentials
	if err := envconfig.Process("OAP", &creds); err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	if creds.ElementsUsername != "" {
		c.Elements.Username = creds.ElementsUsername
	}
	if creds.ElementsPassword != "" {
		c.Elements.Password = creds.ElementsPassword
	}
	if creds.EZIDUsername != "" {
		c.EZID.Username = creds.EZIDUsername
	}
	if creds.EZIDPassword != "" {
		c.EZID.Password = creds.EZIDPassword
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = "oap.db"
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}
	if c.Elements.Source == "" {
		c.Elements.Source = "oap"
	}
	if c.Elements.Timeout == 0 {
		c.Elements.Timeout = 5 * time.Minute
	}
	if c.Elements.Retry.MaxAttempts == 0 {
		c.Elements.Retry.MaxAttempts = 5
	}
	if c.Elements.Retry.Delay == 0 {
		c.Elements.Retry.Delay = 30 * time.Second
	}
	if c.EZID.BaseURL == "" {
		c.EZID.BaseURL = "https://ezid.cdlib.org"
	}
	if c.EZID.Timeout == 0 {
		c.EZID.Timeout = time.Minute
	}
	if c.RabbitMQ.Enabled() {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "oapsync"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "publications"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "oap_sync_events"
		}
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 24 * time.Hour
	}
	if c.Sync.QueueSize == 0 {
		c.Sync.QueueSize = DefaultQueueSize
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = DefaultBatchSize
	}
	if len(c.Sync.Campuses) == 0 {
		c.Sync.Campuses = slices.Clone(DefaultCampuses)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
}

// Validate checks the settings every command needs. Remote credentials are
// checked by RequireRemote, since offline commands run without them.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}
	if c.Sync.QueueSize < 0 {
		errs = append(errs, errors.New("sync.queue_size: must not be negative"))
	}
	if c.Sync.BatchSize < 0 {
		errs = append(errs, errors.New("sync.batch_size: must not be negative"))
	}
	if c.Sync.OnlyCampus != "" && !slices.Contains(c.Sync.Campuses, c.Sync.OnlyCampus) {
		errs = append(errs, fmt.Errorf("sync.only_campus: %q is not a configured campus", c.Sync.OnlyCampus))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireRemote checks the settings needed to talk to the remote systems.
func (c *Config) RequireRemote() error {
	var errs []error
	if c.Elements.BaseURL == "" {
		errs = append(errs, errors.New("elements.base_url: required"))
	}
	if c.Elements.Username == "" || c.Elements.Password == "" {
		errs = append(errs, errors.New("elements credentials: OAP_ELEMENTS_USERNAME and OAP_ELEMENTS_PASSWORD required"))
	}
	if c.EZID.Shoulder == "" {
		errs = append(errs, errors.New("ezid.shoulder: required"))
	}
	if c.EZID.Username == "" || c.EZID.Password == "" {
		errs = append(errs, errors.New("ezid credentials: OAP_EZID_USERNAME and OAP_EZID_PASSWORD required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
