// Package config loads editorial settings from a TOML file, an optional
// .env file and EDITORIAL_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when no --config flag is given. A missing file means
// defaults.
const DefaultPath = "editorial.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EDITORIAL_"

// Database configures the SQLite store.
type Database struct {
	Path string `toml:"path"`
}

// HTTP configures the editor/reviewer action surface.
type HTTP struct {
	Bind      string `toml:"bind"`
	JWTSecret string `toml:"jwt_secret"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Workflow holds the workflow policy knobs.
type Workflow struct {
	StrictAssignmentRemoval bool `toml:"strict_assignment_removal"`
	DefaultPageSize         int  `toml:"default_page_size"`
	MaxPageSize             int  `toml:"max_page_size"`
	DefaultReviewDueDays    int  `toml:"default_review_due_days"`
	DefaultResponseDueDays  int  `toml:"default_response_due_days"`
}

// SMTP configures reviewer invitation mail. An empty host disables mail.
type SMTP struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	User string `toml:"user"`
	Pass string `toml:"pass"`
	From string `toml:"from"`
	// AddressDomain turns bare user IDs into addresses ("rev-carol" ->
	// "rev-carol@<domain>"). IDs that already contain "@" are used as is.
	AddressDomain string `toml:"address_domain"`
}

// NATS configures activity fan-out. An empty URL disables publishing.
type NATS struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// Seed configures the fixture seed step.
type Seed struct {
	FixturesPath string `toml:"fixtures_path"`
}

// Config is the complete editorial configuration.
type Config struct {
	Database Database `toml:"database"`
	HTTP     HTTP     `toml:"http"`
	Logging  Logging  `toml:"logging"`
	Workflow Workflow `toml:"workflow"`
	SMTP     SMTP     `toml:"smtp"`
	NATS     NATS     `toml:"nats"`
	Seed     Seed     `toml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{Path: "data/editorial.db"},
		HTTP:     HTTP{Bind: "127.0.0.1:8080"},
		Logging:  Logging{Level: "info", Format: "console"},
		Workflow: Workflow{
			StrictAssignmentRemoval: true,
			DefaultPageSize:         20,
			MaxPageSize:             100,
			DefaultReviewDueDays:    28,
			DefaultResponseDueDays:  7,
		},
		SMTP: SMTP{Port: 587},
		NATS: NATS{SubjectPrefix: "editorial.activity"},
		Seed: Seed{FixturesPath: "internal/db/testdata/fixtures.yaml"},
	}
}

// Load builds the configuration. path may be empty, in which case
// DefaultPath is tried. envFile names a dotenv file; a missing one is
// ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// applyEnv overlays EDITORIAL_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("DB_PATH", &c.Database.Path)
	str("HTTP_BIND", &c.HTTP.Bind)
	str("JWT_SECRET", &c.HTTP.JWTSecret)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("SMTP_HOST", &c.SMTP.Host)
	str("SMTP_USER", &c.SMTP.User)
	str("SMTP_PASS", &c.SMTP.Pass)
	str("SMTP_FROM", &c.SMTP.From)
	str("SMTP_ADDRESS_DOMAIN", &c.SMTP.AddressDomain)
	str("NATS_URL", &c.NATS.URL)
	str("SEED_FIXTURES", &c.Seed.FixturesPath)

	if err := num("SMTP_PORT", &c.SMTP.Port); err != nil {
		return err
	}
	if err := num("DEFAULT_PAGE_SIZE", &c.Workflow.DefaultPageSize); err != nil {
		return err
	}
	if err := num("MAX_PAGE_SIZE", &c.Workflow.MaxPageSize); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "STRICT_ASSIGNMENT_REMOVAL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSTRICT_ASSIGNMENT_REMOVAL: %w", EnvPrefix, err)
		}
		c.Workflow.StrictAssignmentRemoval = b
	}
	return nil
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.NATS.SubjectPrefix = strings.Trim(c.NATS.SubjectPrefix, ". ")
	c.SMTP.AddressDomain = strings.TrimPrefix(strings.TrimSpace(c.SMTP.AddressDomain), "@")
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Workflow.DefaultPageSize <= 0 {
		return errors.New("workflow.default_page_size must be positive")
	}
	if c.Workflow.MaxPageSize < c.Workflow.DefaultPageSize {
		return errors.New("workflow.max_page_size must be at least workflow.default_page_size")
	}
	if c.Workflow.DefaultReviewDueDays < 0 || c.Workflow.DefaultResponseDueDays < 0 {
		return errors.New("workflow due-day defaults must not be negative")
	}
	if c.SMTP.Host != "" {
		if c.SMTP.Port <= 0 {
			return errors.New("smtp.port must be positive")
		}
		if c.SMTP.From == "" {
			return errors.New("smtp.from is required when smtp.host is set")
		}
	}
	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		return errors.New("nats.subject_prefix is required when nats.url is set")
	}
	return nil
}
