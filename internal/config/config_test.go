package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Workflow.StrictAssignmentRemoval)
	assert.Equal(t, 20, cfg.Workflow.DefaultPageSize)
	assert.Equal(t, 100, cfg.Workflow.MaxPageSize)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default().Database.Path, cfg.Database.Path)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), "")
	require.Error(t, err)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "editorial.toml", `
[database]
path = "/tmp/editorial-test.db"

[logging]
level = "DEBUG"
format = "json"

[workflow]
strict_assignment_removal = true
default_page_size = 10
max_page_size = 50
`)
	envFile := writeFile(t, dir, ".env", "EDITORIAL_STRICT_ASSIGNMENT_REMOVAL=false\n")
	t.Setenv("EDITORIAL_HTTP_BIND", "0.0.0.0:9000")
	t.Setenv("EDITORIAL_MAX_PAGE_SIZE", "60")
	t.Cleanup(func() { os.Unsetenv("EDITORIAL_STRICT_ASSIGNMENT_REMOVAL") })

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/editorial-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Workflow.DefaultPageSize)
	assert.Equal(t, 60, cfg.Workflow.MaxPageSize)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Bind)
	assert.False(t, cfg.Workflow.StrictAssignmentRemoval)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "editorial.toml", "[database]\npaht = \"x\"\n")
	_, err := Load(path, "")
	require.Error(t, err)
}

func TestLoadRejectsBadEnvNumber(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EDITORIAL_SMTP_PORT", "many")
	_, err := Load("", "")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty db path", func(c *Config) { c.Database.Path = " " }, "database.path"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero page size", func(c *Config) { c.Workflow.DefaultPageSize = 0 }, "default_page_size"},
		{"max below default", func(c *Config) { c.Workflow.MaxPageSize = 5 }, "max_page_size"},
		{"smtp without from", func(c *Config) { c.SMTP.Host = "mail.example.org" }, "smtp.from"},
		{"nats without prefix", func(c *Config) { c.NATS.URL = "nats://localhost:4222"; c.NATS.SubjectPrefix = "" }, "subject_prefix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
