package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-planner/config"
)

func TestLoad_Defaults(t *testing.T) {
	// GIVEN: No config file next to the test binary and no overrides
	chdir(t, t.TempDir())

	// WHEN: Loading
	cfg, err := config.Load("")

	// THEN: Defaults apply
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "leave.db", cfg.Database.Path)
	assert.Equal(t, config.HolidaySourceStatic, cfg.Holidays.Source)
	assert.Equal(t, "nl", cfg.Holidays.Region)
	assert.Equal(t, 10.0, cfg.Server.RateLimit.RPS)
	assert.Equal(t, 20, cfg.Server.RateLimit.Burst)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	// GIVEN: A YAML file and an environment override
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "planner.yaml")
	yaml := `
server:
  port: 9090
  cors:
    allow_origins: ["https://plan.example"]
db:
  path: /var/lib/leave.db
log:
  level: debug
  format: console
holidays:
  source: computed
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("LEAVE_SERVER_PORT", "7070")
	t.Setenv("LEAVE_HOLIDAYS_REGION", "be")

	// WHEN: Loading the file
	cfg, err := config.Load(path)

	// THEN: Environment beats file, file beats defaults
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"https://plan.example"}, cfg.Server.CORS.AllowOrigins)
	assert.Equal(t, "/var/lib/leave.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, config.HolidaySourceComputed, cfg.Holidays.Source)
	assert.Equal(t, "be", cfg.Holidays.Region)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEAVE_DB_PATH=from-dotenv.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEAVE_DB_PATH") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := config.Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"port zero", func(c *config.Config) { c.Server.Port = 0 }},
		{"port too large", func(c *config.Config) { c.Server.Port = 70000 }},
		{"negative rps", func(c *config.Config) { c.Server.RateLimit.RPS = -1 }},
		{"rps without burst", func(c *config.Config) { c.Server.RateLimit.Burst = 0 }},
		{"unknown holiday source", func(c *config.Config) { c.Holidays.Source = "ical" }},
		{"empty db path", func(c *config.Config) { c.Database.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("rate limit disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Server.RateLimit = config.RateLimitConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
