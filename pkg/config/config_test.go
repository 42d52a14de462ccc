package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receptionist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, settings.ApiTypeOpenAI, cfg.Model.ApiType)
	assert.Equal(t, "ai_receptionist", cfg.Mongo.Database)
	assert.Equal(t, "business_data", cfg.Mongo.BusinessCollection)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
	assert.Equal(t, time.Hour, cfg.Google.EventDuration)
	assert.Equal(t, 3, cfg.Agent.MaxClarificationAttempts)
	assert.Equal(t, "receptionist_agent", cfg.Agent.DefaultAgent)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: claude
  name: claude-3-5-sonnet-latest
  helper_name: claude-3-5-haiku-latest
  temperature: 0.2
store:
  driver: memory
agent:
  max_clarification_attempts: 5
  history_window: 20
google:
  enabled: true
  time_zone: Europe/Berlin
  event_duration: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, settings.ApiTypeClaude, cfg.Model.ApiType)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.Model.Settings().Engine)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model.HelperSettings().Engine)
	require.NotNil(t, cfg.Model.Temperature)
	assert.InDelta(t, 0.2, *cfg.Model.Temperature, 1e-9)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Agent.MaxClarificationAttempts)
	assert.Equal(t, 20, cfg.Agent.HistoryWindow)
	assert.True(t, cfg.Google.Enabled)
	assert.Equal(t, "Europe/Berlin", cfg.Google.TimeZone)
	assert.Equal(t, 30*time.Minute, cfg.Google.EventDuration)
	assert.Equal(t, "token.json", cfg.Google.TokenFile)
}

func TestHelperDefaultsToMainModel(t *testing.T) {
	m := ModelConfig{ChatSettings: settings.ChatSettings{ApiType: settings.ApiTypeGemini, Engine: "gemini-1.5-flash"}}
	assert.Equal(t, "gemini-1.5-flash", m.HelperSettings().Engine)
}

func TestEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RECEPTIONIST_MODEL_PROVIDER", "gemini")
	t.Setenv("RECEPTIONIST_STORE_DRIVER", "memory")
	t.Setenv("RECEPTIONIST_SERVER_ADDRESS", ":9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, settings.ApiTypeGemini, cfg.Model.ApiType)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Model: ModelConfig{ChatSettings: settings.ChatSettings{ApiType: settings.ApiTypeOpenAI, Engine: "gpt-4o"}},
			Store: StoreConfig{Driver: DriverMemory},
			Agent: AgentConfig{MaxClarificationAttempts: 3},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Model.ApiType = "llama" }},
		{"missing model", func(c *Config) { c.Model.Engine = "" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Store.Driver = DriverMongo }},
		{"zero clarification bound", func(c *Config) { c.Agent.MaxClarificationAttempts = 0 }},
		{"negative window", func(c *Config) { c.Agent.HistoryWindow = -1 }},
		{"google without token", func(c *Config) { c.Google.Enabled = true; c.Google.CredentialsFile = "c.json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
