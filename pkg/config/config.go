// Package config loads the receptionist configuration from a YAML file, environment
// variables prefixed with RECEPTIONIST_, and defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/sudo-god/AI-Receptionist/pkg/mail"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
)

const (
	AppName   = "receptionist"
	EnvPrefix = "RECEPTIONIST"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Model  ModelConfig       `mapstructure:"model"`
	Mongo  store.MongoConfig `mapstructure:"mongo"`
	Store  StoreConfig       `mapstructure:"store"`
	Google GoogleConfig      `mapstructure:"google"`
	Agent  AgentConfig       `mapstructure:"agent"`
	Server ServerConfig      `mapstructure:"server"`
}

type ModelConfig struct {
	settings.ChatSettings `mapstructure:",squash"`
	// HelperName is the model used to resolve clarifications. Empty means Name.
	HelperName string `mapstructure:"helper_name"`
}

// Settings returns the settings of the main model.
func (m ModelConfig) Settings() *settings.ChatSettings {
	s := m.ChatSettings
	return &s
}

// HelperSettings returns the settings of the clarification model.
func (m ModelConfig) HelperSettings() *settings.ChatSettings {
	return m.Settings().WithEngine(m.HelperName)
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type GoogleConfig struct {
	mail.GoogleConfig `mapstructure:",squash"`
	Enabled           bool          `mapstructure:"enabled"`
	EventDuration     time.Duration `mapstructure:"event_duration"`
}

type AgentConfig struct {
	MaxClarificationAttempts int    `mapstructure:"max_clarification_attempts"`
	HistoryWindow            int    `mapstructure:"history_window"`
	DefaultAgent             string `mapstructure:"default_agent"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.provider", string(settings.ApiTypeOpenAI))
	v.SetDefault("model.name", "gpt-4o-mini")
	v.SetDefault("model.helper_name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.timeout", "60s")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "ai_receptionist")
	v.SetDefault("mongo.accounts_collection", "accounts")
	v.SetDefault("mongo.sessions_collection", "sessions")
	v.SetDefault("mongo.business_collection", "business_data")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("store.driver", DriverMongo)

	v.SetDefault("google.enabled", false)
	v.SetDefault("google.credentials_file", "credentials.json")
	v.SetDefault("google.token_file", "token.json")
	v.SetDefault("google.sender_email", "")
	v.SetDefault("google.calendar_id", "primary")
	v.SetDefault("google.time_zone", "America/New_York")
	v.SetDefault("google.event_duration", "1h")

	v.SetDefault("agent.max_clarification_attempts", 3)
	v.SetDefault("agent.history_window", 0)
	v.SetDefault("agent.default_agent", "receptionist_agent")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// Load reads configPath, or looks for receptionist.yaml in the usual places when it
// is empty. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+AppName))
		}
		v.AddConfigPath(filepath.Join("/etc", AppName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Model.ApiType {
	case settings.ApiTypeOpenAI, settings.ApiTypeGemini, settings.ApiTypeClaude, "anthropic":
	default:
		return errors.Errorf("unsupported model provider %q", c.Model.ApiType)
	}
	if c.Model.Engine == "" {
		return errors.New("model.name is required")
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required with the mongo store driver")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unsupported store driver %q (supported: mongo, memory)", c.Store.Driver)
	}
	if c.Agent.MaxClarificationAttempts <= 0 {
		return errors.New("agent.max_clarification_attempts must be positive")
	}
	if c.Agent.HistoryWindow < 0 {
		return errors.New("agent.history_window must not be negative")
	}
	if c.Google.Enabled && (c.Google.CredentialsFile == "" || c.Google.TokenFile == "") {
		return errors.New("google.credentials_file and google.token_file are required when google is enabled")
	}
	return nil
}
