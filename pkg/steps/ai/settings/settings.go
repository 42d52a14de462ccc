package settings

import (
	"time"

	"github.com/huandu/go-clone"
)

// ApiType names a completion provider.
type ApiType string

const (
	ApiTypeOpenAI ApiType = "openai"
	ApiTypeGemini ApiType = "gemini"
	ApiTypeClaude ApiType = "claude"
)

// ChatSettings carries what a provider engine needs to issue completions.
type ChatSettings struct {
	ApiType           ApiType       `yaml:"api_type" mapstructure:"provider"`
	Engine            string        `yaml:"engine" mapstructure:"name"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Temperature       *float64      `yaml:"temperature,omitempty" mapstructure:"temperature"`
	MaxResponseTokens int           `yaml:"max_response_tokens,omitempty" mapstructure:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

func (s *ChatSettings) Clone() *ChatSettings {
	return clone.Clone(s).(*ChatSettings)
}

// WithEngine returns a copy using a different model name.
func (s *ChatSettings) WithEngine(engine string) *ChatSettings {
	c := s.Clone()
	if engine != "" {
		c.Engine = engine
	}
	return c
}

// MaxTokensOr returns MaxResponseTokens, or def when unset.
func (s *ChatSettings) MaxTokensOr(def int) int {
	if s.MaxResponseTokens > 0 {
		return s.MaxResponseTokens
	}
	return def
}
