package factory

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/claude"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/gemini"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/openai"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
)

// EngineFactory creates completion engines based on chat settings.
type EngineFactory interface {
	CreateEngine(s *settings.ChatSettings) (engine.Engine, error)
	SupportedProviders() []string
	DefaultProvider() string
}

// StandardEngineFactory supports openai, gemini and claude.
type StandardEngineFactory struct{}

func NewStandardEngineFactory() *StandardEngineFactory {
	return &StandardEngineFactory{}
}

func (f *StandardEngineFactory) CreateEngine(s *settings.ChatSettings) (engine.Engine, error) {
	if s == nil {
		return nil, errors.New("settings cannot be nil")
	}
	provider := strings.ToLower(string(s.ApiType))
	if provider == "" {
		provider = f.DefaultProvider()
	}

	switch provider {
	case string(settings.ApiTypeOpenAI):
		return openai.NewOpenAIEngine(s)
	case string(settings.ApiTypeClaude), "anthropic":
		return claude.NewClaudeEngine(s)
	case string(settings.ApiTypeGemini):
		return gemini.NewGeminiEngine(s)
	default:
		return nil, errors.Errorf("unsupported provider %s (supported: %s)",
			provider, strings.Join(f.SupportedProviders(), ", "))
	}
}

func (f *StandardEngineFactory) SupportedProviders() []string {
	return []string{
		string(settings.ApiTypeOpenAI),
		string(settings.ApiTypeClaude),
		string(settings.ApiTypeGemini),
	}
}

func (f *StandardEngineFactory) DefaultProvider() string {
	return string(settings.ApiTypeOpenAI)
}

// NewEngineFromSettings is a convenience wrapper around StandardEngineFactory.
func NewEngineFromSettings(s *settings.ChatSettings) (engine.Engine, error) {
	return NewStandardEngineFactory().CreateEngine(s)
}
