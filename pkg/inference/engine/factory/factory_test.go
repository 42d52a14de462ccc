package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/claude"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/gemini"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/openai"
	"github.com/sudo-god/AI-Receptionist/pkg/steps/ai/settings"
)

func TestCreateEngine(t *testing.T) {
	f := NewStandardEngineFactory()

	tests := []struct {
		apiType settings.ApiType
		check   func(t *testing.T, e interface{})
	}{
		{"", func(t *testing.T, e interface{}) { assert.IsType(t, &openai.OpenAIEngine{}, e) }},
		{settings.ApiTypeOpenAI, func(t *testing.T, e interface{}) { assert.IsType(t, &openai.OpenAIEngine{}, e) }},
		{settings.ApiTypeGemini, func(t *testing.T, e interface{}) { assert.IsType(t, &gemini.GeminiEngine{}, e) }},
		{settings.ApiTypeClaude, func(t *testing.T, e interface{}) { assert.IsType(t, &claude.ClaudeEngine{}, e) }},
		{"anthropic", func(t *testing.T, e interface{}) { assert.IsType(t, &claude.ClaudeEngine{}, e) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.apiType), func(t *testing.T) {
			e, err := f.CreateEngine(&settings.ChatSettings{ApiType: tt.apiType, Engine: "m", APIKey: "k"})
			require.NoError(t, err)
			tt.check(t, e)
		})
	}
}

func TestCreateEngineErrors(t *testing.T) {
	f := NewStandardEngineFactory()

	_, err := f.CreateEngine(nil)
	assert.Error(t, err)

	_, err = f.CreateEngine(&settings.ChatSettings{ApiType: "ollama", Engine: "m", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider ollama")

	_, err = NewEngineFromSettings(&settings.ChatSettings{ApiType: settings.ApiTypeOpenAI, Engine: "m"})
	assert.Error(t, err)
}
