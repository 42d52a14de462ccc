package agent

import (
	"context"
	"strings"

	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// Synthesizer rewrites the results of a turn into a single reply.
type Synthesizer struct {
	engine       engine.Engine
	systemPrompt string
}

func NewSynthesizer(e engine.Engine) *Synthesizer {
	return &Synthesizer{engine: e, systemPrompt: SynthesizerPrompt}
}

func (s *Synthesizer) Synthesize(ctx context.Context, history []turns.Message, results []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Here are the responses from the tools you have called:")
	for _, r := range results {
		sb.WriteString("\n- ")
		sb.WriteString(r)
	}

	completion, err := s.engine.Complete(ctx, engine.Request{
		SystemPrompt: s.systemPrompt,
		History:      history,
		UserText:     sb.String(),
		ToolChoice:   engine.ToolChoiceNone,
	})
	if err != nil {
		return "", engine.AsUnavailable(err)
	}
	return strings.TrimSpace(strings.ReplaceAll(completion.Text, "```", "")), nil
}
