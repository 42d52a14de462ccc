package engine

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
)

// ParametersMap renders a tool parameter schema as a plain JSON object.
func ParametersMap(td tools.ToolDefinition) (map[string]interface{}, error) {
	m := map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	if td.Parameters == nil {
		return m, nil
	}
	b, err := json.Marshal(td.Parameters)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal parameters of %s", td.Name)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal parameters of %s", td.Name)
	}
	return m, nil
}

// ParseArguments decodes a JSON argument string returned by a provider.
func ParseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, errors.Wrap(err, "tool call arguments are not a JSON object")
	}
	return args, nil
}
