package tools

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateArguments checks a JSON document against a tool parameter schema and
// returns one human-readable line per violation.
func ValidateArguments(schema *jsonschema.Schema, args []byte) ([]string, error) {
	if schema == nil {
		return nil, nil
	}
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool schema")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(args),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate json")
	}
	if result.Valid() {
		return nil, nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}

func joinProblems(problems []string) string {
	return strings.Join(problems, "; ")
}
