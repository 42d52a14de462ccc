package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ToolDefinition represents a tool that can be proposed by a model and invoked by the runner.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
	Function    ToolFunc           `json:"-"`
}

// ToolFunc wraps a func(context.Context, In) (Result, error) with a pre-compiled executor.
type ToolFunc struct {
	Fn        interface{}                                            `json:"-"`
	executor  func(ctx context.Context, args []byte) (Result, error) `json:"-"`
	inputType reflect.Type                                           `json:"-"`
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	resultType  = reflect.TypeOf(Result{})
)

// NewToolFromFunc creates a ToolDefinition from a Go function of the form
//
//	func(ctx context.Context, in In) (tools.Result, error)
//
// The parameter schema is reflected from In. Fields without `omitempty` are required.
func NewToolFromFunc(name, description string, fn interface{}) (*ToolDefinition, error) {
	funcType := reflect.TypeOf(fn)
	if funcType == nil || funcType.Kind() != reflect.Func {
		return nil, errors.Errorf("tool %s: provided value is not a function", name)
	}
	if funcType.NumIn() != 2 || funcType.In(0) != contextType {
		return nil, errors.Errorf("tool %s: function must take (context.Context, Input)", name)
	}
	if funcType.NumOut() != 2 || funcType.Out(0) != resultType || !funcType.Out(1).Implements(errorType) {
		return nil, errors.Errorf("tool %s: function must return (tools.Result, error)", name)
	}

	inType := funcType.In(1)
	schema := generateSchema(inType)

	return &ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Function: ToolFunc{
			Fn:        fn,
			executor:  createExecutor(name, fn, inType),
			inputType: inType,
		},
	}, nil
}

// MustNewToolFromFunc is NewToolFromFunc for package-level tool tables.
func MustNewToolFromFunc(name, description string, fn interface{}) *ToolDefinition {
	td, err := NewToolFromFunc(name, description, fn)
	if err != nil {
		panic(err)
	}
	return td
}

// Invoke validates args against the tool schema and runs the tool.
// A schema violation is reported as a Completed result, not as an error.
// A returned error means a collaborator failed.
func (td *ToolDefinition) Invoke(ctx context.Context, args map[string]any) (Result, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Result{}, errors.Wrapf(err, "tool %s: could not marshal arguments", td.Name)
	}

	if problems, err := ValidateArguments(td.Parameters, raw); err != nil {
		return Result{}, errors.Wrapf(err, "tool %s: could not validate arguments", td.Name)
	} else if len(problems) > 0 {
		log.Debug().Str("tool", td.Name).Strs("problems", problems).Msg("tool arguments rejected")
		return Completedf("Invalid arguments for %s: %s", td.Name, joinProblems(problems)), nil
	}

	return td.Function.Execute(ctx, raw)
}

// Execute runs the function on JSON-encoded arguments without schema validation.
func (tf *ToolFunc) Execute(ctx context.Context, args []byte) (Result, error) {
	if tf.executor == nil {
		return Result{}, errors.New("tool function not properly initialized")
	}
	return tf.executor(ctx, args)
}

// generateSchema reflects an object schema from the input type. account_id style
// fields tagged `jsonschema:"-"` are hidden from models, so extra properties are allowed.
func generateSchema(inputType reflect.Type) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	inputInstance := reflect.New(inputType).Elem().Interface()
	schema := reflector.Reflect(inputInstance)
	schema.Version = ""
	schema.ID = ""
	if schema.Type == "" && schema.Ref == "" {
		schema.Type = "object"
	}
	return schema
}

func createExecutor(name string, fn interface{}, inType reflect.Type) func(context.Context, []byte) (Result, error) {
	funcValue := reflect.ValueOf(fn)
	return func(ctx context.Context, args []byte) (Result, error) {
		input := reflect.New(inType).Interface()
		if len(args) > 0 {
			if err := json.Unmarshal(args, input); err != nil {
				log.Debug().Err(err).Str("tool", name).Str("args", string(args)).Msg("failed to decode tool arguments")
				return Completedf("Invalid arguments for %s: %s", name, err.Error()), nil
			}
		}

		log.Trace().Str("tool", name).Str("args", string(args)).Msg("executing tool")
		results := funcValue.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(input).Elem()})

		res := results[0].Interface().(Result)
		if errInterface := results[1].Interface(); errInterface != nil {
			return res, errInterface.(error)
		}
		return res, nil
	}
}
