package catalog

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
	"github.com/wagiedev/shim-bridge-go/internal/protocol"
)

// Operation is one tool offered to the calling agent.
type Operation struct {
	// Name is the tool name the agent calls.
	Name string

	// Method is the worker method. When empty, the method is read from the
	// MethodParam argument.
	Method      string
	MethodParam string

	// PathParam names an argument that overrides the request channel.
	PathParam string

	Description string

	// Params are listed in wire order.
	Params []Param

	// RequiredText replaces the generated "<a> and <b> are required" text.
	RequiredText string

	// Summarize renders a successful outcome. Failure renders a failed one.
	Summarize func(args Args, result any) string
	Failure   func(args Args, msg string) string
}

// Prepare validates args and builds the worker call.
//
// When any required param is missing the error lists every required param,
// e.g. "Error: a, b, and operation are required".
func (op *Operation) Prepare(args Args) (protocol.Call, error) {
	if args == nil {
		args = Args{}
	}

	var required []string

	missing := false

	for i := range op.Params {
		p := &op.Params[i]
		if !p.Required {
			continue
		}

		required = append(required, p.Name)

		if !p.present(args) {
			missing = true
		}
	}

	if missing {
		return protocol.Call{}, op.missingError(required)
	}

	call := protocol.Call{Method: op.Method, Args: make([]any, 0, len(op.Params))}

	for i := range op.Params {
		p := &op.Params[i]

		raw, supplied := args[p.Name]
		if !supplied || raw == nil {
			if p.Local || p.Spread {
				continue
			}

			call.Args = append(call.Args, p.Default)

			continue
		}

		value, err := p.normalize(raw)
		if err != nil {
			return protocol.Call{}, err
		}

		switch {
		case p.Name == op.MethodParam:
			call.Method, _ = value.(string)
		case p.Name == op.PathParam:
			call.RequestPath, _ = value.(string)
		case p.Local:
		case p.Spread:
			items, _ := value.([]any)
			call.Args = append(call.Args, items...)
		default:
			call.Args = append(call.Args, value)
		}
	}

	return call, nil
}

func (op *Operation) missingError(required []string) error {
	msg := op.RequiredText
	if msg == "" {
		verb := "is"
		if len(required) > 1 {
			verb = "are"
		}

		msg = joinNames(required) + " " + verb + " required"
	}

	field := ""
	if len(required) > 0 {
		field = required[0]
	}

	return &errors.ValidationError{Field: field, Message: "Error: " + msg}
}

// InputSchema returns the JSON schema of the operation's arguments.
func (op *Operation) InputSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(op.Params))
	required := make([]string, 0, len(op.Params))

	for i := range op.Params {
		p := &op.Params[i]
		properties[p.Name] = p.schema()

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func (p *Param) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        string(p.Type),
		Description: p.Description,
	}

	for _, v := range p.Enum {
		s.Enum = append(s.Enum, v)
	}

	if p.Type == TypeArray {
		if p.Items != "" {
			s.Items = &jsonschema.Schema{Type: string(p.Items)}
		} else {
			s.Items = &jsonschema.Schema{OneOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "number"},
				{Type: "boolean"},
			}}
		}
	}

	if !p.Required && p.Default != nil {
		if data, err := json.Marshal(p.Default); err == nil {
			s.Default = data
		}
	}

	return s
}
