// Package capability defines the side-effecting actions the agent can
// propose, and the registry that validates and executes them. Capabilities
// never run directly off model output; the proposal layer gates every
// invocation behind user confirmation.
package capability

import (
	"context"
	"fmt"
	"slices"
)

// Field describes one argument in a capability schema. Fields are checked
// in declaration order and the first violated constraint is reported.
type Field struct {
	Name        string   `json:"name"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	MinLen      int      `json:"min_len,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Schema is an ordered list of argument fields.
type Schema []Field

// ExecutionResult is the outcome of running a capability. OK distinguishes
// a clean run from a domain failure; transport-level failures come back as
// a separate error from the executor.
type ExecutionResult struct {
	OK    bool           `json:"ok"`
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Capability is a named, schema-described action.
type Capability struct {
	Name        string
	Description string
	// Sensitive marks capabilities that reach other people (messaging,
	// calls). They follow the same confirmation flow but are surfaced
	// distinctly to the user.
	Sensitive bool
	Schema    Schema
	Run       func(ctx context.Context, args map[string]string) (*ExecutionResult, error)
}

// Validate checks raw args against the schema and returns the cleaned
// string-valued argument map. Unknown keys are dropped. All values must be
// strings; the model has no business sending anything else.
func (s Schema) Validate(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(s))
	for _, f := range s {
		v, present := raw[f.Name]
		if !present {
			if f.Default != "" {
				out[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, fmt.Errorf("missing required argument %q", f.Name)
			}
			continue
		}

		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a string", f.Name)
		}
		if f.MinLen > 0 && len(str) < f.MinLen {
			return nil, fmt.Errorf("argument %q must be at least %d characters", f.Name, f.MinLen)
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, str) {
			return nil, fmt.Errorf("argument %q must be one of %v", f.Name, f.Enum)
		}
		out[f.Name] = str
	}
	return out, nil
}
