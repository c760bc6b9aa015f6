package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

var (
	// ErrUnknownCapability means no capability is registered under the name.
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrInvalidArgs means the arguments failed schema validation.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Descriptor is the read-only view of a registered capability, safe to
// serialize into API responses and model prompts.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Sensitive   bool   `json:"sensitive"`
	Schema      Schema `json:"schema"`
}

// Registry holds the capabilities available to the agent.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]*Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]*Capability)}
}

// Register adds a capability. Re-registering a name replaces the previous
// entry.
func (r *Registry) Register(c *Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Name] = c
}

// Get returns the capability with the given name.
func (r *Registry) Get(name string) (*Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// List returns descriptors for all registered capabilities, sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.MapToSlice(r.caps, func(_ string, c *Capability) Descriptor {
		return Descriptor{
			Name:        c.Name,
			Description: c.Description,
			Sensitive:   c.Sensitive,
			Schema:      c.Schema,
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke validates args against the capability's schema and runs it. The
// executor is never called when the name is unknown or validation fails.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (*ExecutionResult, error) {
	c, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCapability, name)
	}
	clean, err := c.Schema.Validate(args)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %v", ErrInvalidArgs, name, err)
	}
	return c.Run(ctx, clean)
}
