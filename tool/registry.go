package tool

import (
	"fmt"
	"sort"
)

// Registry maps tool names to their implementations. It is populated at
// agent construction and read-only afterwards, so it is safe to share across
// concurrent runs without synchronization.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. Empty toolsets and
// duplicate names are rejected so a misconfigured toolset fails at
// construction, not mid-run.
func NewRegistry(tools ...Tool) (*Registry, error) {
	if len(tools) == 0 {
		return nil, fmt.Errorf("registry: no tools provided")
	}
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("registry: tool with empty name")
		}
		if _, exists := r.tools[t.Name()]; exists {
			return nil, fmt.Errorf("registry: duplicate tool name %q", t.Name())
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns the registered tools in registration order.
func (r *Registry) All() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// SortedNames returns the registered tool names sorted lexically; useful for
// deterministic prompt rendering in tests.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
