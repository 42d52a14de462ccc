package tools

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ToolRegistry manages available tools with thread-safe operations
type ToolRegistry interface {
	RegisterTool(name string, def ToolDefinition) error
	GetTool(name string) (*ToolDefinition, error)
	ListTools() []ToolDefinition
	UnregisterTool(name string) error
	HasTool(name string) bool
	Clone() ToolRegistry
}

// ErrToolNotFound is returned by GetTool and UnregisterTool for unknown names.
var ErrToolNotFound = errors.New("tool not found")

// InMemoryToolRegistry is a thread-safe in-memory implementation of ToolRegistry
type InMemoryToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]ToolDefinition
}

func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{
		tools: make(map[string]ToolDefinition),
	}
}

// NewRegistryFromTools registers every definition under its own name.
func NewRegistryFromTools(defs ...*ToolDefinition) (*InMemoryToolRegistry, error) {
	r := NewInMemoryToolRegistry()
	for _, d := range defs {
		if d == nil {
			continue
		}
		if err := r.RegisterTool(d.Name, *d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *InMemoryToolRegistry) RegisterTool(name string, def ToolDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return errors.New("tool name cannot be empty")
	}
	if def.Name != "" && def.Name != name {
		return errors.Errorf("tool definition name (%s) does not match registry name (%s)", def.Name, name)
	}

	def.Name = name
	r.tools[name] = def
	return nil
}

func (r *InMemoryToolRegistry) GetTool(name string) (*ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, errors.Wrap(ErrToolNotFound, name)
	}
	toolCopy := tool
	return &toolCopy, nil
}

// ListTools returns all registered tools sorted by name.
func (r *InMemoryToolRegistry) ListTools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

func (r *InMemoryToolRegistry) UnregisterTool(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return errors.Wrap(ErrToolNotFound, name)
	}
	delete(r.tools, name)
	return nil
}

func (r *InMemoryToolRegistry) HasTool(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

func (r *InMemoryToolRegistry) Clone() ToolRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewInMemoryToolRegistry()
	for name, tool := range r.tools {
		cloned.tools[name] = tool
	}
	return cloned
}

func (r *InMemoryToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}
