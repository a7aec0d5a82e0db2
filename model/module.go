package model

import (
	"fmt"
	"strings"
	"sync"
)

// HookFunc observes or mutates the output of a module during a forward pass.
// It runs inline on the forward-pass call stack.
//
// The received activation must not be modified in place. Returning a non-nil
// activation substitutes it for the module's output as seen by downstream
// computation and by hooks registered after this one. Returning (nil, nil) is
// pass-through. A non-nil error aborts the forward pass.
type HookFunc func(act *Activation) (*Activation, error)

// Handle removes a registered hook. Remove is idempotent.
type Handle interface {
	Remove()
}

// Module is a named node in a model's computation graph that supports
// post-forward hook registration.
type Module interface {
	// Name returns the module's name relative to its parent.
	Name() string
	// Children returns sub-modules in declaration order.
	Children() []Module
	// Child looks up a direct sub-module by name.
	Child(name string) (Module, bool)
	// RegisterHook registers a post-forward hook and returns its handle.
	RegisterHook(fn HookFunc) Handle
}

// BaseModule is the reference Module implementation. Runtime adapters embed
// or compose it to get the engine's hook protocol: ordered execution,
// replacement chaining and idempotent removal.
type BaseModule struct {
	name     string
	children []Module
	byName   map[string]Module

	mu     sync.Mutex
	hooks  []*hookEntry
	nextID uint64
}

type hookEntry struct {
	id uint64
	fn HookFunc
}

// NewBaseModule creates a module with the given name.
func NewBaseModule(name string) *BaseModule {
	return &BaseModule{
		name:   name,
		byName: make(map[string]Module),
	}
}

// Name returns the module's name.
func (m *BaseModule) Name() string { return m.name }

// AddChild appends a named sub-module.
func (m *BaseModule) AddChild(child Module) {
	m.children = append(m.children, child)
	m.byName[child.Name()] = child
}

// Children returns sub-modules in declaration order.
func (m *BaseModule) Children() []Module {
	out := make([]Module, len(m.children))
	copy(out, m.children)
	return out
}

// Child looks up a direct sub-module by name.
func (m *BaseModule) Child(name string) (Module, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// RegisterHook registers a post-forward hook.
func (m *BaseModule) RegisterHook(fn HookFunc) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry := &hookEntry{id: m.nextID, fn: fn}
	m.hooks = append(m.hooks, entry)
	return &baseHandle{module: m, id: entry.id}
}

// HookCount returns the number of live hooks. Used by lifecycle tests.
func (m *BaseModule) HookCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hooks)
}

// RunHooks feeds act through every registered hook in registration order.
// A hook's replacement becomes the input of the next hook; the final value is
// returned. Runtime adapters call this with the module's raw output.
func (m *BaseModule) RunHooks(act *Activation) (*Activation, error) {
	m.mu.Lock()
	entries := make([]*hookEntry, len(m.hooks))
	copy(entries, m.hooks)
	m.mu.Unlock()

	current := act
	for _, e := range entries {
		replaced, err := e.fn(current)
		if err != nil {
			return nil, fmt.Errorf("hook on %q: %w", m.name, err)
		}
		if replaced != nil {
			current = replaced
		}
	}
	return current, nil
}

type baseHandle struct {
	module *BaseModule
	id     uint64
	once   sync.Once
}

func (h *baseHandle) Remove() {
	h.once.Do(func() {
		m := h.module
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, e := range m.hooks {
			if e.id == h.id {
				m.hooks = append(m.hooks[:i], m.hooks[i+1:]...)
				return
			}
		}
	})
}

// Lookup resolves a dotted path (e.g. "model.layers.14.mlp") from the
// model's root module.
func Lookup(m Model, path string) (Module, bool) {
	current := m.Root()
	if path == "" {
		return current, true
	}
	for _, part := range strings.Split(path, ".") {
		next, ok := current.Child(part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
