package arch

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rotalabs/steergo/model"
)

// Registry holds known architecture configs keyed by model identity.
// Lookup tries an exact match first, then a case-insensitive substring match
// in either direction (handles versioned or path-qualified identities); when
// several names match, the longest wins.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]Config)}
}

// Register adds a config under its name. Re-registering a name replaces the
// previous config.
func (r *Registry) Register(cfg Config) error {
	if cfg.Name == "" {
		return model.Configf("config name must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name] = cfg.clone()
	return nil
}

// Lookup finds a config for a model identity.
func (r *Registry) Lookup(identity string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.configs[identity]; ok {
		return cfg.clone(), nil
	}

	// Longest matching name wins; ties resolve in sorted name order, so an
	// ambiguous identity always picks the same config.
	lower := strings.ToLower(identity)
	var (
		bestName string
		bestCfg  Config
		found    bool
	)
	sortedNames := make([]string, 0, len(r.configs))
	for name := range r.configs {
		sortedNames = append(sortedNames, name)
	}
	slices.Sort(sortedNames)
	for _, name := range sortedNames {
		nameLower := strings.ToLower(name)
		if !strings.Contains(lower, nameLower) && !strings.Contains(nameLower, lower) {
			continue
		}
		if !found || len(name) > len(bestName) {
			bestName, bestCfg, found = name, r.configs[name], true
		}
	}
	if found {
		return bestCfg.clone(), nil
	}

	return Config{}, fmt.Errorf("%w: no config for model %q", model.ErrNotFound, identity)
}

// Names returns registered identities, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// defaultRegistry holds the built-in architecture table. It is populated once
// at init and may be extended by Register before sessions start.
var defaultRegistry = NewRegistry()

// Register adds a config to the process-wide registry.
func Register(cfg Config) error {
	return defaultRegistry.Register(cfg)
}

// Lookup finds a config in the process-wide registry.
func Lookup(identity string) (Config, error) {
	return defaultRegistry.Lookup(identity)
}

// Names returns the identities known to the process-wide registry.
func Names() []string {
	return defaultRegistry.Names()
}
