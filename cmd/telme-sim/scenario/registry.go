package scenario

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/fuda"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Scenario{}
)

func init() {
	Register(Checkout())
	Register(Import())
	Register(HealthCheck())
}

// Register adds s, replacing any scenario of the same name.
func Register(s *Scenario) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[s.Name] = s
}

// Get returns the registered scenario called name.
func Get(name string) (*Scenario, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[name]

	return s, ok
}

// List returns all registered scenarios sorted by name.
func List() []*Scenario {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Scenario, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Scenario) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

// LoadFromFile reads and validates a YAML or JSON scenario file.
func LoadFromFile(path string) (*Scenario, error) {
	var s Scenario
	if err := fuda.LoadFile(path, &s); err != nil {
		return nil, fmt.Errorf("load scenario file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}
