package action

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Factory creates a fresh action instance.
type Factory func() Action

var (
	defaultRegistry = make(map[string]Factory)
	registryMutex   = &sync.RWMutex{}
)

// Register adds an action factory under name. Registering the same name
// twice is an error.
func Register(name string, factory Factory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := defaultRegistry[name]; exists {
		return errors.Errorf("action with name %q already registered", name)
	}
	defaultRegistry[name] = factory
	return nil
}

// Get returns a new instance of the named action.
func Get(name string) (Action, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factory, exists := defaultRegistry[name]
	if !exists {
		return nil, errors.Errorf("action with name %q not found in registry", name)
	}
	return factory(), nil
}

// RegisteredNames returns the sorted names of all registered actions.
func RegisteredNames() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(defaultRegistry))
	for name := range defaultRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
