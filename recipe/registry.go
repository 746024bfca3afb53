package recipe

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	defaultRegistry = make(map[string]Factory)
	registryMutex   = &sync.RWMutex{}
)

// Register adds a recipe factory under name. Registering the same name
// twice is an error.
func Register(name string, factory Factory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := defaultRegistry[name]; exists {
		return errors.Errorf("recipe with name %q already registered", name)
	}
	defaultRegistry[name] = factory
	return nil
}

// Get returns a new instance of the named recipe.
func Get(name string) (Recipe, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factory, exists := defaultRegistry[name]
	if !exists {
		return nil, errors.Errorf("recipe with name %q not found in registry", name)
	}
	return factory(), nil
}

// RegisteredNames returns the sorted names of all registered recipes.
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
