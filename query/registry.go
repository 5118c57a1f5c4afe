package query

import (
	"sort"
	"sync"
)

// Constructor builds a Provider from options. Constructors must be
// independent of one another: registration order carries no meaning.
type Constructor func(Options) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register adds a named backend constructor. Backends register themselves
// from init, the way database/sql drivers do; re-registering a name replaces
// the previous constructor.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// New constructs the named backend. Unregistered names fail with
// BackendNotRegisteredError.
func New(name string, opts Options) (Provider, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &BackendNotRegisteredError{Name: name}
	}
	return ctor(opts)
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
