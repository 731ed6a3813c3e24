package platform

import (
	"sort"
	"sync"
)

// Factory builds a backend: it opens the native libraries and binds their
// entry points. On failure it must release whatever it acquired.
type Factory func(opts Options) (Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[Kind]Factory)
)

// Register installs the factory for kind, replacing any previous one.
// Backend packages call it from init().
func Register(kind Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[kind] = factory
}

// Unregister removes kind from the registry. This is useful for testing.
func Unregister(kind Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, kind)
}

// IsRegistered checks whether a backend for kind is linked in.
func IsRegistered(kind Kind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[kind]
	return ok
}

// Registered returns the linked-in kinds in ascending order.
func Registered() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]Kind, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func lookup(kind Kind) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[kind]
	return f, ok
}
