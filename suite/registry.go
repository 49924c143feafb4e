package suite

import "sync"

// The package registry backs binaries that register suites from init
// functions or main before handing off to the harness. Library users who
// want isolation can skip it entirely and pass suites around explicitly.
var (
	registryMu sync.Mutex
	registry   []*Suite
)

// Register appends s to the package registry, preserving registration
// order.
func Register(s *Suite) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, s)
}

// All returns the registered suites in registration order.
func All() []*Suite {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]*Suite, len(registry))
	copy(out, registry)
	return out
}

// Reset clears the package registry. Intended for tests.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}
