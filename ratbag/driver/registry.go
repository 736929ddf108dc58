// Package driver implements the descriptor-database-driven driver
// selection: a context-scoped registry keyed
// on (bustype, vendor, product, version) that hands back the
// ratbag.Driver bound to a newly discovered device, falling back to a
// named test driver when the context is in test mode.
//
// Concrete per-vendor wire protocols are out of scope for this
// repository; only the interface and the development-time
// test driver (testdriver subpackage) live here.
package driver

import (
	"fmt"
	"sync"

	"github.com/ratbagd/ratbagd/ratbag"
)

// DescriptorKey identifies one hardware variant in the descriptor
// database.
type DescriptorKey struct {
	BusType ratbag.BusType
	Vendor  uint16
	Product uint16
	Version uint16
}

// Factory constructs the ratbag.Driver bound to a matching device.
// Drivers are typically stateless singletons; Factory exists so a
// driver implementation can allocate per-process state once at
// registration time rather than per-device.
type Factory func() ratbag.Driver

// Registry is a context-scoped table of known (descriptor -> driver)
// bindings plus an optional named fallback used when the owning
// ratbag.Context is in test mode. Registries are cheap to construct
// per-Context so tests get full isolation (design note §9).
type Registry struct {
	mu         sync.RWMutex
	byKey      map[DescriptorKey]Factory
	named      map[string]Factory
	testDriver string
}

// NewRegistry returns an empty Registry. testDriverName names the
// driver (registered via RegisterNamed) used as the fallback when
// Lookup is called with TestMode set and no descriptor matches.
func NewRegistry(testDriverName string) *Registry {
	return &Registry{
		byKey:      make(map[DescriptorKey]Factory),
		named:      make(map[string]Factory),
		testDriver: testDriverName,
	}
}

// Register binds a driver factory to one descriptor-database entry.
// Registering the same key twice is a programmer error and panics,
// the registry is meant to be populated once from package init().
func (r *Registry) Register(key DescriptorKey, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[key]; exists {
		panic(fmt.Sprintf("driver already registered for %+v", key))
	}
	r.byKey[key] = factory
}

// RegisterNamed binds a driver factory under a name, independent of
// any hardware descriptor, so it can be selected explicitly (the test
// driver, or a future "force this driver" debugging hook).
func (r *Registry) RegisterNamed(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.named[name] = factory
}

// Lookup returns the driver bound to key, or — if ctx is in test mode
// and no binding matches — the registry's named test driver. Returns
// (nil, false) if nothing matches.
func (r *Registry) Lookup(ctx *ratbag.Context, key DescriptorKey) (ratbag.Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.byKey[key]; ok {
		return f(), true
	}
	if ctx != nil && ctx.TestMode && r.testDriver != "" {
		if f, ok := r.named[r.testDriver]; ok {
			return f(), true
		}
	}
	return nil, false
}

// LookupNamed returns the driver registered under name, used by the
// bus's dev-only LoadTestDevice method to select the test driver
// explicitly regardless of descriptor.
func (r *Registry) LookupNamed(name string) (ratbag.Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.named[name]
	if !ok {
		return nil, false
	}
	return f(), true
}
