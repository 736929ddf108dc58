// Package registry implements the device registry: an
// ordered map from sysname to *ratbag.Device, with deterministic
// sysname-order iteration independent of insertion order, and the
// attached/detached/removed lifecycle transitions.
//
// Keyed on the stable sysname string rather than an auto-incrementing
// numeric id, and kept as a sorted slice rather than an unordered one,
// so iteration order is sysname order rather than arrival order.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ratbagd/ratbagd/ratbag"
)

// Registry is an ordered, sysname-keyed collection of devices.
// Lookup and Next are O(log n) via binary search over a sorted slice
// and First is O(1); Insert and Remove binary-search too but then shift
// the slice, so they are O(n). Insert of a duplicate sysname is a
// programmer error and panics.
type Registry struct {
	mu      sync.RWMutex
	entries []*ratbag.Device // kept sorted by Sysname
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

func (r *Registry) search(sysname string) (int, bool) {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].Sysname >= sysname
	})
	if i < len(r.entries) && r.entries[i].Sysname == sysname {
		return i, true
	}
	return i, false
}

// Insert adds dev to the registry and marks it attached. Panics if a
// device with the same sysname is already present.
func (r *Registry) Insert(dev *ratbag.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, found := r.search(dev.Sysname)
	if found {
		panic(fmt.Sprintf("registry: duplicate sysname %q", dev.Sysname))
	}
	r.entries = append(r.entries, nil)
	copy(r.entries[i+1:], r.entries[i:])
	r.entries[i] = dev
	dev.MarkAttached()
}

// Lookup returns the device registered under sysname, or nil.
func (r *Registry) Lookup(sysname string) *ratbag.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, found := r.search(sysname); found {
		return r.entries[i]
	}
	return nil
}

// Remove detaches the device registered under sysname from the
// registry, marking it removed (it may still be refcounted by
// outstanding handles; it is only destroyed once the last one
// releases). Returns
// the device, or nil if sysname was not registered.
func (r *Registry) Remove(sysname string) *ratbag.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, found := r.search(sysname)
	if !found {
		return nil
	}
	dev := r.entries[i]
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	dev.MarkRemoved()
	return dev
}

// First returns the first device in sysname order, or nil if empty.
func (r *Registry) First() *ratbag.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[0]
}

// Next returns the device immediately after sysname in sysname order,
// or nil if sysname is the last entry (or not present).
func (r *Registry) Next(sysname string) *ratbag.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, found := r.search(sysname)
	if !found {
		return nil
	}
	if i+1 >= len(r.entries) {
		return nil
	}
	return r.entries[i+1]
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Each iterates every device in sysname order, stopping early if fn
// returns false. fn is called with the registry's read lock held, so
// it must not call back into the registry.
func (r *Registry) Each(fn func(*ratbag.Device) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, dev := range r.entries {
		if !fn(dev) {
			return
		}
	}
}

// Sysnames returns a snapshot of every registered sysname, in order.
func (r *Registry) Sysnames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, d := range r.entries {
		out[i] = d.Sysname
	}
	return out
}
