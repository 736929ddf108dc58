package ratbag

import (
	"sync/atomic"
)

// DeviceLifecycle tracks where a Device sits relative to the registry
// detached devices have no bus objects registered,
// attached devices are live in the registry, removed devices have
// been detached but may still be pinned by outstanding references.
type DeviceLifecycle int32

const (
	LifecycleDetached DeviceLifecycle = iota
	LifecycleAttached
	LifecycleRemoved
)

// Device mirrors a single hardware peripheral. It is identified by
// its sysname, the stable kernel identifier of the raw-HID node it was
// created from, and owns an ordered list of Profiles.
//
// A Device is refcounted: Ref/Unref track outstanding handles held
// across asynchronous bus calls (commit tasks, in particular). It is
// only safe to free the driver's opaque per-device state once the
// refcount reaches zero *and* the device has been removed from the
// registry; OnDestroyed is invoked at that point.
type Device struct {
	Sysname         string
	Vendor          uint16
	Product         uint16
	Version         uint16
	BusType         BusType
	Name            string
	FirmwareVersion string
	Type            DeviceType

	Driver      Driver
	DriverState any

	Profiles []Profile

	lifecycle DeviceLifecycle
	refcount  int32

	// OnDestroyed, if set, is invoked when the refcount reaches zero
	// while the device is in LifecycleRemoved, so a caller can react
	// to final teardown (e.g. logging). The registry does not set it.
	OnDestroyed func(*Device)
}

// NewDevice constructs a detached Device. Callers (normally the
// hot-plug source or a driver's constructor path) must still run the
// driver's Probe (or TestProbe), which calls InitProfiles, before
// attaching it to a registry.
func NewDevice(sysname string, busType BusType, vendor, product, version uint16) *Device {
	return &Device{
		Sysname: sysname,
		BusType: busType,
		Vendor:  vendor,
		Product: product,
		Version: version,
		Type:    DeviceTypeUnspecified,
	}
}

// InitProfiles pre-allocates the full lattice of Profiles/Resolutions/
// Buttons/LEDs with default values and all dirty flags clear. A driver
// calls this once near the start of Probe, then populates each entity
// by reading from the wire. Calling it a second time replaces the
// existing lattice.
func (d *Device) InitProfiles(numProfiles, numResolutions, numButtons, numLeds int) {
	profiles := make([]Profile, numProfiles)
	for i := range profiles {
		p := &profiles[i]
		p.device = d
		p.Index = i
		p.ReportRate = ReportRateMin
		p.AngleSnapping = -1
		p.Debounce = -1
		p.Resolutions = make([]Resolution, numResolutions)
		for j := range p.Resolutions {
			p.Resolutions[j] = Resolution{Index: j, profile: p}
		}
		p.Buttons = make([]Button, numButtons)
		for k := range p.Buttons {
			p.Buttons[k] = Button{Index: k, profile: p}
		}
		p.Leds = make([]Led, numLeds)
		for m := range p.Leds {
			p.Leds[m] = Led{Index: m, profile: p}
		}
	}
	if len(profiles) > 0 {
		profiles[0].IsActive = true
	}
	d.Profiles = profiles
}

// Lifecycle returns the device's current registry lifecycle state.
func (d *Device) Lifecycle() DeviceLifecycle { return d.lifecycle }

// Ref increments the device's reference count. Call this before
// handing a *Device to an asynchronous task (a deferred commit, a
// bus method invocation that outlives the dispatch call) so the
// device is not torn down mid-flight.
func (d *Device) Ref() {
	atomic.AddInt32(&d.refcount, 1)
}

// Unref decrements the reference count and, if it reaches zero while
// the device has been removed from the registry, frees the driver's
// opaque state and invokes OnDestroyed.
func (d *Device) Unref() {
	if atomic.AddInt32(&d.refcount, -1) == 0 && d.lifecycle == LifecycleRemoved {
		d.destroy()
	}
}

// RefCount reports the current reference count; it never goes
// negative.
func (d *Device) RefCount() int32 {
	return atomic.LoadInt32(&d.refcount)
}

// MarkAttached and MarkRemoved are called only by the device registry
// (internal/registry) as a Device transitions between registry
// states; nothing else should call them.
func (d *Device) MarkAttached() { d.lifecycle = LifecycleAttached }

func (d *Device) MarkRemoved() {
	d.lifecycle = LifecycleRemoved
	if d.RefCount() == 0 {
		d.destroy()
	}
}

func (d *Device) destroy() {
	if d.Driver != nil {
		d.Driver.Remove(d)
	}
	if d.OnDestroyed != nil {
		d.OnDestroyed(d)
	}
}

// ActiveProfile returns a pointer to the Profile with IsActive set,
// and true, or nil and false if no profile is active (should not
// happen once a device has been successfully probed: exactly one
// profile is always active).
func (d *Device) ActiveProfile() (*Profile, bool) {
	for i := range d.Profiles {
		if d.Profiles[i].IsActive {
			return &d.Profiles[i], true
		}
	}
	return nil, false
}

// ValidateInvariants re-checks the object model's structural invariants
// across the whole device. Drivers call this (or rely on the caller
// doing so) after Probe; a failure means the device must be discarded
// rather than attached.
func (d *Device) ValidateInvariants() error {
	if len(d.Profiles) == 0 {
		return ErrInvalidValue("device has no profiles")
	}
	activeCount := 0
	for i := range d.Profiles {
		p := &d.Profiles[i]
		if p.IsActive {
			activeCount++
		}
		if err := p.validateInvariants(); err != nil {
			return err
		}
	}
	if activeCount != 1 {
		return ErrInvalidValue("device must have exactly one active profile, found %d", activeCount)
	}
	return nil
}
