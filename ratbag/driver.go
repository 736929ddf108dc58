package ratbag

// Driver is the polymorphic vtable a per-vendor implementation
// provides. The core never speaks a vendor wire protocol itself; it
// only calls through this interface. Concrete vendor
// protocols are out of scope for this repository — only the
// interface and a development-time test driver live here.
type Driver interface {
	// Name identifies the driver for logging and descriptor-database
	// registration.
	Name() string

	// Probe populates dev's object graph from the wire: it must call
	// dev.InitProfiles to allocate the lattice, then fill in every
	// entity's fields and capability bits, leaving all dirty flags
	// false. Returns an *Error with ErrCodeDevice (commonly wrapping
	// "no match") if the hardware does not match this driver, or
	// ErrCodeInvalidValue if the wire data is malformed.
	//
	// Probe must either succeed with dev satisfying every invariant
	// required of a valid device, or return an error having made no observable change
	// to dev; the caller re-validates invariants after a successful
	// Probe and discards the device if they do not hold.
	Probe(dev *Device) error

	// Commit walks the dirty subtree of dev and writes it to
	// hardware in the order rate, resolutions, buttons, LEDs. The
	// active-profile switch is not part of Commit: the commit
	// scheduler issues it afterwards through ActiveProfileSetter.
	// Returns an *Error with ErrCodeDevice
	// on any wire failure; the caller does not assume partial
	// progress was made.
	Commit(dev *Device) error

	// Remove releases any opaque per-device driver state. Called
	// once, when the device's refcount reaches zero after removal
	// from the registry.
	Remove(dev *Device)
}

// ActiveProfileSetter is implemented by drivers that need a dedicated
// wire command to switch the device's active profile, issued by
// Commit when a profile's active-dirty bit is set. Optional: a driver
// that never needs an explicit command (e.g. active profile is
// implied by some other write) need not implement it.
type ActiveProfileSetter interface {
	SetActiveProfile(dev *Device, index int) error
}

// ResolutionRefresher is implemented by drivers that can re-read the
// hardware's current active-resolution index outside of a commit,
// used by the poll loop (C7). Optional: a driver without a cheap
// out-of-band read need not implement it, and is then treated as a
// no-op returning Unchanged.
type ResolutionRefresher interface {
	// RefreshActiveResolution re-reads the active resolution index
	// from hardware for every profile on dev and updates the
	// in-memory IsActive flags accordingly. Returns RefreshChanged if
	// any flag changed, RefreshUnchanged otherwise, or an error on
	// wire failure.
	RefreshActiveResolution(dev *Device) (RefreshResult, error)
}

// TestProber is implemented by the development-only test driver: it
// populates a device from an in-memory descriptor instead of the
// wire, backing the bus's dev-only LoadTestDevice method.
type TestProber interface {
	TestProbe(dev *Device, descriptor []byte) error
}

// RefreshResult is the tri-state return of RefreshActiveResolution.
type RefreshResult int

const (
	RefreshUnchanged RefreshResult = 0
	RefreshChanged   RefreshResult = 1
)
