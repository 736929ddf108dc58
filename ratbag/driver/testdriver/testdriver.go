// Package testdriver implements a fully in-memory ratbag.Driver used
// by unit tests and by the bus's development-only LoadTestDevice
// method. It never touches a hidraw node: TestProbe populates the
// object graph from a descriptor literal (Probe always fails), and
// Commit/RefreshActiveResolution mutate an in-memory "hardware" mirror
// that tests can poke to simulate out-of-band changes (physical DPI
// button presses) or commit failures.
package testdriver

import (
	"encoding/json"
	"sync"

	"github.com/ratbagd/ratbagd/ratbag"
)

// Descriptor is the JSON shape TestProbe/LoadTestDevice accepts; it is
// intentionally a small subset of the full object model, enough to
// exercise every structural invariant a real device must satisfy.
type Descriptor struct {
	Name            string   `json:"name"`
	FirmwareVersion string   `json:"firmware_version"`
	Type            int32    `json:"type"`
	NumProfiles     int      `json:"num_profiles"`
	NumResolutions  int      `json:"num_resolutions"`
	NumButtons      int      `json:"num_buttons"`
	NumLeds         int      `json:"num_leds"`
	AllowedDpi      []int    `json:"allowed_dpi"`
	AllowedRates    []int    `json:"allowed_rates"`
}

// Driver is the test/dev driver. One instance is shared by every
// device it probes; per-device mutable state lives in *state, stored
// as the Device's opaque DriverState.
type Driver struct {
	mu sync.Mutex

	// FailNextCommit, if set, causes the next Commit call for any
	// device probed by this driver instance to fail once and then
	// clear itself — used to exercise the commit-failure/Resync path.
	FailNextCommit bool
}

// New returns a fresh test driver instance.
func New() *Driver { return &Driver{} }

type state struct {
	// hwActiveResolution simulates the hardware-reported active
	// resolution index per profile, independent of the in-memory
	// IsActive flags, so the poll loop has something real to detect
	// a difference against.
	hwActiveResolution []int
}

func (d *Driver) Name() string { return "test" }

// Probe always fails: the test driver only ever populates a device via
// TestProbe. Selection of the test driver for a test-mode context
// happens in the registry; population happens through TestProbe.
func (d *Driver) Probe(dev *ratbag.Device) error {
	return ratbag.ErrDevice("test driver does not probe real hardware; use TestProbe")
}

// TestProbe populates dev from a JSON-encoded Descriptor.
func (d *Driver) TestProbe(dev *ratbag.Device, raw []byte) error {
	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return ratbag.ErrInvalidValue("malformed test descriptor: %v", err)
	}
	if desc.NumProfiles < 1 {
		return ratbag.ErrInvalidValue("test descriptor needs at least one profile")
	}

	dev.Name = desc.Name
	dev.FirmwareVersion = desc.FirmwareVersion
	dev.Type = ratbag.DeviceType(desc.Type)
	dev.InitProfiles(desc.NumProfiles, desc.NumResolutions, desc.NumButtons, desc.NumLeds)

	allowedDpi := desc.AllowedDpi
	if len(allowedDpi) == 0 {
		allowedDpi = []int{400, 800, 1600, 3200}
	}
	allowedRates := desc.AllowedRates
	if len(allowedRates) == 0 {
		allowedRates = []int{125, 500, 1000}
	}

	st := &state{hwActiveResolution: make([]int, desc.NumProfiles)}

	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		p.Enabled = true
		p.Capabilities = map[ratbag.ProfileCapability]bool{
			ratbag.ProfileCapSetDefault: true,
			ratbag.ProfileCapDisable:    true,
		}
		p.AllowedRates = allowedRates
		p.ReportRate = allowedRates[0]
		for j := range p.Resolutions {
			r := &p.Resolutions[j]
			r.AllowedDpi = allowedDpi
			r.DpiX, r.DpiY = allowedDpi[0], allowedDpi[0]
			r.Capabilities = map[ratbag.ResolutionCapability]bool{
				ratbag.ResolutionCapDisable: true,
			}
		}
		if len(p.Resolutions) > 0 {
			p.Resolutions[0].IsActive = true
			p.Resolutions[0].IsDefault = true
		}
		for k := range p.Buttons {
			p.Buttons[k].Capabilities = ratbag.ButtonActionCapNone | ratbag.ButtonActionCapButton |
				ratbag.ButtonActionCapKey | ratbag.ButtonActionCapMacro | ratbag.ButtonActionCapSpecial
		}
		for m := range p.Leds {
			p.Leds[m].SupportedModes = map[ratbag.LedMode]bool{
				ratbag.LedModeOff: true, ratbag.LedModeOn: true,
				ratbag.LedModeCycle: true, ratbag.LedModeBreathing: true,
			}
		}
	}
	dev.DriverState = st

	if err := dev.ValidateInvariants(); err != nil {
		dev.DriverState = nil
		return err
	}
	return nil
}

// Commit simulates a wire transaction: it consumes FailNextCommit (if
// set) to fail exactly once, otherwise copies every profile's active
// resolution into the simulated hardware mirror and returns success.
func (d *Driver) Commit(dev *ratbag.Device) error {
	d.mu.Lock()
	fail := d.FailNextCommit
	d.FailNextCommit = false
	d.mu.Unlock()
	if fail {
		return ratbag.ErrDevice("simulated commit failure")
	}

	st, _ := dev.DriverState.(*state)
	if st == nil {
		return ratbag.ErrImplementation("test driver state missing on commit")
	}
	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		for j := range p.Resolutions {
			if p.Resolutions[j].IsActive {
				st.hwActiveResolution[i] = j
			}
		}
	}
	return nil
}

// SetActiveProfile is a no-op: the simulated hardware has no separate
// "current profile" wire command to exercise beyond the dirty bit
// commit already walks.
func (d *Driver) SetActiveProfile(dev *ratbag.Device, index int) error {
	return nil
}

// RefreshActiveResolution compares the simulated hardware's active
// resolution index against the in-memory IsActive flags for every
// profile and updates them, reporting whether anything changed.
func (d *Driver) RefreshActiveResolution(dev *ratbag.Device) (ratbag.RefreshResult, error) {
	st, _ := dev.DriverState.(*state)
	if st == nil {
		return ratbag.RefreshUnchanged, ratbag.ErrImplementation("test driver state missing on refresh")
	}
	changed := ratbag.RefreshUnchanged
	for i := range dev.Profiles {
		p := &dev.Profiles[i]
		if i >= len(st.hwActiveResolution) {
			continue
		}
		want := st.hwActiveResolution[i]
		for j := range p.Resolutions {
			shouldBeActive := j == want && !p.Resolutions[j].IsDisabled
			if p.Resolutions[j].IsActive != shouldBeActive {
				p.Resolutions[j].IsActive = shouldBeActive
				changed = ratbag.RefreshChanged
			}
		}
	}
	return changed, nil
}

// Remove releases the device's opaque state.
func (d *Driver) Remove(dev *ratbag.Device) {
	dev.DriverState = nil
}

// SetHardwareActiveResolution simulates a physical DPI-button press:
// it changes the hardware mirror out from under the in-memory state
// without touching IsActive, so a subsequent RefreshActiveResolution
// call (as the poll loop performs) observes and reports the change.
func (d *Driver) SetHardwareActiveResolution(dev *ratbag.Device, profileIndex, resolutionIndex int) {
	st, _ := dev.DriverState.(*state)
	if st == nil || profileIndex >= len(st.hwActiveResolution) {
		return
	}
	st.hwActiveResolution[profileIndex] = resolutionIndex
}

var (
	_ ratbag.Driver              = (*Driver)(nil)
	_ ratbag.TestProber          = (*Driver)(nil)
	_ ratbag.ActiveProfileSetter = (*Driver)(nil)
	_ ratbag.ResolutionRefresher = (*Driver)(nil)
)
