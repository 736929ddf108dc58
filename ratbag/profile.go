package ratbag

// Profile is a device-resident named configuration: button mappings,
// resolution slots, LED settings and a report rate. Exactly one
// Profile per Device is active at a time.
type Profile struct {
	device *Device

	Index       int
	Enabled     bool
	IsActive    bool
	Name        string // UTF-8; transcoded from ISO-8859-1 on read by the driver.
	Capabilities map[ProfileCapability]bool

	ReportRate      int
	AllowedRates    []int
	AngleSnapping   int // -1 = unset
	Debounce        int // -1 = unset
	AllowedDebounce []int

	Resolutions []Resolution
	Buttons     []Button
	Leds        []Led

	IsDirty              bool
	IsRateDirty          bool
	IsAngleSnapDirty     bool
	IsDebounceDirty      bool
	IsActiveDirty        bool
}

// Device returns the Profile's owning Device.
func (p *Profile) Device() *Device { return p.device }

func (p *Profile) hasCapability(c ProfileCapability) bool {
	return p.Capabilities != nil && p.Capabilities[c]
}

// markDirty sets the profile-wide dirty bit. Setters that own a
// sub-dirty bit (rate, angle snap, debounce, active) set it themselves;
// commit (driver.Commit) and the commit scheduler consult these.
func (p *Profile) markDirty() { p.IsDirty = true }

// SetName renames the profile. Names are free-form; the only
// validation is the UTF-8 requirement enforced by the Go string type
// itself, so this never fails on value grounds, only skips a no-op
// write (contract step 3).
func (p *Profile) SetName(name string) error {
	if p.Name == name {
		return nil
	}
	p.Name = name
	p.markDirty()
	return nil
}

// SetEnabled flips the profile's enabled flag. Disabling the last
// remaining enabled profile, or disabling the active profile, fails
// with ErrCodeInvalidValue and leaves state unchanged.
func (p *Profile) SetEnabled(enabled bool) error {
	if !p.hasCapability(ProfileCapDisable) {
		return ErrCapability("disabling profiles")
	}
	if p.Enabled == enabled {
		return nil
	}
	if !enabled {
		if p.IsActive {
			return ErrInvalidValue("cannot disable the active profile")
		}
		enabledCount := 0
		for i := range p.device.Profiles {
			if p.device.Profiles[i].Enabled {
				enabledCount++
			}
		}
		if enabledCount <= 1 {
			return ErrInvalidValue("cannot disable the last enabled profile")
		}
	}
	p.Enabled = enabled
	p.markDirty()
	return nil
}

// SetReportRate clamps rate into [ReportRateMin, ReportRateMax] and
// writes it if it differs from the current value; this is a clamp,
// never a rejection.
func (p *Profile) SetReportRate(rate int) error {
	if rate < ReportRateMin {
		rate = ReportRateMin
	} else if rate > ReportRateMax {
		rate = ReportRateMax
	}
	if p.ReportRate == rate {
		return nil
	}
	p.ReportRate = rate
	p.IsRateDirty = true
	p.markDirty()
	return nil
}

// SetAngleSnapping sets the angle-snap value, or -1 to unset it.
func (p *Profile) SetAngleSnapping(value int) error {
	if p.AngleSnapping == value {
		return nil
	}
	p.AngleSnapping = value
	p.IsAngleSnapDirty = true
	p.markDirty()
	return nil
}

// SetDebounce sets the debounce time. value must be -1 (unset) or a
// member of AllowedDebounce, when that list is non-empty.
func (p *Profile) SetDebounce(value int) error {
	if value != -1 && len(p.AllowedDebounce) > 0 && !intInSlice(value, p.AllowedDebounce) {
		return ErrInvalidValue("debounce %d not in allowed set %v", value, p.AllowedDebounce)
	}
	if p.Debounce == value {
		return nil
	}
	p.Debounce = value
	p.IsDebounceDirty = true
	p.markDirty()
	return nil
}

// SetActive marks this profile active for its device, exclusively
// clearing IsActive on every sibling profile first (mirrors the
// mutual-exclusion contract step 5 used for resolution status bits).
func (p *Profile) SetActive() error {
	if p.IsActive {
		return nil
	}
	if !p.Enabled && p.hasCapability(ProfileCapDisable) {
		return ErrInvalidValue("cannot activate a disabled profile")
	}
	for i := range p.device.Profiles {
		sib := &p.device.Profiles[i]
		if sib.IsActive {
			sib.IsActive = false
			sib.markDirty()
		}
	}
	p.IsActive = true
	p.IsActiveDirty = true
	p.markDirty()
	return nil
}

// ClearDirty clears every dirty flag in the profile's subtree. Called
// by the commit scheduler after a successful commit.
func (p *Profile) ClearDirty() {
	p.IsDirty = false
	p.IsRateDirty = false
	p.IsAngleSnapDirty = false
	p.IsDebounceDirty = false
	p.IsActiveDirty = false
	for i := range p.Resolutions {
		p.Resolutions[i].IsDirty = false
	}
	for i := range p.Buttons {
		p.Buttons[i].IsDirty = false
	}
	for i := range p.Leds {
		p.Leds[i].IsDirty = false
	}
}

func (p *Profile) validateInvariants() error {
	activeRes, defaultRes, shiftRes := -1, -1, -1
	for i := range p.Resolutions {
		r := &p.Resolutions[i]
		if r.IsActive {
			if activeRes != -1 {
				return ErrInvalidValue("profile %d has more than one active resolution", p.Index)
			}
			activeRes = i
		}
		if r.IsDefault {
			if defaultRes != -1 {
				return ErrInvalidValue("profile %d has more than one default resolution", p.Index)
			}
			defaultRes = i
		}
		if r.IsDpiShiftTarget {
			if shiftRes != -1 {
				return ErrInvalidValue("profile %d has more than one dpi-shift-target resolution", p.Index)
			}
			shiftRes = i
		}
		if r.IsDisabled && (r.IsActive || r.IsDefault || r.IsDpiShiftTarget) {
			return ErrInvalidValue("profile %d resolution %d is disabled but marked active/default/shift", p.Index, i)
		}
	}
	if p.IsActive && len(p.Resolutions) > 0 && activeRes == -1 {
		return ErrInvalidValue("active profile %d has no active resolution", p.Index)
	}
	return nil
}

func intInSlice(v int, s []int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
