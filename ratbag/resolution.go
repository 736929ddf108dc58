package ratbag

// Resolution is one DPI preset slot within a Profile. DpiX and DpiY
// are equal unless ResolutionCapSeparateXY is present.
type Resolution struct {
	profile *Profile

	Index        int
	DpiX, DpiY   int
	AllowedDpi   []int // device-specific, monotonically increasing
	Capabilities map[ResolutionCapability]bool

	IsActive         bool
	IsDefault        bool
	IsDisabled       bool
	IsDpiShiftTarget bool

	IsDirty bool
}

// Profile returns the Resolution's owning Profile.
func (r *Resolution) Profile() *Profile { return r.profile }

func (r *Resolution) hasCapability(c ResolutionCapability) bool {
	return r.Capabilities != nil && r.Capabilities[c]
}

func (r *Resolution) markDirty() {
	r.IsDirty = true
	r.profile.markDirty()
}

func (r *Resolution) dpiAllowed(dpi int) bool {
	if dpi == 0 {
		return r.hasCapability(ResolutionCapDisable) // disable
	}
	if len(r.AllowedDpi) == 0 {
		return true
	}
	return intInSlice(dpi, r.AllowedDpi)
}

// SetDpi sets both axes to the same value. A value of 0 disables the
// resolution if ResolutionCapDisable is present; otherwise 0 is
// rejected the same as any other value not in AllowedDpi.
func (r *Resolution) SetDpi(dpi int) error {
	return r.SetDpiXY(dpi, dpi)
}

// SetDpiXY sets DpiX and DpiY independently. Using different non-zero
// values requires ResolutionCapSeparateXY; the two components must
// either both be zero (disable) or both be non-zero.
func (r *Resolution) SetDpiXY(x, y int) error {
	if x != y {
		if !r.hasCapability(ResolutionCapSeparateXY) {
			return ErrCapability("separate x/y dpi")
		}
		if (x == 0) != (y == 0) {
			return ErrInvalidValue("dpi x and y must both be zero or both non-zero")
		}
	}
	if !r.dpiAllowed(x) || !r.dpiAllowed(y) {
		return ErrInvalidValue("dpi (%d,%d) not in allowed set %v", x, y, r.AllowedDpi)
	}
	if x == 0 && y == 0 && !r.IsDisabled {
		if err := r.SetDisabled(true); err != nil {
			return err
		}
	}
	if r.DpiX == x && r.DpiY == y {
		return nil
	}
	r.DpiX = x
	r.DpiY = y
	r.markDirty()
	return nil
}

// SetActive makes r the exclusive active resolution within its
// profile, clearing IsActive on every sibling first (contract step
// 5). Fails with ErrCodeInvalidValue if r is disabled.
func (r *Resolution) SetActive() error {
	if r.IsDisabled {
		return ErrInvalidValue("resolution %d is disabled", r.Index)
	}
	if r.IsActive {
		return nil
	}
	for i := range r.profile.Resolutions {
		sib := &r.profile.Resolutions[i]
		if sib.IsActive {
			sib.IsActive = false
			sib.markDirty()
		}
	}
	r.IsActive = true
	r.markDirty()
	return nil
}

// SetDefault makes r the exclusive default resolution within its
// profile. Fails with ErrCodeInvalidValue if r is disabled.
func (r *Resolution) SetDefault() error {
	if r.IsDisabled {
		return ErrInvalidValue("resolution %d is disabled", r.Index)
	}
	if r.IsDefault {
		return nil
	}
	for i := range r.profile.Resolutions {
		sib := &r.profile.Resolutions[i]
		if sib.IsDefault {
			sib.IsDefault = false
			sib.markDirty()
		}
	}
	r.IsDefault = true
	r.markDirty()
	return nil
}

// SetDpiShiftTarget makes r the exclusive dpi-shift target within its
// profile. Fails with ErrCodeInvalidValue if r is disabled.
func (r *Resolution) SetDpiShiftTarget() error {
	if r.IsDisabled {
		return ErrInvalidValue("resolution %d is disabled", r.Index)
	}
	if r.IsDpiShiftTarget {
		return nil
	}
	for i := range r.profile.Resolutions {
		sib := &r.profile.Resolutions[i]
		if sib.IsDpiShiftTarget {
			sib.IsDpiShiftTarget = false
			sib.markDirty()
		}
	}
	r.IsDpiShiftTarget = true
	r.markDirty()
	return nil
}

// SetDisabled disables or enables the resolution. Disabling clears
// IsActive, IsDefault and IsDpiShiftTarget on this resolution (a
// disabled slot cannot hold any of those).
func (r *Resolution) SetDisabled(disabled bool) error {
	if !r.hasCapability(ResolutionCapDisable) {
		return ErrCapability("disabling this resolution")
	}
	if r.IsDisabled == disabled {
		return nil
	}
	if disabled {
		if r.IsActive {
			r.IsActive = false
		}
		if r.IsDefault {
			r.IsDefault = false
		}
		if r.IsDpiShiftTarget {
			r.IsDpiShiftTarget = false
		}
	}
	r.IsDisabled = disabled
	r.markDirty()
	return nil
}
