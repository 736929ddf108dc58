package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

var allResolutionProps = []string{
	"Index", "Dpi", "MaxDpi", "MinDpi", "Dpis", "IsActive", "IsDefault",
	"IsDpiShiftTarget", "IsDisabled", "Capabilities",
}

// DpiPair is the (uu) wire representation of an independently-set x/y
// DPI pair (ResolutionCapSeparateXY). A resolution with equal axes is
// instead reported as a single u (see dpiVariant).
type DpiPair struct {
	X, Y uint32
}

func dpiVariant(r *ratbag.Resolution) dbus.Variant {
	if r.DpiX == r.DpiY {
		return dbus.MakeVariant(uint32(r.DpiX))
	}
	return dbus.MakeVariant(DpiPair{X: uint32(r.DpiX), Y: uint32(r.DpiY)})
}

type resolutionObject struct {
	s   *Server
	dev *ratbag.Device
	p   *ratbag.Profile
	r   *ratbag.Resolution
}

func (o *resolutionObject) SetActive() *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		prevIdx := o.siblingWith(func(r *ratbag.Resolution) bool { return r.IsActive })
		if err := o.r.SetActive(); err != nil {
			return toDBusError(err)
		}
		o.emitSelfAndPrev(prevIdx, "IsActive")
		return nil
	})
}

func (o *resolutionObject) SetDefault() *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		prevIdx := o.siblingWith(func(r *ratbag.Resolution) bool { return r.IsDefault })
		if err := o.r.SetDefault(); err != nil {
			return toDBusError(err)
		}
		o.emitSelfAndPrev(prevIdx, "IsDefault")
		return nil
	})
}

// SetDpiShiftTarget takes no arguments; it makes the callee the
// exclusive shift target within its profile. For example:
// two PropertiesChanged signals — one for the displaced sibling, one
// for the new target — are observed before this method returns.
func (o *resolutionObject) SetDpiShiftTarget() *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		prevIdx := o.siblingWith(func(r *ratbag.Resolution) bool { return r.IsDpiShiftTarget })
		if err := o.r.SetDpiShiftTarget(); err != nil {
			return toDBusError(err)
		}
		o.emitSelfAndPrev(prevIdx, "IsDpiShiftTarget")
		return nil
	})
}

func (o *resolutionObject) SetDisabled(disabled bool) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		if err := o.r.SetDisabled(disabled); err != nil {
			return toDBusError(err)
		}
		o.s.emitResolutionChanged(o.dev, o.p, o.r, "IsDisabled", "IsActive", "IsDefault", "IsDpiShiftTarget")
		o.s.emitProfileChanged(o.dev, o.p, "IsDirty")
		return nil
	})
}

func (o *resolutionObject) siblingWith(pred func(*ratbag.Resolution) bool) int {
	for i := range o.p.Resolutions {
		if pred(&o.p.Resolutions[i]) {
			return i
		}
	}
	return -1
}

func (o *resolutionObject) emitSelfAndPrev(prevIdx int, prop string) {
	o.s.emitResolutionChanged(o.dev, o.p, o.r, prop)
	if prevIdx != -1 && prevIdx != o.r.Index {
		o.s.emitResolutionChanged(o.dev, o.p, &o.p.Resolutions[prevIdx], prop)
	}
	o.s.emitProfileChanged(o.dev, o.p, "IsDirty")
}

func resolutionProps(r *ratbag.Resolution) map[string]dbus.Variant {
	minDpi, maxDpi := 0, 0
	for i, d := range r.AllowedDpi {
		if i == 0 || d < minDpi {
			minDpi = d
		}
		if d > maxDpi {
			maxDpi = d
		}
	}
	return map[string]dbus.Variant{
		"Index":            dbus.MakeVariant(int32(r.Index)),
		"Dpi":              dpiVariant(r),
		"MaxDpi":           dbus.MakeVariant(int32(maxDpi)),
		"MinDpi":           dbus.MakeVariant(int32(minDpi)),
		"Dpis":             dbus.MakeVariant(intSliceToInt32(r.AllowedDpi)),
		"IsActive":         dbus.MakeVariant(r.IsActive),
		"IsDefault":        dbus.MakeVariant(r.IsDefault),
		"IsDpiShiftTarget": dbus.MakeVariant(r.IsDpiShiftTarget),
		"IsDisabled":       dbus.MakeVariant(r.IsDisabled),
		"Capabilities":     dbus.MakeVariant(capabilitySlice(r.Capabilities)),
	}
}

func (s *Server) exportResolution(dev *ratbag.Device, r *ratbag.Resolution, track func(dbus.ObjectPath, string)) error {
	p := r.Profile()
	path := resolutionPath(dev.Sysname, p.Index, r.Index)
	obj := &resolutionObject{s: s, dev: dev, p: p, r: r}
	if err := s.conn.Export(obj, path, ResolutionIface); err != nil {
		return err
	}
	track(path, ResolutionIface)

	ph := &propertiesHandler{
		post:  s.post,
		iface: ResolutionIface,
		get:   func() map[string]dbus.Variant { return resolutionProps(r) },
	}
	if err := s.conn.Export(ph, path, propsIface); err != nil {
		return err
	}
	track(path, propsIface)
	return nil
}

func (s *Server) emitResolutionChanged(dev *ratbag.Device, p *ratbag.Profile, r *ratbag.Resolution, names ...string) {
	s.emitPropsChanged(resolutionPath(dev.Sysname, p.Index, r.Index), ResolutionIface, func() map[string]dbus.Variant {
		return resolutionProps(r)
	}, names...)
}
