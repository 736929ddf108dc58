package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

var allProfileProps = []string{
	"Name", "Disabled", "Index", "Capabilities", "Resolutions", "Buttons",
	"Leds", "IsActive", "IsDirty", "ReportRate", "AngleSnapping", "Debounce",
	"ReportRates", "Debounces",
}

type profileObject struct {
	s   *Server
	dev *ratbag.Device
	p   *ratbag.Profile
}

// SetActive makes this profile the device's active one.
func (o *profileObject) SetActive() *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		if err := o.p.SetActive(); err != nil {
			return toDBusError(err)
		}
		o.s.emitProfileChanged(o.dev, o.p, "IsActive")
		for i := range o.dev.Profiles {
			sib := &o.dev.Profiles[i]
			if sib != o.p {
				o.s.emitProfileChanged(o.dev, sib, "IsActive")
			}
		}
		return nil
	})
}

func profileProps(sysname string, p *ratbag.Profile) map[string]dbus.Variant {
	caps := capabilitySlice(p.Capabilities)
	resolutions := make([]dbus.ObjectPath, len(p.Resolutions))
	for i := range p.Resolutions {
		resolutions[i] = resolutionPath(sysname, p.Index, p.Resolutions[i].Index)
	}
	buttons := make([]dbus.ObjectPath, len(p.Buttons))
	for i := range p.Buttons {
		buttons[i] = buttonPath(sysname, p.Index, p.Buttons[i].Index)
	}
	leds := make([]dbus.ObjectPath, len(p.Leds))
	for i := range p.Leds {
		leds[i] = ledPath(sysname, p.Index, p.Leds[i].Index)
	}
	return map[string]dbus.Variant{
		"Name":          dbus.MakeVariant(p.Name),
		"Disabled":      dbus.MakeVariant(!p.Enabled),
		"Index":         dbus.MakeVariant(int32(p.Index)),
		"Capabilities":  dbus.MakeVariant(caps),
		"Resolutions":   dbus.MakeVariant(resolutions),
		"Buttons":       dbus.MakeVariant(buttons),
		"Leds":          dbus.MakeVariant(leds),
		"IsActive":      dbus.MakeVariant(p.IsActive),
		"IsDirty":       dbus.MakeVariant(p.IsDirty),
		"ReportRate":    dbus.MakeVariant(int32(p.ReportRate)),
		"AngleSnapping": dbus.MakeVariant(int32(p.AngleSnapping)),
		"Debounce":      dbus.MakeVariant(int32(p.Debounce)),
		"ReportRates":   dbus.MakeVariant(intSliceToInt32(p.AllowedRates)),
		"Debounces":     dbus.MakeVariant(intSliceToInt32(p.AllowedDebounce)),
	}
}

func (s *Server) exportProfile(dev *ratbag.Device, p *ratbag.Profile, track func(dbus.ObjectPath, string)) error {
	path := profilePath(dev.Sysname, p.Index)
	obj := &profileObject{s: s, dev: dev, p: p}
	if err := s.conn.Export(obj, path, ProfileIface); err != nil {
		return err
	}
	track(path, ProfileIface)

	getProps := func() map[string]dbus.Variant { return profileProps(dev.Sysname, p) }
	ph := &propertiesHandler{
		post:  s.post,
		iface: ProfileIface,
		get:   getProps,
		setters: map[string]func(dbus.Variant) *dbus.Error{
			"Name": func(v dbus.Variant) *dbus.Error {
				name, ok := v.Value().(string)
				if !ok {
					return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
				}
				if err := p.SetName(name); err != nil {
					return toDBusError(err)
				}
				s.emitPropsChanged(path, ProfileIface, getProps, "Name")
				return nil
			},
			"Disabled": func(v dbus.Variant) *dbus.Error {
				disabled, ok := v.Value().(bool)
				if !ok {
					return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
				}
				if err := p.SetEnabled(!disabled); err != nil {
					return toDBusError(err)
				}
				s.emitPropsChanged(path, ProfileIface, getProps, "Disabled", "IsDirty")
				return nil
			},
			"ReportRate": func(v dbus.Variant) *dbus.Error {
				rate, ok := v.Value().(int32)
				if !ok {
					return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
				}
				if err := p.SetReportRate(int(rate)); err != nil {
					return toDBusError(err)
				}
				s.emitPropsChanged(path, ProfileIface, getProps, "ReportRate", "IsDirty")
				return nil
			},
			"AngleSnapping": func(v dbus.Variant) *dbus.Error {
				val, ok := v.Value().(int32)
				if !ok {
					return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
				}
				if err := p.SetAngleSnapping(int(val)); err != nil {
					return toDBusError(err)
				}
				s.emitPropsChanged(path, ProfileIface, getProps, "AngleSnapping", "IsDirty")
				return nil
			},
			"Debounce": func(v dbus.Variant) *dbus.Error {
				val, ok := v.Value().(int32)
				if !ok {
					return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
				}
				if err := p.SetDebounce(int(val)); err != nil {
					return toDBusError(err)
				}
				s.emitPropsChanged(path, ProfileIface, getProps, "Debounce", "IsDirty")
				return nil
			},
		},
	}
	if err := s.conn.Export(ph, path, propsIface); err != nil {
		return err
	}
	track(path, propsIface)
	return nil
}

func (s *Server) emitProfileChanged(dev *ratbag.Device, p *ratbag.Profile, names ...string) {
	s.emitPropsChanged(profilePath(dev.Sysname, p.Index), ProfileIface, func() map[string]dbus.Variant {
		return profileProps(dev.Sysname, p)
	}, names...)
}

func capabilitySlice[K ~int32](m map[K]bool) []int32 {
	out := make([]int32, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, int32(k))
		}
	}
	return out
}

func intSliceToInt32(s []int) []int32 {
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = int32(v)
	}
	return out
}
