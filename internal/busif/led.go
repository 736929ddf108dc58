package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

var allLedProps = []string{
	"Index", "Mode", "SupportedModes", "ColorDepth", "Color", "DurationMs", "Brightness",
}

type ledObject struct {
	s   *Server
	dev *ratbag.Device
	p   *ratbag.Profile
	l   *ratbag.Led
}

func (o *ledObject) SetMode(mode int32) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.l.SetMode(ratbag.LedMode(mode)), "Mode") })
}

func (o *ledObject) SetColor(r, g, b uint8) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		return o.finish(o.l.SetColor(ratbag.Color{R: r, G: g, B: b}), "Color")
	})
}

func (o *ledObject) SetDurationMs(ms int32) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.l.SetDurationMs(int(ms)), "DurationMs") })
}

func (o *ledObject) SetBrightness(b uint8) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.l.SetBrightness(b), "Brightness") })
}

func (o *ledObject) finish(err error, prop string) *dbus.Error {
	if err != nil {
		return toDBusError(err)
	}
	o.s.emitLedChanged(o.dev, o.p, o.l, prop)
	o.s.emitProfileChanged(o.dev, o.p, "IsDirty")
	return nil
}

func ledProps(l *ratbag.Led) map[string]dbus.Variant {
	modes := make([]int32, 0, len(l.SupportedModes))
	for m, ok := range l.SupportedModes {
		if ok {
			modes = append(modes, int32(m))
		}
	}
	return map[string]dbus.Variant{
		"Index":          dbus.MakeVariant(int32(l.Index)),
		"Mode":           dbus.MakeVariant(int32(l.Mode)),
		"SupportedModes": dbus.MakeVariant(modes),
		"ColorDepth":     dbus.MakeVariant(int32(l.ColorDepth)),
		"Color":          dbus.MakeVariant([3]uint8{l.Color.R, l.Color.G, l.Color.B}),
		"DurationMs":     dbus.MakeVariant(int32(l.DurationMs)),
		"Brightness":     dbus.MakeVariant(l.Brightness),
	}
}

func (s *Server) exportLed(dev *ratbag.Device, l *ratbag.Led, track func(dbus.ObjectPath, string)) error {
	p := l.Profile()
	path := ledPath(dev.Sysname, p.Index, l.Index)
	obj := &ledObject{s: s, dev: dev, p: p, l: l}
	if err := s.conn.Export(obj, path, LedIface); err != nil {
		return err
	}
	track(path, LedIface)

	ph := &propertiesHandler{post: s.post, iface: LedIface, get: func() map[string]dbus.Variant { return ledProps(l) }}
	if err := s.conn.Export(ph, path, propsIface); err != nil {
		return err
	}
	track(path, propsIface)
	return nil
}

func (s *Server) emitLedChanged(dev *ratbag.Device, p *ratbag.Profile, l *ratbag.Led, names ...string) {
	s.emitPropsChanged(ledPath(dev.Sysname, p.Index, l.Index), LedIface, func() map[string]dbus.Variant {
		return ledProps(l)
	}, names...)
}
