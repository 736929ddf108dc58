package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

var allButtonProps = []string{"Index", "Capabilities", "ActionType", "Mapping"}

type buttonObject struct {
	s   *Server
	dev *ratbag.Device
	p   *ratbag.Profile
	b   *ratbag.Button
}

func (o *buttonObject) SetActionNone() *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.b.SetActionNone()) })
}

func (o *buttonObject) SetActionButton(buttonNumber int32) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.b.SetActionButton(int(buttonNumber))) })
}

func (o *buttonObject) SetActionSpecial(special int32) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error { return o.finish(o.b.SetActionSpecial(int(special))) })
}

func (o *buttonObject) SetActionKey(keyCode int32, modifiers uint32) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		return o.finish(o.b.SetActionKeyWithModifiers(int(keyCode), ratbag.ModifierMask(modifiers)))
	})
}

func (o *buttonObject) SetActionMacro(events []MacroEventArg) *dbus.Error {
	return dispatch(o.s.post, func() *dbus.Error {
		evs := make([]ratbag.MacroEvent, len(events))
		for i, e := range events {
			evs[i] = ratbag.MacroEvent{Kind: ratbag.MacroEventKind(e.Kind), KeyCode: int(e.KeyCode), WaitMs: int(e.WaitMs)}
		}
		return o.finish(o.b.SetActionMacro(evs))
	})
}

func (o *buttonObject) finish(err error) *dbus.Error {
	if err != nil {
		return toDBusError(err)
	}
	o.s.emitButtonChanged(o.dev, o.p, o.b, "ActionType", "Mapping")
	o.s.emitProfileChanged(o.dev, o.p, "IsDirty")
	return nil
}

// MacroEventArg is the wire shape of one ratbag.MacroEvent, exposed so
// SetActionMacro has a concrete dbus-introspectable argument type.
type MacroEventArg struct {
	Kind    int32
	KeyCode int32
	WaitMs  int32
}

func buttonProps(b *ratbag.Button) map[string]dbus.Variant {
	mapping := []int32{int32(b.Action.ButtonNumber), int32(b.Action.Special), int32(b.Action.KeyCode)}
	return map[string]dbus.Variant{
		"Index":        dbus.MakeVariant(int32(b.Index)),
		"Capabilities": dbus.MakeVariant(uint32(b.Capabilities)),
		"ActionType":   dbus.MakeVariant(int32(b.Action.Kind)),
		"Mapping":      dbus.MakeVariant(mapping),
	}
}

func (s *Server) exportButton(dev *ratbag.Device, b *ratbag.Button, track func(dbus.ObjectPath, string)) error {
	p := b.Profile()
	path := buttonPath(dev.Sysname, p.Index, b.Index)
	obj := &buttonObject{s: s, dev: dev, p: p, b: b}
	if err := s.conn.Export(obj, path, ButtonIface); err != nil {
		return err
	}
	track(path, ButtonIface)

	ph := &propertiesHandler{post: s.post, iface: ButtonIface, get: func() map[string]dbus.Variant { return buttonProps(b) }}
	if err := s.conn.Export(ph, path, propsIface); err != nil {
		return err
	}
	track(path, propsIface)
	return nil
}

func (s *Server) emitButtonChanged(dev *ratbag.Device, p *ratbag.Profile, b *ratbag.Button, names ...string) {
	s.emitPropsChanged(buttonPath(dev.Sysname, p.Index, b.Index), ButtonIface, func() map[string]dbus.Variant {
		return buttonProps(b)
	}, names...)
}
