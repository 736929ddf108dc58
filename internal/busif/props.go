package busif

import (
	"github.com/godbus/dbus/v5"
)

// propertiesHandler implements org.freedesktop.DBus.Properties for a
// single exported object. get is re-invoked on every call so reads
// always reflect current in-memory state ("property reads
// reflect in-memory state at the moment of the read"); setters is nil
// or missing an entry for a read-only property. Every method runs get
// and the matched setter through dispatch/dispatchValue rather than
// inline on godbus's dispatch goroutine, since both read and write the
// same object-graph fields the poll tick and commit tasks mutate.
type propertiesHandler struct {
	post    func(func())
	iface   string
	get     func() map[string]dbus.Variant
	setters map[string]func(dbus.Variant) *dbus.Error
}

func (p *propertiesHandler) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	return dispatchValue(p.post, func() (dbus.Variant, *dbus.Error) {
		if iface != "" && iface != p.iface {
			return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{iface})
		}
		v, ok := p.get()[property]
		if !ok {
			return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", []interface{}{property})
		}
		return v, nil
	})
}

func (p *propertiesHandler) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return dispatchValue(p.post, func() (map[string]dbus.Variant, *dbus.Error) {
		if iface != "" && iface != p.iface {
			return nil, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{iface})
		}
		return p.get(), nil
	})
}

func (p *propertiesHandler) Set(iface, property string, value dbus.Variant) *dbus.Error {
	return dispatch(p.post, func() *dbus.Error {
		if iface != "" && iface != p.iface {
			return dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{iface})
		}
		setter, ok := p.setters[property]
		if !ok {
			return dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly", []interface{}{property})
		}
		return setter(value)
	})
}

// emitPropsChanged sends the standard PropertiesChanged signal for a
// subset of an object's properties, looked up fresh from get so the
// emitted values can never lag what a subsequent Get call would
// return.
func (s *Server) emitPropsChanged(path dbus.ObjectPath, iface string, get func() map[string]dbus.Variant, names ...string) {
	all := get()
	changed := make(map[string]dbus.Variant, len(names))
	for _, n := range names {
		if v, ok := all[n]; ok {
			changed[n] = v
		}
	}
	if len(changed) == 0 {
		return
	}
	_ = s.conn.Emit(path, propsIface+".PropertiesChanged", iface, changed, []string{})
}
