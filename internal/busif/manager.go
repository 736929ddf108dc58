package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

// apiVersion is the constant Manager.APIVersion property.
const apiVersion = int32(1)

type managerObject struct {
	s *Server
}

// LoadTestDevice is the development-only method that materializes a
// Device from an in-memory descriptor instead of the wire. Gated by
// Server.devMode; calling it on a production build is refused with
// Implementation, since this repository ships one binary for both
// uses rather than a compile-time exclusion.
func (m *managerObject) LoadTestDevice(descriptor string) (int32, *dbus.Error) {
	return dispatchValue(m.s.post, func() (int32, *dbus.Error) {
		if !m.s.devMode {
			return -1, toDBusError(errNotDevBuild())
		}
		if err := m.s.loadTestDevice(descriptor); err != nil {
			return -1, toDBusError(err)
		}
		return 0, nil
	})
}

func (s *Server) managerProps() map[string]dbus.Variant {
	paths := make([]dbus.ObjectPath, 0, s.reg.Len())
	s.reg.Each(func(d *ratbag.Device) bool {
		paths = append(paths, devicePath(d.Sysname))
		return true
	})
	return map[string]dbus.Variant{
		"APIVersion": dbus.MakeVariant(apiVersion),
		"Devices":    dbus.MakeVariant(paths),
	}
}

func (s *Server) exportManager() error {
	obj := &managerObject{s: s}
	if err := s.conn.Export(obj, RootPath, ManagerIface); err != nil {
		return err
	}
	ph := &propertiesHandler{post: s.post, iface: ManagerIface, get: s.managerProps}
	if err := s.conn.Export(ph, RootPath, propsIface); err != nil {
		return err
	}
	return nil
}

// emitDevicesChanged notifies clients of a change to Manager.Devices,
// e.g. after a hot-plug add/remove.
func (s *Server) emitDevicesChanged() {
	s.emitPropsChanged(RootPath, ManagerIface, s.managerProps, "Devices")
}
