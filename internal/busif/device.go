package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

type deviceObject struct {
	s   *Server
	dev *ratbag.Device
}

// Commit enqueues a deferred commit and replies immediately: the bus
// dispatcher never blocks on a wire transaction. The return value
// signals "accepted for processing", not success — clients learn the
// real outcome from the subsequent IsDirty or Resync signals.
func (o *deviceObject) Commit() (uint32, *dbus.Error) {
	return dispatchValue(o.s.post, func() (uint32, *dbus.Error) {
		o.s.sched.Enqueue(o.dev)
		return 0, nil
	})
}

func deviceProps(dev *ratbag.Device) map[string]dbus.Variant {
	profiles := make([]dbus.ObjectPath, len(dev.Profiles))
	for i := range dev.Profiles {
		profiles[i] = profilePath(dev.Sysname, dev.Profiles[i].Index)
	}
	return map[string]dbus.Variant{
		"Model":           dbus.MakeVariant(dev.Name),
		"DeviceType":      dbus.MakeVariant(int32(dev.Type)),
		"Name":            dbus.MakeVariant(dev.Name),
		"FirmwareVersion": dbus.MakeVariant(dev.FirmwareVersion),
		"Profiles":        dbus.MakeVariant(profiles),
	}
}

func (s *Server) exportDevice(dev *ratbag.Device, track func(dbus.ObjectPath, string)) error {
	path := devicePath(dev.Sysname)
	obj := &deviceObject{s: s, dev: dev}
	if err := s.conn.Export(obj, path, DeviceIface); err != nil {
		return err
	}
	track(path, DeviceIface)

	ph := &propertiesHandler{post: s.post, iface: DeviceIface, get: func() map[string]dbus.Variant { return deviceProps(dev) }}
	if err := s.conn.Export(ph, path, propsIface); err != nil {
		return err
	}
	track(path, propsIface)
	return nil
}
