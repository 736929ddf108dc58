package busif

import (
	"github.com/godbus/dbus/v5"

	"github.com/ratbagd/ratbagd/ratbag"
)

// toDBusError translates a ratbag.Error's taxonomy code into
// a named D-Bus error so clients can branch on the error name instead
// of parsing message text, the same distinction the in-process
// ratbag.ErrorCode preserves for Go callers.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	rerr, ok := ratbag.AsError(err)
	if !ok {
		return dbus.NewError(RootIface+".Error.Device", []interface{}{err.Error()})
	}
	return dbus.NewError(RootIface+".Error."+errNameSuffix(rerr.Code), []interface{}{rerr.Msg})
}

func errNameSuffix(c ratbag.ErrorCode) string {
	switch c {
	case ratbag.ErrCodeCapability:
		return "Capability"
	case ratbag.ErrCodeInvalidValue:
		return "InvalidValue"
	case ratbag.ErrCodeSystem:
		return "System"
	case ratbag.ErrCodeImplementation:
		return "Implementation"
	default:
		return "Device"
	}
}
