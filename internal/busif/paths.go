// Package busif publishes the in-memory object graph (ratbag package)
// on the system message bus: one object per Device,
// Profile, Resolution, Button and LED, property get/set routed to the
// corresponding ratbag mutator, Commit deferred to the commit
// scheduler, and PropertiesChanged / Resync signals emitted on every
// observable state change.
//
// Grounded on github.com/godbus/dbus/v5 — present in the example pack
// transitively via k3s-io-k3s's coreos/go-systemd/dbus client, adopted
// here for genuine object-tree export rather than just bus-client use.
package busif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	// RootPath is the fixed object-tree root ("object root is
	// a fixed path").
	RootPath dbus.ObjectPath = "/org/ratbagd/Ratbag1"
	// RootIface is the fixed interface-name prefix every exported
	// interface hangs off ("<root>.Manager", "<root>.Device", ...).
	RootIface = "org.ratbagd.Ratbag1"
	// BusName is the well-known name the daemon acquires on the system
	// bus.
	BusName = "org.ratbagd.Ratbag1"

	ManagerIface    = RootIface + ".Manager"
	DeviceIface     = RootIface + ".Device"
	ProfileIface    = RootIface + ".Profile"
	ResolutionIface = RootIface + ".Resolution"
	ButtonIface     = RootIface + ".Button"
	LedIface        = RootIface + ".Led"
	TestIface       = RootIface + ".Test"

	propsIface = "org.freedesktop.DBus.Properties"
)

// sanitizeSegment replaces every byte a D-Bus object path segment may
// not contain with an underscore. Kernel sysnames ("hidraw0") are
// already safe; this only guards the rare bus type whose identifier
// embeds a colon or dash.
func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_', r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func devicePath(sysname string) dbus.ObjectPath {
	return RootPath + "/device/" + dbus.ObjectPath(sanitizeSegment(sysname))
}

func profilePath(sysname string, profile int) dbus.ObjectPath {
	return RootPath + "/profile/" + dbus.ObjectPath(sanitizeSegment(sysname)) +
		dbus.ObjectPath(fmt.Sprintf("/p%d", profile))
}

func resolutionPath(sysname string, profile, res int) dbus.ObjectPath {
	return RootPath + "/resolution/" + dbus.ObjectPath(sanitizeSegment(sysname)) +
		dbus.ObjectPath(fmt.Sprintf("/p%d/r%d", profile, res))
}

func buttonPath(sysname string, profile, btn int) dbus.ObjectPath {
	return RootPath + "/button/" + dbus.ObjectPath(sanitizeSegment(sysname)) +
		dbus.ObjectPath(fmt.Sprintf("/p%d/b%d", profile, btn))
}

func ledPath(sysname string, profile, led int) dbus.ObjectPath {
	return RootPath + "/led/" + dbus.ObjectPath(sanitizeSegment(sysname)) +
		dbus.ObjectPath(fmt.Sprintf("/p%d/l%d", profile, led))
}

// decodedPath is the result of decoding one of the object paths built
// above back into the indices it names, the same placeholder-style
// decoding an HTTP router applies to "{name}" path segments, translated
// to dbus object-path segments. AttachDevice exports every object
// eagerly and no bus handler calls decodePath.
type decodedPath struct {
	Kind    string // "device", "profile", "resolution", "button", "led"
	Sysname string
	Profile int // -1 if Kind == "device"
	Child   int // -1 unless Kind is resolution/button/led
}

func decodePath(p dbus.ObjectPath) (decodedPath, bool) {
	prefix := string(RootPath) + "/"
	s := string(p)
	if !strings.HasPrefix(s, prefix) {
		return decodedPath{}, false
	}
	parts := strings.Split(strings.TrimPrefix(s, prefix), "/")
	if len(parts) < 2 {
		return decodedPath{}, false
	}
	kind, sysname := parts[0], parts[1]
	d := decodedPath{Kind: kind, Sysname: sysname, Profile: -1, Child: -1}

	switch kind {
	case "device":
		if len(parts) != 2 {
			return decodedPath{}, false
		}
		return d, true
	case "profile":
		if len(parts) != 3 {
			return decodedPath{}, false
		}
		idx, err := parseIndexed(parts[2], 'p')
		if err != nil {
			return decodedPath{}, false
		}
		d.Profile = idx
		return d, true
	case "resolution", "button", "led":
		if len(parts) != 4 {
			return decodedPath{}, false
		}
		pidx, err := parseIndexed(parts[2], 'p')
		if err != nil {
			return decodedPath{}, false
		}
		var childPrefix byte
		switch kind {
		case "resolution":
			childPrefix = 'r'
		case "button":
			childPrefix = 'b'
		case "led":
			childPrefix = 'l'
		}
		cidx, err := parseIndexed(parts[3], childPrefix)
		if err != nil {
			return decodedPath{}, false
		}
		d.Profile, d.Child = pidx, cidx
		return d, true
	default:
		return decodedPath{}, false
	}
}

func parseIndexed(s string, prefix byte) (int, error) {
	if len(s) < 2 || s[0] != prefix {
		return 0, fmt.Errorf("busif: bad path segment %q", s)
	}
	return strconv.Atoi(s[1:])
}
