//go:build linux

package hotplug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uevent(fields ...string) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func TestParseUeventFiltersToHidraw(t *testing.T) {
	ev, ok := parseUevent(uevent(
		"add@/devices/virtual/hidraw/hidraw3",
		"ACTION=add",
		"SUBSYSTEM=hidraw",
		"DEVPATH=/devices/virtual/hidraw/hidraw3",
	))
	require.True(t, ok)
	assert.Equal(t, "hidraw3", ev.Sysname)
	assert.Equal(t, ActionAdd, ev.Action)
}

func TestParseUeventIgnoresOtherSubsystems(t *testing.T) {
	_, ok := parseUevent(uevent(
		"ACTION=add",
		"SUBSYSTEM=usb",
		"DEVPATH=/devices/pci0000:00/usb1",
	))
	assert.False(t, ok)
}

func TestParseUeventRemove(t *testing.T) {
	ev, ok := parseUevent(uevent(
		"ACTION=remove",
		"SUBSYSTEM=hidraw",
		"DEVPATH=/devices/virtual/hidraw/hidraw1",
	))
	require.True(t, ok)
	assert.Equal(t, ActionRemove, ev.Action)
	assert.Equal(t, "hidraw1", ev.Sysname)
}
