package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratbagd/ratbagd/ratbag"
)

func newDev(sysname string) *ratbag.Device {
	d := ratbag.NewDevice(sysname, ratbag.BusTypeUSB, 1, 1, 1)
	d.InitProfiles(1, 0, 0, 0)
	return d
}

func TestInsertOrdersBySysname(t *testing.T) {
	r := New()
	r.Insert(newDev("hidraw2"))
	r.Insert(newDev("hidraw0"))
	r.Insert(newDev("hidraw1"))

	var order []string
	r.Each(func(d *ratbag.Device) bool {
		order = append(order, d.Sysname)
		return true
	})
	assert.Equal(t, []string{"hidraw0", "hidraw1", "hidraw2"}, order)
}

func TestLookupAndRemove(t *testing.T) {
	r := New()
	dev := newDev("hidraw0")
	r.Insert(dev)

	require.Equal(t, dev, r.Lookup("hidraw0"))
	assert.Equal(t, ratbag.LifecycleAttached, dev.Lifecycle())

	removed := r.Remove("hidraw0")
	require.Equal(t, dev, removed)
	assert.Nil(t, r.Lookup("hidraw0"))
	assert.Equal(t, ratbag.LifecycleRemoved, dev.Lifecycle())
}

func TestInsertDuplicateSysnamePanics(t *testing.T) {
	r := New()
	r.Insert(newDev("hidraw0"))
	assert.Panics(t, func() {
		r.Insert(newDev("hidraw0"))
	})
}

func TestFirstAndNext(t *testing.T) {
	r := New()
	r.Insert(newDev("a"))
	r.Insert(newDev("b"))
	r.Insert(newDev("c"))

	first := r.First()
	require.NotNil(t, first)
	assert.Equal(t, "a", first.Sysname)

	next := r.Next("a")
	require.NotNil(t, next)
	assert.Equal(t, "b", next.Sysname)

	assert.Nil(t, r.Next("c"))
	assert.Nil(t, r.Next("nonexistent"))
}

func TestRemoveDestroysOnlyWhenUnreferenced(t *testing.T) {
	r := New()
	dev := newDev("hidraw0")
	dev.Ref()
	r.Insert(dev)

	r.Remove("hidraw0")
	assert.Equal(t, int32(1), dev.RefCount())

	dev.Unref()
	assert.Equal(t, int32(0), dev.RefCount())
}
