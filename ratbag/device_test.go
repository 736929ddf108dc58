package ratbag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDriver struct {
	removed bool
}

func (r *recordingDriver) Name() string             { return "recording" }
func (r *recordingDriver) Probe(*Device) error       { return nil }
func (r *recordingDriver) Commit(*Device) error      { return nil }
func (r *recordingDriver) Remove(dev *Device)        { r.removed = true }

func TestDeviceInvariantsAfterInitProfiles(t *testing.T) {
	d := NewDevice("hidraw0", BusTypeUSB, 1, 2, 3)
	d.InitProfiles(2, 2, 1, 1)
	require.NoError(t, d.ValidateInvariants())

	active, ok := d.ActiveProfile()
	require.True(t, ok)
	assert.Equal(t, 0, active.Index)
}

func TestDeviceRefcountGatesDestroy(t *testing.T) {
	drv := &recordingDriver{}
	d := NewDevice("hidraw0", BusTypeUSB, 1, 2, 3)
	d.Driver = drv
	d.InitProfiles(1, 0, 0, 0)

	d.Ref()
	d.MarkAttached()
	d.MarkRemoved() // refcount still 1: must not destroy yet.
	assert.False(t, drv.removed)

	d.Unref() // refcount reaches 0 while removed: destroy now.
	assert.True(t, drv.removed)
}

func TestDeviceDestroyWithoutOutstandingRefs(t *testing.T) {
	drv := &recordingDriver{}
	d := NewDevice("hidraw0", BusTypeUSB, 1, 2, 3)
	d.Driver = drv
	d.InitProfiles(1, 0, 0, 0)

	d.MarkAttached()
	d.MarkRemoved()
	assert.True(t, drv.removed)
}

func TestValidateInvariantsRejectsMultipleActiveProfiles(t *testing.T) {
	d := NewDevice("hidraw0", BusTypeUSB, 1, 2, 3)
	d.InitProfiles(2, 0, 0, 0)
	d.Profiles[1].IsActive = true // now two active profiles
	err := d.ValidateInvariants()
	require.Error(t, err)
}
