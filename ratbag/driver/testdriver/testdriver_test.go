package testdriver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratbagd/ratbagd/ratbag"
)

func sampleDescriptor(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(Descriptor{
		Name:           "Test Mouse",
		Type:           int32(ratbag.DeviceTypeMouse),
		NumProfiles:    2,
		NumResolutions: 3,
		NumButtons:     5,
		NumLeds:        1,
	})
	require.NoError(t, err)
	return raw
}

func TestProbePopulatesValidDevice(t *testing.T) {
	drv := New()
	dev := ratbag.NewDevice("hidraw0", ratbag.BusTypeUSB, 1, 2, 3)
	require.NoError(t, drv.TestProbe(dev, sampleDescriptor(t)))
	require.NoError(t, dev.ValidateInvariants())
	assert.Equal(t, "Test Mouse", dev.Name)
	assert.Len(t, dev.Profiles, 2)
}

func TestCommitFailureIsOneShot(t *testing.T) {
	drv := New()
	dev := ratbag.NewDevice("hidraw0", ratbag.BusTypeUSB, 1, 2, 3)
	require.NoError(t, drv.TestProbe(dev, sampleDescriptor(t)))

	drv.FailNextCommit = true
	err := drv.Commit(dev)
	require.Error(t, err)

	require.NoError(t, drv.Commit(dev))
}

func TestRefreshActiveResolutionDetectsHardwareChange(t *testing.T) {
	drv := New()
	dev := ratbag.NewDevice("hidraw0", ratbag.BusTypeUSB, 1, 2, 3)
	require.NoError(t, drv.TestProbe(dev, sampleDescriptor(t)))

	changed, err := drv.RefreshActiveResolution(dev)
	require.NoError(t, err)
	assert.Equal(t, ratbag.RefreshUnchanged, changed)

	drv.SetHardwareActiveResolution(dev, 0, 2)
	changed, err = drv.RefreshActiveResolution(dev)
	require.NoError(t, err)
	assert.Equal(t, ratbag.RefreshChanged, changed)
	assert.True(t, dev.Profiles[0].Resolutions[2].IsActive)
	assert.False(t, dev.Profiles[0].Resolutions[0].IsActive)

	changed, err = drv.RefreshActiveResolution(dev)
	require.NoError(t, err)
	assert.Equal(t, ratbag.RefreshUnchanged, changed)
}
