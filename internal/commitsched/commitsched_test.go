package commitsched

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratbagd/ratbagd/ratbag"
	"github.com/ratbagd/ratbagd/ratbag/driver/testdriver"
)

func newDevice(t *testing.T) (*ratbag.Device, *testdriver.Driver) {
	t.Helper()
	drv := testdriver.New()
	dev := ratbag.NewDevice("hidraw0", ratbag.BusTypeUSB, 1, 2, 3)
	raw, err := json.Marshal(testdriver.Descriptor{
		Name: "Test", NumProfiles: 2, NumResolutions: 2, NumButtons: 1, NumLeds: 1,
	})
	require.NoError(t, err)
	require.NoError(t, drv.TestProbe(dev, raw))
	dev.Driver = drv
	return dev, drv
}

// syncPost runs tasks inline, standing in for the reactor in tests so
// commit outcomes are observable without a goroutine/channel dance.
func syncPost(f func()) { f() }

func TestCommitClearsDirtyOnSuccess(t *testing.T) {
	dev, _ := newDevice(t)
	p := &dev.Profiles[0]
	require.NoError(t, p.SetReportRate(1000))
	require.True(t, p.IsDirty)

	var succeeded *ratbag.Device
	sched := New(syncPost, Callbacks{
		OnCommitSucceeded: func(d *ratbag.Device) { succeeded = d },
	})
	sched.Enqueue(dev)

	require.NotNil(t, succeeded)
	assert.False(t, p.IsDirty)
	assert.False(t, p.IsRateDirty)
}

func TestCommitFailureTriggersCallback(t *testing.T) {
	dev, drv := newDevice(t)
	drv.FailNextCommit = true

	var failedDev *ratbag.Device
	var failedErr error
	sched := New(syncPost, Callbacks{
		OnCommitFailed: func(d *ratbag.Device, err error) { failedDev = d; failedErr = err },
	})
	sched.Enqueue(dev)

	require.NotNil(t, failedDev)
	require.Error(t, failedErr)
}

func TestCommitRefcountReleasedAfterTask(t *testing.T) {
	dev, _ := newDevice(t)
	sched := New(syncPost, Callbacks{})
	before := dev.RefCount()
	sched.Enqueue(dev)
	assert.Equal(t, before, dev.RefCount())
}

func TestCommitClearsActiveDirtyAfterProfileSwitch(t *testing.T) {
	dev, _ := newDevice(t)
	require.NoError(t, dev.Profiles[1].SetActive())
	require.True(t, dev.Profiles[1].IsActiveDirty)

	sched := New(syncPost, Callbacks{})
	sched.Enqueue(dev)

	assert.False(t, dev.Profiles[1].IsActiveDirty)
	assert.True(t, dev.Profiles[1].IsActive)
}
