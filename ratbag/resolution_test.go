package ratbag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, numResolutions int) *Device {
	t.Helper()
	d := NewDevice("hidraw0", BusTypeUSB, 0x1, 0x2, 0x1)
	d.InitProfiles(1, numResolutions, 1, 1)
	p := &d.Profiles[0]
	p.Capabilities = map[ProfileCapability]bool{ProfileCapDisable: true}
	for i := range p.Resolutions {
		p.Resolutions[i].Capabilities = map[ResolutionCapability]bool{ResolutionCapDisable: true}
		p.Resolutions[i].AllowedDpi = []int{400, 800, 1600, 3200}
		p.Resolutions[i].DpiX = 800
		p.Resolutions[i].DpiY = 800
	}
	p.Resolutions[2].IsDpiShiftTarget = true
	return d
}

func TestShiftTargetExclusion(t *testing.T) {
	d := newTestDevice(t, 5)
	p := &d.Profiles[0]

	require.NoError(t, p.Resolutions[4].SetDpiShiftTarget())

	assert.False(t, p.Resolutions[2].IsDpiShiftTarget)
	assert.True(t, p.Resolutions[4].IsDpiShiftTarget)
	assert.True(t, p.IsDirty)
	assert.True(t, p.Resolutions[2].IsDirty)
	assert.True(t, p.Resolutions[4].IsDirty)
}

func TestResolutionMutualExclusionAtMostOne(t *testing.T) {
	d := newTestDevice(t, 3)
	p := &d.Profiles[0]

	require.NoError(t, p.Resolutions[0].SetActive())
	require.NoError(t, p.Resolutions[1].SetActive())
	assert.False(t, p.Resolutions[0].IsActive)
	assert.True(t, p.Resolutions[1].IsActive)

	require.NoError(t, p.Resolutions[0].SetDefault())
	require.NoError(t, p.Resolutions[1].SetDefault())
	assert.False(t, p.Resolutions[0].IsDefault)
	assert.True(t, p.Resolutions[1].IsDefault)
}

func TestDisabledResolutionRejectsStatusBits(t *testing.T) {
	d := newTestDevice(t, 3)
	p := &d.Profiles[0]
	require.NoError(t, p.Resolutions[0].SetDisabled(true))

	before := p.Resolutions[0]
	err := p.Resolutions[0].SetActive()
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidValue, rbErr.Code)
	assert.Equal(t, before, p.Resolutions[0])

	err = p.Resolutions[0].SetDefault()
	require.Error(t, err)
	err = p.Resolutions[0].SetDpiShiftTarget()
	require.Error(t, err)
}

func TestDpiOutsideAllowedSetRejected(t *testing.T) {
	d := newTestDevice(t, 1)
	p := &d.Profiles[0]
	err := p.Resolutions[0].SetDpi(777)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidValue, rbErr.Code)

	require.NoError(t, p.Resolutions[0].SetDpi(1600))
	assert.Equal(t, 1600, p.Resolutions[0].DpiX)
	assert.Equal(t, 1600, p.Resolutions[0].DpiY)
}

func TestSeparateXYRequiresCapability(t *testing.T) {
	d := newTestDevice(t, 1)
	p := &d.Profiles[0]
	err := p.Resolutions[0].SetDpiXY(800, 1600)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeCapability, rbErr.Code)

	p.Resolutions[0].Capabilities[ResolutionCapSeparateXY] = true
	require.NoError(t, p.Resolutions[0].SetDpiXY(800, 1600))
}

func TestNoOpWriteSkipsDirty(t *testing.T) {
	d := newTestDevice(t, 1)
	p := &d.Profiles[0]
	p.Resolutions[0].IsDirty = false
	p.IsDirty = false
	require.NoError(t, p.Resolutions[0].SetDpi(800)) // already 800
	assert.False(t, p.Resolutions[0].IsDirty)
	assert.False(t, p.IsDirty)
}

func TestReportRateClamped(t *testing.T) {
	d := newTestDevice(t, 1)
	p := &d.Profiles[0]
	p.ReportRate = 1000
	p.IsDirty = false

	require.NoError(t, p.SetReportRate(50))
	assert.Equal(t, ReportRateMin, p.ReportRate)
	assert.True(t, p.IsDirty)
	assert.True(t, p.IsRateDirty)

	require.NoError(t, p.SetReportRate(999999))
	assert.Equal(t, ReportRateMax, p.ReportRate)
}

func TestDisablingActiveProfileFails(t *testing.T) {
	d := NewDevice("hidraw0", BusTypeUSB, 1, 1, 1)
	d.InitProfiles(2, 1, 0, 0)
	for i := range d.Profiles {
		d.Profiles[i].Capabilities = map[ProfileCapability]bool{ProfileCapDisable: true}
		d.Profiles[i].Enabled = true
	}
	require.True(t, d.Profiles[0].IsActive)

	err := d.Profiles[0].SetEnabled(false)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidValue, rbErr.Code)
}

func TestDisablingLastEnabledProfileFails(t *testing.T) {
	d := NewDevice("hidraw0", BusTypeUSB, 1, 1, 1)
	d.InitProfiles(2, 1, 0, 0)
	for i := range d.Profiles {
		d.Profiles[i].Capabilities = map[ProfileCapability]bool{ProfileCapDisable: true}
	}
	// Profile 1 is the sole enabled profile but is not the active one
	// (an unusual but legal in-memory state used here purely to
	// isolate the "last enabled" check from the "active" check).
	d.Profiles[0].Enabled = false
	d.Profiles[0].IsActive = true
	d.Profiles[1].Enabled = true
	d.Profiles[1].IsActive = false

	err := d.Profiles[1].SetEnabled(false)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidValue, rbErr.Code)
}
