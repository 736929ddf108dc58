package busif

import (
	"encoding/json"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratbagd/ratbagd/ratbag"
	"github.com/ratbagd/ratbagd/ratbag/driver/testdriver"
)

func TestPathRoundTrip(t *testing.T) {
	cases := []struct {
		path dbus.ObjectPath
		want decodedPath
	}{
		{devicePath("hidraw0"), decodedPath{Kind: "device", Sysname: "hidraw0", Profile: -1, Child: -1}},
		{profilePath("hidraw0", 2), decodedPath{Kind: "profile", Sysname: "hidraw0", Profile: 2, Child: -1}},
		{resolutionPath("hidraw0", 1, 3), decodedPath{Kind: "resolution", Sysname: "hidraw0", Profile: 1, Child: 3}},
		{buttonPath("hidraw0", 0, 5), decodedPath{Kind: "button", Sysname: "hidraw0", Profile: 0, Child: 5}},
		{ledPath("hidraw0", 0, 1), decodedPath{Kind: "led", Sysname: "hidraw0", Profile: 0, Child: 1}},
	}
	for _, c := range cases {
		got, ok := decodePath(c.path)
		require.True(t, ok, "path %q should decode", c.path)
		assert.Equal(t, c.want, got)
	}
}

func TestDecodePathRejectsUnknownRoot(t *testing.T) {
	_, ok := decodePath("/not/our/tree")
	assert.False(t, ok)
}

func TestDecodePathRejectsMalformedIndex(t *testing.T) {
	_, ok := decodePath(RootPath + "/profile/hidraw0/x2")
	assert.False(t, ok)
}

func TestSanitizeSegmentReplacesDisallowedChars(t *testing.T) {
	assert.Equal(t, "hid_0_1", sanitizeSegment("hid:0-1"))
	assert.Equal(t, "hidraw0", sanitizeSegment("hidraw0"))
}

func TestToDBusErrorMapsTaxonomy(t *testing.T) {
	e := toDBusError(ratbag.ErrCapability("separate x/y"))
	assert.Equal(t, RootIface+".Error.Capability", e.Name)

	e = toDBusError(ratbag.ErrInvalidValue("bad dpi"))
	assert.Equal(t, RootIface+".Error.InvalidValue", e.Name)

	assert.Nil(t, toDBusError(nil))
}

func newTestDevice(t *testing.T) *ratbag.Device {
	t.Helper()
	drv := testdriver.New()
	dev := ratbag.NewDevice("hidraw0", ratbag.BusTypeUSB, 1, 2, 3)
	raw, err := json.Marshal(testdriver.Descriptor{
		Name: "Test", NumProfiles: 2, NumResolutions: 5, NumButtons: 1, NumLeds: 1,
	})
	require.NoError(t, err)
	require.NoError(t, drv.TestProbe(dev, raw))
	dev.Driver = drv
	return dev
}

func TestProfilePropsReflectsRateAndDirty(t *testing.T) {
	dev := newTestDevice(t)
	p := &dev.Profiles[0]
	p.ReportRate = 1000
	require.NoError(t, p.SetReportRate(50))

	props := profileProps(dev.Sysname, p)
	assert.Equal(t, int32(125), props["ReportRate"].Value())
	assert.Equal(t, true, props["IsDirty"].Value())
	assert.Len(t, props["Resolutions"].Value().([]dbus.ObjectPath), len(p.Resolutions))
}

func TestResolutionPropsDpiVariantIsScalarWhenAxesEqual(t *testing.T) {
	dev := newTestDevice(t)
	r := &dev.Profiles[0].Resolutions[0]
	require.NoError(t, r.SetDpi(800))

	props := resolutionProps(r)
	assert.Equal(t, uint32(800), props["Dpi"].Value())
}

func TestResolutionPropsDpiVariantIsPairWhenAxesDiffer(t *testing.T) {
	dev := newTestDevice(t)
	r := &dev.Profiles[0].Resolutions[0]
	r.Capabilities[ratbag.ResolutionCapSeparateXY] = true
	require.NoError(t, r.SetDpiXY(800, 1600))

	props := resolutionProps(r)
	assert.Equal(t, DpiPair{X: 800, Y: 1600}, props["Dpi"].Value())
}
