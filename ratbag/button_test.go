package ratbag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newButtonTestDevice(t *testing.T) *Button {
	t.Helper()
	d := NewDevice("hidraw0", BusTypeUSB, 1, 1, 1)
	d.InitProfiles(1, 0, 1, 0)
	b := &d.Profiles[0].Buttons[0]
	b.Capabilities = ButtonActionCapNone | ButtonActionCapButton | ButtonActionCapSpecial | ButtonActionCapKey | ButtonActionCapMacro
	return b
}

func TestButtonCapabilityGate(t *testing.T) {
	b := newButtonTestDevice(t)
	b.Capabilities = ButtonActionCapNone
	err := b.SetActionButton(3)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeCapability, rbErr.Code)
}

func TestButtonMacroSurvivesNonMacroAssignment(t *testing.T) {
	b := newButtonTestDevice(t)
	require.NoError(t, b.SetActionMacro([]MacroEvent{
		{Kind: MacroEventKeyPressed, KeyCode: 5},
		{Kind: MacroEventKeyReleased, KeyCode: 5},
	}))
	originalMacro := b.Action.Macro

	require.NoError(t, b.SetActionButton(2))
	assert.Equal(t, ActionButton, b.Action.Kind)
	// The macro buffer is preserved even though the active kind changed.
	require.NotNil(t, b.Action.Macro)
	assert.True(t, b.Action.Macro.Equal(originalMacro))

	require.NoError(t, b.SetActionMacro(originalMacro.Events))
	assert.Equal(t, ActionMacro, b.Action.Kind)
}

func TestButtonSetActionKeyEncodesMacro(t *testing.T) {
	b := newButtonTestDevice(t)
	require.NoError(t, b.SetActionKeyWithModifiers(9, ModLeftShift))
	require.NotNil(t, b.Action.Macro)
	key, mods, err := DecodeKeyMacro(b.Action.Macro)
	require.NoError(t, err)
	assert.Equal(t, 9, key)
	assert.Equal(t, ModLeftShift, mods)
}

func TestButtonNoOpSkipsDirty(t *testing.T) {
	b := newButtonTestDevice(t)
	require.NoError(t, b.SetActionButton(1))
	b.IsDirty = false
	b.profile.IsDirty = false
	require.NoError(t, b.SetActionButton(1))
	assert.False(t, b.IsDirty)
}
