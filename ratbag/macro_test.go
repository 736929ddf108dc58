package ratbag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		key  int
		mods ModifierMask
	}{
		{"no modifiers", 42, 0},
		{"single modifier", 42, ModLeftCtrl},
		{"two modifiers", 99, ModLeftShift | ModRightAlt},
		{"all modifiers", 77, ModLeftCtrl | ModLeftShift | ModLeftAlt | ModLeftMeta | ModRightCtrl | ModRightShift | ModRightAlt | ModRightMeta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := EncodeKeyMacro(tc.key, tc.mods)
			key, mods, err := DecodeKeyMacro(m)
			require.NoError(t, err)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.mods, mods)
		})
	}
}

func TestMacroEncodeCanonicalOrder(t *testing.T) {
	m := EncodeKeyMacro(55, ModRightMeta|ModLeftCtrl|ModLeftShift)
	// press order: left-ctrl, left-shift, ..., right-meta; then key;
	// release in the same order.
	require.Len(t, m.Events, 2*3+2)
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyPressed, KeyCode: KeyLeftCtrl}, m.Events[0])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyPressed, KeyCode: KeyLeftShift}, m.Events[1])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyPressed, KeyCode: KeyRightMeta}, m.Events[2])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyPressed, KeyCode: 55}, m.Events[3])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyReleased, KeyCode: 55}, m.Events[4])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyReleased, KeyCode: KeyLeftCtrl}, m.Events[5])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyReleased, KeyCode: KeyLeftShift}, m.Events[6])
	assert.Equal(t, MacroEvent{Kind: MacroEventKeyReleased, KeyCode: KeyRightMeta}, m.Events[7])
}

func TestMacroDecodeLoneModifier(t *testing.T) {
	m := NewMacro([]MacroEvent{{Kind: MacroEventKeyPressed, KeyCode: KeyLeftShift}})
	key, mods, err := DecodeKeyMacro(m)
	require.NoError(t, err)
	assert.Equal(t, KeyLeftShift, key)
	assert.Equal(t, ModifierMask(0), mods)
}

func TestMacroDecodeToleratesWait(t *testing.T) {
	m := NewMacro([]MacroEvent{
		{Kind: MacroEventKeyPressed, KeyCode: KeyLeftCtrl},
		{Kind: MacroEventWait, WaitMs: 50},
		{Kind: MacroEventKeyPressed, KeyCode: 11},
		{Kind: MacroEventKeyReleased, KeyCode: 11},
		{Kind: MacroEventWait, WaitMs: 10},
		{Kind: MacroEventKeyReleased, KeyCode: KeyLeftCtrl},
	})
	key, mods, err := DecodeKeyMacro(m)
	require.NoError(t, err)
	assert.Equal(t, 11, key)
	assert.Equal(t, ModLeftCtrl, mods)
}

func TestMacroDecodeRejectsMultipleNonModifierKeys(t *testing.T) {
	m := NewMacro([]MacroEvent{
		{Kind: MacroEventKeyPressed, KeyCode: 20},
		{Kind: MacroEventKeyReleased, KeyCode: 20},
		{Kind: MacroEventKeyPressed, KeyCode: 21},
		{Kind: MacroEventKeyReleased, KeyCode: 21},
	})
	_, _, err := DecodeKeyMacro(m)
	require.Error(t, err)
	rbErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidValue, rbErr.Code)
}

func TestMacroCapacityTruncation(t *testing.T) {
	events := make([]MacroEvent, MacroCapacity+50)
	for i := range events {
		events[i] = MacroEvent{Kind: MacroEventWait, WaitMs: 1}
	}
	m := NewMacro(events)
	assert.Len(t, m.Events, MacroCapacity)
}
