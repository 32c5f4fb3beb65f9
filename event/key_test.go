package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryNamedKeyHasAName(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Keys() {
		name := k.String()
		require.NotEmpty(t, name, "key %d", uint32(k))
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
		assert.False(t, k.IsUnknown())
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	for _, k := range append(Keys(), Unknown(12345), Unknown(1)) {
		parsed, err := ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestUnknownKey(t *testing.T) {
	k := Unknown(0x1d0)
	assert.True(t, k.IsUnknown())
	assert.Equal(t, uint32(0x1d0), k.RawCode())
	assert.Equal(t, "Unknown(464)", k.String())

	var zero Key
	assert.True(t, zero.IsUnknown())
	assert.Equal(t, Unknown(0), zero)
	assert.Equal(t, uint32(0), KeyA.RawCode())
}

func TestParseKeyErrors(t *testing.T) {
	for _, s := range []string{"", "KeyAA", "Unknown(", "Unknown(x)", "Unknown(-1)"} {
		_, err := ParseKey(s)
		assert.Error(t, err, s)
	}
}

func TestKeyCategories(t *testing.T) {
	assert.True(t, KeyQ.IsLetter())
	assert.False(t, Num1.IsLetter())
	assert.True(t, Num9.IsNumber())
	assert.True(t, F24.IsFunction())
	assert.True(t, NumpadEqual.IsNumpad())
	assert.True(t, MediaPrevious.IsMedia())
	assert.True(t, PageDown.IsNavigation())
	assert.False(t, Tab.IsNavigation())

	for _, k := range []Key{ShiftLeft, ShiftRight, ControlLeft, ControlRight, AltLeft, AltRight, MetaLeft, MetaRight} {
		assert.True(t, k.IsModifier(), k.String())
	}
	assert.False(t, CapsLock.IsModifier())
}
