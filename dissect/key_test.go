package dissect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw          string
		wantName     string
		wantModifier Modifier
		wantPosition int
		wantOrdered  bool
		wantSkip     bool
		wantPadding  bool
	}{
		{raw: "", wantSkip: true},
		{raw: "->", wantSkip: true, wantPadding: true},
		{raw: "a", wantName: "a", wantModifier: ModifierNone},
		{raw: "a->", wantName: "a", wantModifier: ModifierNone, wantPadding: true},
		{raw: "?a", wantName: "a", wantModifier: ModifierFieldName},
		{raw: "*a", wantName: "a", wantModifier: ModifierFieldName},
		{raw: "&a", wantName: "a", wantModifier: ModifierFieldValue},
		{raw: "&a->", wantName: "a", wantModifier: ModifierFieldValue, wantPadding: true},
		{raw: "+a", wantName: "a", wantModifier: ModifierAppend},
		{raw: "+a/2", wantName: "a", wantModifier: ModifierAppendWithOrder, wantPosition: 2, wantOrdered: true},
		{raw: "+a/10->", wantName: "a", wantModifier: ModifierAppendWithOrder, wantPosition: 10, wantOrdered: true, wantPadding: true},
		{raw: "+a/b/1", wantName: "a/b", wantModifier: ModifierAppendWithOrder, wantPosition: 1, wantOrdered: true},
		{raw: "a/1", wantName: "a/1", wantModifier: ModifierNone},
		{raw: "@timestamp", wantName: "@timestamp", wantModifier: ModifierNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			key, err := ParseKey(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, key.Name())
			assert.Equal(t, tt.wantModifier, key.Modifier())
			assert.Equal(t, tt.wantSkip, key.IsSkip())
			assert.Equal(t, tt.wantPadding, key.SkipRightPadding())

			pos, ordered := key.AppendPosition()
			assert.Equal(t, tt.wantOrdered, ordered)
			assert.Equal(t, tt.wantPosition, pos)
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		wantErr string
	}{
		{raw: "+a/x", wantErr: "not a number"},
		{raw: "+a/1x", wantErr: "not a number"},
		{raw: "+a/", wantErr: "missing append position"},
		{raw: "+a/-1", wantErr: "not a number"},
		{raw: "+a/99999999999999999999999", wantErr: "append position"},
		{raw: "+", wantErr: "could not be determined"},
		{raw: "?", wantErr: "could not be determined"},
		{raw: "&->", wantErr: "could not be determined"},
		{raw: "+/1", wantErr: "could not be determined"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			_, err := ParseKey(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), tt.raw)
		})
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "->", "a", "a->", "?a", "&a", "+a", "+a/3", "+a/3->"} {
		key, err := ParseKey(raw)
		require.NoError(t, err)
		assert.Equal(t, "%{"+raw+"}", key.String())
	}

	// legacy reference spelling is normalized
	key, err := ParseKey("*a")
	require.NoError(t, err)
	assert.Equal(t, "%{?a}", key.String())
}

func TestModifierClassification(t *testing.T) {
	t.Parallel()
	assert.False(t, ModifierNone.IsAppend())
	assert.True(t, ModifierAppend.IsAppend())
	assert.True(t, ModifierAppendWithOrder.IsAppend())
	assert.False(t, ModifierFieldName.IsAppend())

	assert.True(t, ModifierFieldName.IsReference())
	assert.True(t, ModifierFieldValue.IsReference())
	assert.False(t, ModifierAppend.IsReference())

	assert.Equal(t, "append_with_order", ModifierAppendWithOrder.String())
	assert.Equal(t, "unknown", Modifier(42).String())
	assert.Panics(t, func() { Modifier(42).IsAppend() })
}
