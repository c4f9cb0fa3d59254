package poller

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "Hello", "Hello"},
		{"empty string", "", ""},
		{"json number", json.Number("120"), "120"},
		{"json number keeps literal", json.Number("1.50"), "1.50"},
		{"big decimal string", "18446744073709551617", "18446744073709551617"},
		{"bool", true, "true"},
		{"null", nil, ""},
		{"float", 15.0, "15"},
		{"int", 42, "42"},
		{"object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("live"))
	assert.True(t, Truthy(json.Number("3")))
	assert.True(t, Truthy(map[string]any{}))

	assert.False(t, Truthy(false))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(json.Number("0")))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(math.NaN()))
}

func TestOnlineLabelIsPureFunctionOfFlag(t *testing.T) {
	format := FlagFormatter(LiveLabel, OfflineLabel)

	for i := 0; i < 3; i++ {
		on, err := format(true)
		require.NoError(t, err)
		off, err := format(false)
		require.NoError(t, err)

		assert.Equal(t, "En directo 🔴", on)
		assert.Equal(t, "Offline ⚫", off)
	}

	yes, _ := FlagFormatter(YesLabel, NoLabel)(true)
	no, _ := FlagFormatter(YesLabel, NoLabel)(false)
	assert.Equal(t, "✓ Sí", yes)
	assert.Equal(t, "✗ No", no)
}

func TestBindDefaults(t *testing.T) {
	b := Bind("followers", SlotFollowers)
	assert.Equal(t, "followers", b.Field)
	assert.Equal(t, "followers", b.Slot)
	require.NotNil(t, b.Format)

	flag := BindFlag("stream_online", SlotStatus, "on", "off")
	got, err := flag.Format(json.Number("0"))
	require.NoError(t, err)
	assert.Equal(t, "off", got)
}

func TestProjectAndSnapshotOf(t *testing.T) {
	snap, err := SnapshotOf(struct {
		Followers    int64  `json:"followers"`
		StreamOnline bool   `json:"stream_online"`
		ViewerCount  int64  `json:"viewer_count"`
		Title        string `json:"title"`
	}{120, true, 15, "Hello"})
	require.NoError(t, err)

	got := map[string]string{}
	err = Project(snap, TwitchBindings(), sinkMap(got))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		SlotFollowers: "120",
		SlotStatus:    "En directo 🔴",
		SlotViewers:   "15",
		SlotTitle:     "Hello",
	}, got)

	_, err = SnapshotOf([]int{1})
	assert.ErrorIs(t, err, ErrMalformed)
}

type sinkMap map[string]string

func (m sinkMap) Write(slot, value string) error {
	m[slot] = value
	return nil
}
