package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestMerge_StoreWinsPerKey(t *testing.T) {
	org := Settings{
		Shuffle:          boolPtr(true),
		CrossfadeSeconds: intPtr(3),
		Locale:           strPtr("en"),
	}
	store := Settings{
		CrossfadeSeconds: intPtr(5),
		CacheLimitMB:     intPtr(512),
	}

	got := Merge(org, store)

	assert.Equal(t, true, *got.Shuffle)            // org default survives
	assert.Equal(t, 5, *got.CrossfadeSeconds)      // store override wins
	assert.Equal(t, 512, *got.CacheLimitMB)        // store-only key appears
	assert.Equal(t, "en", *got.Locale)
	assert.Nil(t, got.AnnouncementDuckDB)
}

func TestMerge_ExtraKeysStoreWins(t *testing.T) {
	org := Settings{Extra: map[string]any{"theme": "dark", "beta": false}}
	store := Settings{Extra: map[string]any{"beta": true}}

	got := Merge(org, store)

	assert.Equal(t, "dark", got.Extra["theme"])
	assert.Equal(t, true, got.Extra["beta"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	org := Settings{Extra: map[string]any{"a": 1}}
	store := Settings{Extra: map[string]any{"b": 2}}

	_ = Merge(org, store)

	assert.Len(t, org.Extra, 1)
	assert.Len(t, store.Extra, 1)
}

func TestJSONRoundTripKeepsUnknownKeys(t *testing.T) {
	raw := []byte(`{"shuffle":true,"crossfade_seconds":2,"experimental_eq":"rock"}`)

	var s Settings
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, true, *s.Shuffle)
	assert.Equal(t, "rock", s.Extra["experimental_eq"])

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "rock", m["experimental_eq"])
	assert.Equal(t, true, m["shuffle"])
}

func TestScanHandlesNilAndBytes(t *testing.T) {
	var s Settings
	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s.Shuffle)

	require.NoError(t, s.Scan([]byte(`{"locale":"de"}`)))
	assert.Equal(t, "de", *s.Locale)
}
