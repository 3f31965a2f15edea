// Package settings holds the typed playback configuration that is stored as
// jsonb on both organizations and stores and merged at read time.
package settings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Settings enumerates the known configuration keys. Pointer fields
// distinguish "unset" from a zero value so the merge can tell whether a
// store-level value overrides the organization default. Extra carries
// forward-compatible keys this build does not know about.
type Settings struct {
	Shuffle            *bool   `json:"shuffle,omitempty"`
	CrossfadeSeconds   *int    `json:"crossfade_seconds,omitempty"`
	AnnouncementDuckDB *int    `json:"announcement_duck_db,omitempty"`
	CacheLimitMB       *int    `json:"cache_limit_mb,omitempty"`
	Locale             *string `json:"locale,omitempty"`

	Extra map[string]any `json:"-"`
}

// knownKeys mirrors the json tags above; anything else lands in Extra.
var knownKeys = map[string]bool{
	"shuffle":              true,
	"crossfade_seconds":    true,
	"announcement_duck_db": true,
	"cache_limit_mb":       true,
	"locale":               true,
}

// Merge overlays store-level settings on top of organization-level defaults.
// The store wins on every key it sets, known or extra; keys it leaves unset
// fall through to the organization value.
func Merge(org, store Settings) Settings {
	out := org
	if store.Shuffle != nil {
		out.Shuffle = store.Shuffle
	}
	if store.CrossfadeSeconds != nil {
		out.CrossfadeSeconds = store.CrossfadeSeconds
	}
	if store.AnnouncementDuckDB != nil {
		out.AnnouncementDuckDB = store.AnnouncementDuckDB
	}
	if store.CacheLimitMB != nil {
		out.CacheLimitMB = store.CacheLimitMB
	}
	if store.Locale != nil {
		out.Locale = store.Locale
	}
	if len(org.Extra) > 0 || len(store.Extra) > 0 {
		merged := make(map[string]any, len(org.Extra)+len(store.Extra))
		for k, v := range org.Extra {
			merged[k] = v
		}
		for k, v := range store.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

func (s Settings) MarshalJSON() ([]byte, error) {
	type plain Settings
	b, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return b, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if !knownKeys[k] {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Settings(p)

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		if knownKeys[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]any{}
		}
		s.Extra[k] = v
	}
	return nil
}

func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Settings) Scan(src any) error {
	if src == nil {
		*s = Settings{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Settings", src)
	}
	if len(b) == 0 {
		*s = Settings{}
		return nil
	}
	return json.Unmarshal(b, s)
}
