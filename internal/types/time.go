package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// backendTimeLayouts are tried in order. The backend encodes naive UTC
// datetimes without an offset.
var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a time that decodes the backend's datetime strings
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC3339 strings, offset-less ISO strings and null
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into Timestamp", string(data))
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range backendTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse time string: %s", s)
}

// MarshalJSON outputs RFC3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
