package sqlite

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// FormatDateForDB formats a timestamp as a calendar day string.
func FormatDateForDB(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDateFromDB parses a calendar day string back into a UTC midnight
// timestamp.
func ParseDateFromDB(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// FormatTimeForDB formats a timestamp as RFC3339 for storage.
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtrForDB formats an optional timestamp, returning nil for nil so
// the column stays NULL.
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses an RFC3339 timestamp from storage.
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// MarshalJSONField serializes a document-style field (team list, custom
// fields) for a TEXT column. Empty input becomes the empty string so the
// column reads back as absent.
func MarshalJSONField(v interface{}) (string, error) {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return "", nil
		}
	case map[string]interface{}:
		if len(val) == 0 {
			return "", nil
		}
	case nil:
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalStringList parses a JSON array column into a string slice.
func UnmarshalStringList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalObject parses a JSON object column into a map.
func UnmarshalObject(s string) (map[string]interface{}, error) {
	if s == "" {
		return nil, nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
