package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Frontmatter values arrive as loosely-typed YAML; these helpers implement
// the explicit fallback chains the loader needs. The first key that yields a
// usable value wins.

func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func intField(fields map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func boolField(fields map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := fields[key].(bool); ok {
			return v
		}
	}
	return false
}

// timeField accepts native YAML timestamps as well as the common string
// date layouts found in legacy frontmatter.
func timeField(fields map[string]any, keys ...string) *time.Time {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case time.Time:
			t := v
			return &t
		case string:
			if t, ok := parseDate(v); ok {
				return &t
			}
		}
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringsField(fields map[string]any, keys ...string) []string {
	for _, key := range keys {
		raw, ok := fields[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func decodeJSONMap(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("record is not a JSON object")
	}
	return data, nil
}
