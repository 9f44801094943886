// Package timeutil normalizes the timestamp representations found in stored
// records into one canonical form: UTC, whole-second precision, RFC3339 with
// a Z suffix. Canonical strings sort lexically in chronological order.
package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical timestamp layout.
const Layout = "2006-01-02T15:04:05Z"

// nowFunc is swappable in tests.
var nowFunc = time.Now

// Now returns the current time as a canonical timestamp.
func Now() string {
	return Format(nowFunc())
}

// Format renders t as a canonical timestamp.
func Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(Layout)
}

// Normalize coerces a persisted timestamp value into canonical form. It is
// total: any input, including nil, garbage strings, and negative epochs,
// yields a canonical timestamp. Unparseable values fall back to the current
// time.
func Normalize(value any) string {
	switch v := value.(type) {
	case nil:
		return Now()
	case time.Time:
		return Format(v)
	case int:
		return Format(time.Unix(int64(v), 0))
	case int64:
		return Format(time.Unix(v, 0))
	case float64:
		return Format(time.Unix(int64(v), 0))
	case string:
		return normalizeString(v)
	default:
		return Now()
	}
}

// NormalizeString is Normalize restricted to the string representations the
// storage backends actually persist.
func NormalizeString(raw string) string {
	return normalizeString(raw)
}

func normalizeString(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return Now()
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return Format(parsed)
		}
	}

	if epoch, err := strconv.ParseFloat(candidate, 64); err == nil {
		return Format(time.Unix(int64(epoch), 0))
	}

	return Now()
}
