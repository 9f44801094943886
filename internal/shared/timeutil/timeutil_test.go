package timeutil

import (
	"regexp"
	"testing"
	"time"
)

var canonicalRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

func withFixedNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = prev })
}

func TestNormalizeKnownInputs(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"epoch int", int64(1700000000), "2023-11-14T22:13:20Z"},
		{"epoch float", float64(1700000000), "2023-11-14T22:13:20Z"},
		{"epoch string", "1700000000", "2023-11-14T22:13:20Z"},
		{"iso z", "2023-11-14T22:13:20Z", "2023-11-14T22:13:20Z"},
		{"iso offset", "2023-11-14T23:13:20+01:00", "2023-11-14T22:13:20Z"},
		{"iso fractional", "2023-11-14T22:13:20.987Z", "2023-11-14T22:13:20Z"},
		{"iso no zone", "2023-11-14T22:13:20", "2023-11-14T22:13:20Z"},
		{"date only", "2024-01-02", "2024-01-02T00:00:00Z"},
		{"time value", time.Date(2023, 11, 14, 22, 13, 20, 500, time.UTC), "2023-11-14T22:13:20Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTotality(t *testing.T) {
	withFixedNow(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	inputs := []any{nil, "", "   ", "not a timestamp", "12:34", struct{}{}, []byte("x")}
	for _, in := range inputs {
		got := Normalize(in)
		if !canonicalRe.MatchString(got) {
			t.Fatalf("Normalize(%v) = %q, not canonical", in, got)
		}
	}

	if got := Normalize(int64(-86400)); got != "1969-12-31T00:00:00Z" {
		t.Fatalf("negative epoch: got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{int64(1700000000), "2023-11-14T23:13:20+01:00", "1700000000", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestLexicalOrderMatchesChronological(t *testing.T) {
	earlier := Normalize(int64(1700000000))
	later := Normalize(int64(1700000001))
	if !(earlier < later) {
		t.Fatalf("expected %q < %q", earlier, later)
	}
}
