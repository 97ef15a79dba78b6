package textutil_test

import (
	"testing"

	"gaffer/internal/textutil"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"wes-anderson", "Wes Anderson"},
		{"golden_hour", "Golden Hour"},
		{"imageGen", "Image Gen"},
		{"combineText", "Combine Text"},
		{"video", "Video"},
		{"  dolly-in  ", "Dolly In"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer value that gets cut", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := textutil.Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
