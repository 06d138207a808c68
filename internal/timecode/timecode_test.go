package timecode

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0:00", 0},
		{"0:05", 5},
		{"1:30", 90},
		{"12:00", 720},
		{"1:02:03", 3723},
		{"2:00:00", 7200},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := Parse(tc.in)
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{"", "90", "1:xx", "a:05", "1:2:3:4", "-1:30", "1:-30"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if got := Parse(in); !math.IsNaN(got) {
				t.Errorf("Parse(%q) = %v, want NaN", in, got)
			}
			if _, err := ParseStrict(in); err == nil {
				t.Errorf("ParseStrict(%q) should return error", in)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{90, "1:30"},
		{90.9, "1:30"},
		{725, "12:05"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := FormatSeconds(tc.in); got != tc.want {
				t.Errorf("FormatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Three-part timecodes parse to seconds but format back in the two-part
// form with unbounded minutes. That asymmetry is intentional.
func TestFormatSeconds_NoThreePartRoundTrip(t *testing.T) {
	secs := Parse("1:02:03")
	if got := FormatSeconds(secs); got != "62:03" {
		t.Errorf("FormatSeconds(Parse(%q)) = %q, want %q", "1:02:03", got, "62:03")
	}
}

func TestFormatSeconds_Negative(t *testing.T) {
	if got := FormatSeconds(-10); got != "0:00" {
		t.Errorf("FormatSeconds(-10) = %q, want 0:00", got)
	}
}
