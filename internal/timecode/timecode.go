// Package timecode converts between display timestamp strings and seconds.
// Display timestamps are "M:SS" or "H:MM:SS" with unbounded leading units.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("malformed timecode")

// Parse converts "M:SS" or "H:MM:SS" to seconds. Malformed input yields NaN
// so that rendering paths can skip bad entries instead of failing; callers
// that need a hard error use ParseStrict.
func Parse(s string) float64 {
	secs, err := ParseStrict(s)
	if err != nil {
		return math.NaN()
	}
	return secs
}

// ParseStrict is Parse with an explicit error for malformed input.
func ParseStrict(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		total = total*60 + n
	}
	return float64(total), nil
}

// FormatSeconds renders seconds as "M:SS" with the seconds field zero-padded.
// Minutes are unbounded, so a 3-part input does not round-trip through this
// function; fractional seconds are floored.
func FormatSeconds(secs float64) string {
	if math.IsNaN(secs) || secs < 0 {
		secs = 0
	}
	total := int(math.Floor(secs))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
