package plan

import (
	"fmt"
	"math"
	"strings"
)

// Minutes is a minute-of-day value (0 = midnight).
type Minutes int

// Allowed time-of-day window. Shared by the parser and the vertical
// position mapper; changing one without the other is a defect.
const (
	WindowStart Minutes = 5 * 60  // 05:00
	WindowEnd   Minutes = 23 * 60 // 23:00
	WindowSpan          = WindowEnd - WindowStart
)

// ParseClock converts loosely formatted human time input into a
// minute-of-day value. Accepted forms: "7", "705", "1315", "7:05",
// "07.05", "07,05". The separators "." and "," normalize to ":".
//
// Values whose hour is outside [0,23], minute outside [0,59], or whose
// minute-of-day falls outside the 05:00-23:00 window parse as invalid.
// Failure is reported via the second return value, never a panic or error.
func ParseClock(input string) (Minutes, bool) {
	t := strings.TrimSpace(input)
	if t == "" {
		return 0, false
	}
	t = strings.Replace(t, ",", ":", 1)
	t = strings.Replace(t, ".", ":", 1)

	// Bare digit runs: "7" -> "07:00", "705" -> "07:05", "1315" -> "13:15".
	if !strings.Contains(t, ":") && isDigits(t) && len(t) <= 4 {
		if len(t) <= 2 {
			t = pad2(t) + ":00"
		} else {
			d := pad4(t)
			t = d[:2] + ":" + d[2:]
		}
	}

	hh, mm, ok := splitClock(t)
	if !ok {
		return 0, false
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, false
	}

	mins := Minutes(hh*60 + mm)
	if mins < WindowStart || mins > WindowEnd {
		return 0, false
	}
	return mins, true
}

// Normalize returns the canonical "HH:MM" form of a loosely formatted
// time input, or ok=false when the input does not parse. It is idempotent
// for any already-canonical in-window time.
func Normalize(input string) (string, bool) {
	m, ok := ParseClock(input)
	if !ok {
		return "", false
	}
	return FormatClock(m), true
}

// FormatClock renders a minute-of-day value as "HH:MM".
func FormatClock(m Minutes) string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// DurationHours returns the span between two clock strings in fractional
// hours, rounded half-away-from-zero at the second decimal. It fails when
// either time does not parse or when end is not strictly after start.
func DurationHours(start, end string) (float64, bool) {
	s, okS := ParseClock(start)
	e, okE := ParseClock(end)
	if !okS || !okE || e <= s {
		return 0, false
	}
	return math.Round(float64(e-s)/60*100) / 100, true
}

// QuarterHours lists every 15-minute step in the allowed window,
// "05:00" through "23:00". Used to populate time pickers.
func QuarterHours() []string {
	out := make([]string, 0, int(WindowSpan)/15+1)
	for m := WindowStart; m <= WindowEnd; m += 15 {
		out = append(out, FormatClock(m))
	}
	return out
}

// FormatHours renders fractional hours with a comma decimal ("40,00"),
// matching the de-DE presentation the plan uses everywhere.
func FormatHours(h float64) string {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return "0,00"
	}
	return strings.Replace(fmt.Sprintf("%.2f", h), ".", ",", 1)
}

// splitClock splits "H:MM" / "HH:MM" into its parts. Minute must be
// exactly two digits, hour one or two.
func splitClock(t string) (hh, mm int, ok bool) {
	i := strings.IndexByte(t, ':')
	if i < 1 || i > 2 {
		return 0, 0, false
	}
	h, m := t[:i], t[i+1:]
	if len(m) != 2 || !isDigits(h) || !isDigits(m) {
		return 0, 0, false
	}
	return atoi2(h), atoi2(m), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi2 converts a 1-2 digit string; inputs are pre-validated.
func atoi2(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func pad2(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}

func pad4(s string) string {
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
