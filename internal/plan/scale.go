package plan

// Presentation scaling heuristics. Short jobs get small type and minimal
// detail so they never overflow their vertical slot; long jobs show the
// full block.

// VisualScale interpolates a sizing factor in [0.66, 1.12] as the duration
// ranges over [20, 240] minutes, clamped outside that range.
func VisualScale(durationMin Minutes) float64 {
	t := clampF((float64(durationMin)-20)/(240-20), 0, 1)
	return lerp(0.66, 1.12, t)
}

// DetailLevel tiers how much information a rendered block shows:
//
//	0  title only
//	1  + time range
//	2  + crew count and names
//	3  + location and note
func DetailLevel(durationMin Minutes) int {
	switch {
	case durationMin < 50:
		return 0
	case durationMin < 120:
		return 1
	case durationMin < 200:
		return 2
	default:
		return 3
	}
}

// BlockMetrics are the concrete pixel sizes derived from the visual scale.
type BlockMetrics struct {
	Scale     float64 `json:"scale"`
	Level     int     `json:"level"`
	PadY      int     `json:"padY"`
	PadX      int     `json:"padX"`
	Gap       int     `json:"gap"`
	TitleFont int     `json:"titleFont"`
	SubFont   int     `json:"subFont"`
	ButtonPx  int     `json:"buttonPx"`
	ButtonFnt int     `json:"buttonFont"`
}

// MetricsFor sizes a block for the given duration.
func MetricsFor(durationMin Minutes) BlockMetrics {
	s := VisualScale(durationMin)
	return BlockMetrics{
		Scale:     s,
		Level:     DetailLevel(durationMin),
		PadY:      clampI(iround(4*s), 2, 8),
		PadX:      clampI(iround(7*s), 4, 12),
		Gap:       clampI(iround(4*s), 2, 8),
		TitleFont: clampI(iround(12*s), 10, 16),
		SubFont:   clampI(iround(11*s), 9, 14),
		ButtonPx:  clampI(iround(18*s), 14, 26),
		ButtonFnt: clampI(iround(11*s), 9, 15),
	}
}

func iround(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
