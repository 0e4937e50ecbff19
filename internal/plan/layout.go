package plan

import "sort"

// Geometry describes the vertical viewport a day column renders into.
type Geometry struct {
	ViewHeight float64 // px
	TopPad     float64 // px
	BottomPad  float64 // px
}

// DefaultGeometry matches the week view's fixed-height day columns.
var DefaultGeometry = Geometry{ViewHeight: 720, TopPad: 14, BottomPad: 14}

// PositionPct maps a minute-of-day value to a vertical percentage position
// in [0,100] within the viewport, net of padding. Linear in the allowed
// window and monotone: m1 < m2 implies PositionPct(m1) <= PositionPct(m2).
func (g Geometry) PositionPct(m Minutes) float64 {
	inner := g.ViewHeight - g.TopPad - g.BottomPad
	if inner < 1 {
		inner = 1
	}
	rel := float64(m-WindowStart) / float64(WindowSpan)
	px := g.TopPad + rel*inner
	return clampF(px/g.ViewHeight*100, 0, 100)
}

// Tick is one horizontal guide line of the time axis.
type Tick struct {
	Minutes Minutes `json:"minutes"`
	Label   string  `json:"label"`
	TopPct  float64 `json:"topPct"`
	Strong  bool    `json:"strong"`
}

// Ticks returns the hourly guide lines for the viewport; every second
// hour is marked strong.
func (g Geometry) Ticks() []Tick {
	out := make([]Tick, 0, int(WindowSpan)/60+1)
	for m := WindowStart; m <= WindowEnd; m += 60 {
		out = append(out, Tick{
			Minutes: m,
			Label:   FormatClock(m),
			TopPct:  g.PositionPct(m),
			Strong:  m%120 == 0,
		})
	}
	return out
}

// Placed is one Einsatz with its resolved times and assigned track.
type Placed struct {
	Einsatz Einsatz
	Start   Minutes
	End     Minutes
	Track   int
}

// DayLayout is the track assignment for one day column. Skipped lists the
// entries whose times did not parse; they are excluded from layout but
// reported so callers can surface the data-entry error instead of silently
// hiding it.
type DayLayout struct {
	Placed     []Placed
	TrackCount int
	Skipped    []Einsatz
}

// LayoutDay assigns the day's Einsätze to horizontal tracks so that jobs
// sharing a track never overlap in time.
//
// Entries are stable-sorted by start ascending, then placed greedily: each
// job scans tracks in index order and takes the first whose current end
// time is <= its start, opening a new track when none is free. This never
// uses more tracks than the maximum number of simultaneously overlapping
// jobs, though it is not a minimum coloring for adversarial orderings.
//
// TrackCount is at least 1 so an empty day still reserves one lane.
func LayoutDay(items []Einsatz) DayLayout {
	type timed struct {
		e    Einsatz
		s, t Minutes
	}

	entries := make([]timed, 0, len(items))
	var skipped []Einsatz
	for _, e := range items {
		s, okS := ParseClock(e.Start)
		t, okT := ParseClock(e.End)
		if !okS || !okT {
			skipped = append(skipped, e)
			continue
		}
		entries = append(entries, timed{e: e, s: s, t: t})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].s < entries[j].s })

	var ends []Minutes
	placed := make([]Placed, 0, len(entries))
	for _, it := range entries {
		track := 0
		for track < len(ends) && it.s < ends[track] {
			track++
		}
		if track == len(ends) {
			ends = append(ends, it.t)
		} else {
			ends[track] = it.t
		}
		placed = append(placed, Placed{Einsatz: it.e, Start: it.s, End: it.t, Track: track})
	}

	trackCount := len(ends)
	if trackCount < 1 {
		trackCount = 1
	}
	return DayLayout{Placed: placed, TrackCount: trackCount, Skipped: skipped}
}
