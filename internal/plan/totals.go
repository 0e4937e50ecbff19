package plan

// DefaultWeekTargetHours is the weekly Soll the totals are measured
// against when the config does not override it.
const DefaultWeekTargetHours = 40

// Totals are the week's hour sums split by status. Planned and Done
// together partition the week's total duration; Diff is planned minus the
// weekly target.
type Totals struct {
	Target  float64 `json:"target"`
	Planned float64 `json:"planned"`
	Done    float64 `json:"done"`
	Diff    float64 `json:"diff"`
}

// WeekTotals sums the durations of all entries dated inside the week,
// split by status, against the given weekly target.
func WeekTotals(list []Einsatz, week Week, targetHours float64) Totals {
	inWeek := make(map[string]bool, 7)
	for _, d := range week.Days() {
		inWeek[ToISODate(d)] = true
	}

	t := Totals{Target: targetHours}
	for _, e := range list {
		if !inWeek[e.Date] {
			continue
		}
		if e.Status == StatusDone {
			t.Done += e.DurationHours
		} else {
			t.Planned += e.DurationHours
		}
	}
	t.Diff = t.Planned - targetHours
	return t
}
