package plan

import (
	"testing"
	"time"
)

func weekEinsatz(t *testing.T, id, iso, start, end string, status Status) Einsatz {
	t.Helper()
	e, err := NewEinsatz(Draft{
		ID:       id,
		Customer: "Kunde " + id,
		Date:     iso,
		Start:    start,
		End:      end,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("NewEinsatz(%s): %v", id, err)
	}
	return e
}

func TestWeekTotalsPartition(t *testing.T) {
	t.Parallel()
	week := WeekOf(date(2026, time.August, 31))
	list := []Einsatz{
		weekEinsatz(t, "a", "2026-08-31", "08:00", "12:00", StatusPlanned), // 4h
		weekEinsatz(t, "b", "2026-09-02", "09:00", "10:30", StatusDone),    // 1.5h
		weekEinsatz(t, "c", "2026-09-06", "13:00", "17:30", StatusPlanned), // 4.5h
		weekEinsatz(t, "d", "2026-09-07", "08:00", "16:00", StatusPlanned), // next week
	}

	got := WeekTotals(list, week, 40)
	if got.Planned != 8.5 {
		t.Errorf("Planned = %v, want 8.5", got.Planned)
	}
	if got.Done != 1.5 {
		t.Errorf("Done = %v, want 1.5", got.Done)
	}

	// planned+done partitions the week's total duration by status.
	var sum float64
	for _, e := range list[:3] {
		sum += e.DurationHours
	}
	if got.Planned+got.Done != sum {
		t.Errorf("partition broken: %v + %v != %v", got.Planned, got.Done, sum)
	}
	if got.Diff != 8.5-40 {
		t.Errorf("Diff = %v", got.Diff)
	}
}

func TestBuildWeekView(t *testing.T) {
	t.Parallel()
	week := WeekOf(date(2026, time.August, 31))
	list := []Einsatz{
		weekEinsatz(t, "a", "2026-08-31", "09:00", "10:00", StatusPlanned),
		weekEinsatz(t, "b", "2026-08-31", "09:30", "10:30", StatusPlanned),
		weekEinsatz(t, "c", "2026-09-02", "08:00", "12:00", StatusDone),
	}

	view := BuildWeekView(list, week, Filter{}, DefaultGeometry, 40)

	if view.Label != "KW 36 (2026)" {
		t.Errorf("Label = %q", view.Label)
	}
	if view.RangeLabel != "31.08–06.09" {
		t.Errorf("RangeLabel = %q", view.RangeLabel)
	}
	if len(view.Days) != 7 {
		t.Fatalf("Days = %d", len(view.Days))
	}
	if view.Days[0].Name != "Mo" || view.Days[6].Name != "So" {
		t.Errorf("day names = %s..%s", view.Days[0].Name, view.Days[6].Name)
	}

	mon := view.Days[0]
	if len(mon.Blocks) != 2 || mon.TrackCount != 2 {
		t.Fatalf("monday layout: %d blocks, %d tracks", len(mon.Blocks), mon.TrackCount)
	}
	if mon.Blocks[0].WidthPct != 50 || mon.Blocks[1].LeftPct != 50 {
		t.Errorf("track spans: %+v, %+v", mon.Blocks[0], mon.Blocks[1])
	}

	wed := view.Days[2]
	if len(wed.Blocks) != 1 || wed.TrackCount != 1 {
		t.Fatalf("wednesday layout: %+v", wed)
	}
	b := wed.Blocks[0]
	if b.WidthPct != 100 || b.LeftPct != 0 {
		t.Errorf("single track span: %+v", b)
	}
	if b.HeightPct <= 0 || b.TopPct >= b.TopPct+b.HeightPct {
		t.Errorf("geometry: %+v", b)
	}
	if b.DurationMn != 240 || b.Metrics.Level != 3 {
		t.Errorf("metrics: %+v", b.Metrics)
	}

	if len(view.Ticks) != 19 { // 05:00..23:00 hourly
		t.Errorf("Ticks = %d", len(view.Ticks))
	}
	if view.Totals.Planned != 2 || view.Totals.Done != 4 {
		t.Errorf("Totals = %+v", view.Totals)
	}
}

func TestBuildWeekViewFilterKeepsTotals(t *testing.T) {
	t.Parallel()
	week := WeekOf(date(2026, time.August, 31))
	list := []Einsatz{
		weekEinsatz(t, "a", "2026-08-31", "09:00", "10:00", StatusPlanned),
		weekEinsatz(t, "b", "2026-09-01", "09:00", "11:00", StatusDone),
	}

	planned := StatusPlanned
	view := BuildWeekView(list, week, Filter{Status: &planned}, DefaultGeometry, 40)

	if len(view.Days[1].Blocks) != 0 {
		t.Errorf("filtered entry still laid out: %+v", view.Days[1].Blocks)
	}
	if len(view.Days[0].Blocks) != 1 {
		t.Errorf("kept entry missing")
	}
	// Totals always cover the unfiltered week.
	if view.Totals.Done != 2 || view.Totals.Planned != 1 {
		t.Errorf("Totals = %+v", view.Totals)
	}
}
