package plan

// view.go assembles the complete weekly view model: entries bucketed by
// day, laid out into tracks, mapped to viewport geometry and annotated
// with the presentation metrics. Data flows one direction; the result is
// plain records for the rendering side to consume.

// Block is one laid-out Einsatz with its geometry resolved.
type Block struct {
	Einsatz    Einsatz      `json:"einsatz"`
	Track      int          `json:"track"`
	TopPct     float64      `json:"topPct"`
	HeightPct  float64      `json:"heightPct"`
	LeftPct    float64      `json:"leftPct"`
	WidthPct   float64      `json:"widthPct"`
	Metrics    BlockMetrics `json:"metrics"`
	TimeRange  string       `json:"timeRange"`
	DurationMn Minutes      `json:"durationMinutes"`
}

// DayColumn is one day of the week view.
type DayColumn struct {
	Date       string    `json:"date"` // "YYYY-MM-DD"
	Name       string    `json:"name"` // "Mo".."So"
	Label      string    `json:"label"`
	Blocks     []Block   `json:"blocks"`
	TrackCount int       `json:"trackCount"`
	Skipped    []Einsatz `json:"skipped,omitempty"`
}

// WeekView is the full view model for one week.
type WeekView struct {
	Label      string      `json:"label"`      // "KW 05 (2026)"
	RangeLabel string      `json:"rangeLabel"` // "26.01–01.02"
	Days       []DayColumn `json:"days"`
	Ticks      []Tick      `json:"ticks"`
	Totals     Totals      `json:"totals"`
}

// BuildWeekView lays out all entries falling inside the week. The filter
// narrows which entries are shown; the totals always cover the unfiltered
// week so the Soll comparison stays honest.
func BuildWeekView(list []Einsatz, week Week, filter Filter, geo Geometry, targetHours float64) WeekView {
	shown := filter.Apply(list)

	byDay := make(map[string][]Einsatz, 7)
	days := week.Days()
	for _, d := range days {
		byDay[ToISODate(d)] = nil
	}
	for _, e := range shown {
		if _, ok := byDay[e.Date]; ok {
			byDay[e.Date] = append(byDay[e.Date], e)
		}
	}

	view := WeekView{
		Label:      week.Label(),
		RangeLabel: week.RangeLabel(),
		Ticks:      geo.Ticks(),
		Totals:     WeekTotals(list, week, targetHours),
		Days:       make([]DayColumn, 0, 7),
	}

	for i, d := range days {
		iso := ToISODate(d)
		layout := LayoutDay(byDay[iso])

		col := DayColumn{
			Date:       iso,
			Name:       DayNames[i],
			Label:      formatDayMonth(d),
			TrackCount: layout.TrackCount,
			Skipped:    layout.Skipped,
			Blocks:     make([]Block, 0, len(layout.Placed)),
		}
		for _, p := range layout.Placed {
			col.Blocks = append(col.Blocks, buildBlock(p, layout.TrackCount, geo))
		}
		view.Days = append(view.Days, col)
	}
	return view
}

func buildBlock(p Placed, trackCount int, geo Geometry) Block {
	top := geo.PositionPct(p.Start)
	bottom := geo.PositionPct(p.End)
	height := bottom - top
	if height < 0.6 {
		height = 0.6 // keep zero-ish spans clickable
	}

	left, width := trackSpan(p.Track, trackCount)
	dur := p.End - p.Start

	return Block{
		Einsatz:    p.Einsatz,
		Track:      p.Track,
		TopPct:     top,
		HeightPct:  height,
		LeftPct:    left,
		WidthPct:   width,
		Metrics:    MetricsFor(dur),
		TimeRange:  p.Einsatz.Start + "–" + p.Einsatz.End,
		DurationMn: dur,
	}
}

// trackSpan splits the day column horizontally into trackCount lanes.
func trackSpan(track, trackCount int) (leftPct, widthPct float64) {
	if trackCount <= 1 {
		return 0, 100
	}
	return float64(track) / float64(trackCount) * 100, 1 / float64(trackCount) * 100
}
