package plan

import "testing"

func TestVisualScale(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dur  Minutes
		want float64
	}{
		{dur: 0, want: 0.66},
		{dur: 20, want: 0.66},
		{dur: 240, want: 1.12},
		{dur: 400, want: 1.12},
		{dur: 130, want: 0.89}, // exact midpoint of [20,240]
	}
	for _, tt := range tests {
		if got := VisualScale(tt.dur); !almostEqual(got, tt.want) {
			t.Errorf("VisualScale(%d) = %v, want %v", tt.dur, got, tt.want)
		}
	}
}

func TestDetailLevelBoundaries(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dur  Minutes
		want int
	}{
		{dur: 0, want: 0},
		{dur: 49, want: 0},
		{dur: 50, want: 1},
		{dur: 119, want: 1},
		{dur: 120, want: 2},
		{dur: 199, want: 2},
		{dur: 200, want: 3},
		{dur: 600, want: 3},
	}
	for _, tt := range tests {
		if got := DetailLevel(tt.dur); got != tt.want {
			t.Errorf("DetailLevel(%d) = %d, want %d", tt.dur, got, tt.want)
		}
	}
}

func TestMetricsForClamped(t *testing.T) {
	t.Parallel()

	small := MetricsFor(20)
	if small.TitleFont < 10 || small.SubFont < 9 || small.PadY < 2 {
		t.Fatalf("small metrics below floor: %+v", small)
	}

	large := MetricsFor(300)
	if large.TitleFont > 16 || large.SubFont > 14 || large.ButtonPx > 26 {
		t.Fatalf("large metrics above ceiling: %+v", large)
	}
	if large.Level != 3 {
		t.Fatalf("large level = %d, want 3", large.Level)
	}
	if small.Scale >= large.Scale {
		t.Fatalf("scale not increasing: %v >= %v", small.Scale, large.Scale)
	}
}
