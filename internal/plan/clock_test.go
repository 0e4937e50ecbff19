package plan

import "testing"

func TestParseClockVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{in: "5", want: "05:00"},
		{in: "7", want: "07:00"},
		{in: "705", want: "07:05"},
		{in: "0705", want: "07:05"},
		{in: "1315", want: "13:15"},
		{in: "7:05", want: "07:05"},
		{in: "07.05", want: "07:05"},
		{in: "07,05", want: "07:05"},
		{in: " 09:30 ", want: "09:30"},
		{in: "23:00", want: "23:00"},
		{in: "05:00", want: "05:00"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			if !ok {
				t.Fatalf("Normalize(%q) failed, want %q", tt.in, tt.want)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClockRejects(t *testing.T) {
	t.Parallel()
	bad := []string{
		"", "   ", "abc", "24:00", "12:60", "4", "04:59", "23:01", "0459",
		"2301", "12345", "7:5", "1:2:3", "-5", "07:0x",
	}
	for _, in := range bad {
		if _, ok := ParseClock(in); ok {
			t.Errorf("ParseClock(%q) succeeded, want failure", in)
		}
	}
}

func TestParseClockWindowBoundaries(t *testing.T) {
	t.Parallel()
	if m, ok := ParseClock("05:00"); !ok || m != WindowStart {
		t.Fatalf("ParseClock(05:00) = %v, %v", m, ok)
	}
	if m, ok := ParseClock("23:00"); !ok || m != WindowEnd {
		t.Fatalf("ParseClock(23:00) = %v, %v", m, ok)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	for m := WindowStart; m <= WindowEnd; m += 15 {
		s := FormatClock(m)
		got, ok := Normalize(s)
		if !ok || got != s {
			t.Fatalf("Normalize(%q) = %q, %v; want identity", s, got, ok)
		}
	}
}

func TestDurationHours(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		start, end string
		want       float64
		ok         bool
	}{
		{name: "ninety minutes", start: "09:00", end: "10:30", want: 1.5, ok: true},
		{name: "quarter hour", start: "08:00", end: "08:15", want: 0.25, ok: true},
		{name: "rounded", start: "08:00", end: "08:20", want: 0.33, ok: true},
		{name: "full window", start: "05:00", end: "23:00", want: 18, ok: true},
		{name: "zero span", start: "10:00", end: "10:00", ok: false},
		{name: "reversed", start: "10:30", end: "09:00", ok: false},
		{name: "bad start", start: "nope", end: "10:00", ok: false},
		{name: "bad end", start: "10:00", end: "25:00", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DurationHours(tt.start, tt.end)
			if ok != tt.ok {
				t.Fatalf("DurationHours(%q,%q) ok = %v, want %v", tt.start, tt.end, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("DurationHours(%q,%q) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestQuarterHours(t *testing.T) {
	t.Parallel()
	got := QuarterHours()
	if len(got) != 73 { // 18h * 4 + inclusive end
		t.Fatalf("len = %d, want 73", len(got))
	}
	if got[0] != "05:00" || got[len(got)-1] != "23:00" {
		t.Fatalf("endpoints = %q, %q", got[0], got[len(got)-1])
	}
}

func TestFormatHours(t *testing.T) {
	t.Parallel()
	if got := FormatHours(40); got != "40,00" {
		t.Fatalf("FormatHours(40) = %q", got)
	}
	if got := FormatHours(1.5); got != "1,50" {
		t.Fatalf("FormatHours(1.5) = %q", got)
	}
	if got := FormatHours(-0.25); got != "-0,25" {
		t.Fatalf("FormatHours(-0.25) = %q", got)
	}
}
