package calendar

import (
	"math"
	"testing"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		in                  TimeLength
		days, months, years uint32
	}{
		{0, 0, 0, 0},
		{29, 29, 0, 0},
		{30, 0, 1, 0},
		{359, 29, 11, 0},
		{360, 0, 0, 1},
		{FromYears(32) + FromMonths(3) + 4, 4, 3, 32},
	}
	for _, tt := range tests {
		d, m, y := tt.in.Decompose()
		if d != tt.days || m != tt.months || y != tt.years {
			t.Errorf("Decompose(%d) = (%d,%d,%d), want (%d,%d,%d)",
				tt.in, d, m, y, tt.days, tt.months, tt.years)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   TimeLength
		want string
	}{
		{0, "0 days"},
		{5, "5 days"},
		{30, "1 months 0 days"},
		{365, "1 years 5 days"},
		{FromYears(2) + FromMonths(11) + 29, "2 years 11 months 29 days"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("TimeLength(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, v := range []TimeLength{0, 1, 29, 30, 31, 359, 360, 361, 11_529, math.MaxUint32} {
		got, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("Parse(%q) = %d, want %d", v.String(), got, v)
		}
	}
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeLength
		wantErr bool
	}{
		{"42", 42, false},
		{"1 year 1 month 1 day", 391, false},
		{"3 Months", 90, false},
		{"", 0, true},
		{"3 fortnights", 0, true},
		{"3 years 2", 0, true},
		{"-1", 0, true},
		{"99999999 years", 0, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAddSaturates(t *testing.T) {
	v := TimeLength(math.MaxUint32 - 1)
	v.AddDays(5)
	if v != math.MaxUint32 {
		t.Errorf("AddDays overflow = %d, want saturation", v)
	}

	var w TimeLength
	w.AddYears(1)
	w.AddMonths(2)
	w.AddDays(3)
	if w.DaysPassed() != 360+60+3 {
		t.Errorf("DaysPassed = %d, want %d", w.DaysPassed(), 423)
	}
	if w.MonthsPassed() != 14 || w.YearsPassed() != 1 {
		t.Errorf("MonthsPassed/YearsPassed = %d/%d, want 14/1", w.MonthsPassed(), w.YearsPassed())
	}
}

func TestTextMarshal(t *testing.T) {
	v := FromYears(1) + 2
	text, err := v.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back TimeLength
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != v {
		t.Errorf("text round trip = %d, want %d", back, v)
	}
}
