// Package calendar provides in-simulation lengths of time.
// The calendar is a fixed 30/360 convention: 12 months of 30 days per year.
package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
	DaysPerYear   = DaysPerMonth * MonthsPerYear
)

// TimeLength tracks a span of time in days.
type TimeLength uint32

// Zero is the empty length of time.
const Zero TimeLength = 0

// FromDays returns a length of the given number of days.
func FromDays(days uint32) TimeLength {
	return TimeLength(days)
}

// FromMonths returns a length of the given number of 30-day months.
func FromMonths(months uint32) TimeLength {
	return Zero.plus(uint64(months) * DaysPerMonth)
}

// FromYears returns a length of the given number of 360-day years.
func FromYears(years uint32) TimeLength {
	return Zero.plus(uint64(years) * DaysPerYear)
}

// DaysPassed returns the total number of days.
func (t TimeLength) DaysPassed() uint32 {
	return uint32(t)
}

// MonthsPassed returns how many whole months have passed.
func (t TimeLength) MonthsPassed() uint32 {
	return uint32(t) / DaysPerMonth
}

// YearsPassed returns how many whole years have passed.
func (t TimeLength) YearsPassed() uint32 {
	return uint32(t) / DaysPerYear
}

// Decompose splits the length into (days, months, years) where days < 30 and
// months < 12.
func (t TimeLength) Decompose() (days, months, years uint32) {
	v := uint32(t)
	years = v / DaysPerYear
	months = (v % DaysPerYear) / DaysPerMonth
	days = v % DaysPerYear % DaysPerMonth
	return days, months, years
}

// AddDays advances the length by the given number of days.
func (t *TimeLength) AddDays(amount uint32) {
	*t = t.plus(uint64(amount))
}

// AddMonths advances the length by the given number of months.
func (t *TimeLength) AddMonths(amount uint32) {
	*t = t.plus(uint64(amount) * DaysPerMonth)
}

// AddYears advances the length by the given number of years.
func (t *TimeLength) AddYears(amount uint32) {
	*t = t.plus(uint64(amount) * DaysPerYear)
}

// plus saturates at the largest representable day count.
func (t TimeLength) plus(days uint64) TimeLength {
	sum := uint64(t) + days
	if sum > math.MaxUint32 {
		return TimeLength(math.MaxUint32)
	}
	return TimeLength(sum)
}

// String renders the length as "Y years M months D days", omitting zero years
// and months.
func (t TimeLength) String() string {
	days, months, years := t.Decompose()

	var b strings.Builder
	if years != 0 {
		fmt.Fprintf(&b, "%d years ", years)
	}
	if months != 0 {
		fmt.Fprintf(&b, "%d months ", months)
	}
	fmt.Fprintf(&b, "%d days", days)
	return b.String()
}

// Parse reads a length written by String. Singular units are accepted, and a
// bare integer is read as a number of days.
func Parse(s string) (TimeLength, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Zero, fmt.Errorf("parse time length: empty string")
	}

	if len(fields) == 1 {
		n, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return Zero, fmt.Errorf("parse time length %q: %w", s, err)
		}
		return TimeLength(n), nil
	}

	if len(fields)%2 != 0 {
		return Zero, fmt.Errorf("parse time length %q: expected value/unit pairs", s)
	}

	var total uint64
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.ParseUint(fields[i], 10, 32)
		if err != nil {
			return Zero, fmt.Errorf("parse time length %q: %w", s, err)
		}
		switch strings.ToLower(fields[i+1]) {
		case "year", "years":
			total += n * DaysPerYear
		case "month", "months":
			total += n * DaysPerMonth
		case "day", "days":
			total += n
		default:
			return Zero, fmt.Errorf("parse time length %q: unknown unit %q", s, fields[i+1])
		}
	}

	if total > math.MaxUint32 {
		return Zero, fmt.Errorf("parse time length %q: out of range", s)
	}
	return TimeLength(total), nil
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeLength) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeLength) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
