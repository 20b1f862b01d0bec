package model

import (
	"fmt"
	"time"
)

// Month is a calendar month identified as "YYYY-MM", the key every
// per-(employee_id, month) output row is keyed on.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month { return Month{Year: year, Month: month} }

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// Index is a monotonically increasing integer, used by the inactivity-gate
// arithmetic in spec.md §4.2 (month_index = year*12 + month).
func (m Month) Index() int { return m.Year*12 + int(m.Month) }

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) Add(n int) Month {
	idx := m.Index() + n
	y := (idx - 1) / 12
	mo := (idx-1)%12 + 1
	return Month{Year: y, Month: time.Month(mo)}
}

func (m Month) Before(o Month) bool { return m.Index() < o.Index() }
func (m Month) After(o Month) bool  { return m.Index() > o.Index() }
func (m Month) Equal(o Month) bool  { return m.Index() == o.Index() }

func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// FYMode controls how financial-quarter/year boundaries are computed.
type FYMode string

const (
	FYApril     FYMode = "FY_APR" // Indian financial year, April–March
	FYCalendar  FYMode = "CAL"    // Calendar year, January–December
)

// IsQuarterEnd reports whether m is the last month of a fiscal quarter
// under the given mode — the only months in which quarterly/annual bonus
// projections are credited (spec.md §4.4 step 10, §4.6 step 12).
func (m Month) IsQuarterEnd(mode FYMode) bool {
	switch mode {
	case FYCalendar:
		switch m.Month {
		case time.March, time.June, time.September, time.December:
			return true
		}
		return false
	default: // FYApril
		switch m.Month {
		case time.June, time.September, time.December, time.March:
			return true
		}
		return false
	}
}

// IsFYEnd reports whether m is the final month of the fiscal year.
func (m Month) IsFYEnd(mode FYMode) bool {
	if mode == FYCalendar {
		return m.Month == time.December
	}
	return m.Month == time.March
}

// FYStart returns the first month of the fiscal year containing m.
func (m Month) FYStart(mode FYMode) Month {
	if mode == FYCalendar {
		return Month{Year: m.Year, Month: time.January}
	}
	if m.Month >= time.April {
		return Month{Year: m.Year, Month: time.April}
	}
	return Month{Year: m.Year - 1, Month: time.April}
}

// QuarterStart returns the first month of the fiscal quarter containing m.
func (m Month) QuarterStart(mode FYMode) Month {
	fyStart := m.FYStart(mode)
	offset := m.Index() - fyStart.Index()
	qOffset := (offset / 3) * 3
	return fyStart.Add(qOffset)
}

// RangeMode selects the scoring window over which raw events are gathered,
// shared across Lumpsum/SIP (spec.md §4.4 step 1, §6.4).
type RangeMode string

const (
	RangeMonth RangeMode = "month"
	RangeLast5 RangeMode = "last5" // last 5 days lookback over current+previous month
	RangeFY    RangeMode = "fy"    // FY start through current month
	RangeSince RangeMode = "since" // from a named month through current
)

// Window is a concrete [Start, End) instant range derived from a RangeMode.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow computes the concrete window for a scoring run.
// since is only consulted when mode == RangeSince.
func ResolveWindow(month Month, mode RangeMode, fyMode FYMode, since *Month) Window {
	switch mode {
	case RangeLast5:
		prevEnd := month.Start()
		start := month.End().AddDate(0, 0, -5)
		if prevStart := prevEnd.AddDate(0, 0, -5); prevStart.Before(start) {
			start = prevStart
		}
		return Window{Start: start, End: month.End()}
	case RangeFY:
		return Window{Start: month.FYStart(fyMode).Start(), End: month.End()}
	case RangeSince:
		if since != nil {
			return Window{Start: since.Start(), End: month.End()}
		}
		return Window{Start: month.Start(), End: month.End()}
	default: // RangeMonth
		return Window{Start: month.Start(), End: month.End()}
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
