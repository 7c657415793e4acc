// Package period turns relative period selectors ("last 3 months") into the
// absolute lower bound used to filter feedback.
package period

import (
	"strings"
	"time"
)

type Period string

const (
	All         Period = "all"
	YearToDate  Period = "ytd"
	LastYear    Period = "1y"
	LastHalf    Period = "6m"
	LastQuarter Period = "3m"
	LastMonth   Period = "1m"
)

type Option struct {
	Label string `json:"label"`
	Value Period `json:"value"`
}

var monthsBack = map[Period]int{
	LastYear:    12,
	LastHalf:    6,
	LastQuarter: 3,
	LastMonth:   1,
}

// Options lists the selectable periods in display order.
func Options() []Option {
	return []Option{
		{Label: "Tot istoricul", Value: All},
		{Label: "An curent (YTD)", Value: YearToDate},
		{Label: "Ultimul an (1Y)", Value: LastYear},
		{Label: "Ultimele 6 luni", Value: LastHalf},
		{Label: "Ultimele 3 luni", Value: LastQuarter},
		{Label: "Ultima lună", Value: LastMonth},
	}
}

// Parse normalises a raw token. Anything unrecognised is All.
func Parse(raw string) Period {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	if p == YearToDate {
		return p
	}
	if _, ok := monthsBack[p]; ok {
		return p
	}
	return All
}

// ResolveSince returns the inclusive lower bound for p relative to now, in
// UTC. The bool is false when the period has no lower bound.
//
// Month arithmetic keeps the time of day and clamps the day to the last day
// of the target month: 2024-03-31 minus 1m is 2024-02-29, 2024-02-29 minus 1y
// is 2023-02-28.
func ResolveSince(p Period, now time.Time) (time.Time, bool) {
	now = now.UTC()
	if p == YearToDate {
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	months, ok := monthsBack[p]
	if !ok {
		return time.Time{}, false
	}
	return SubtractMonths(now, months), true
}

// SubtractMonths moves t back by n calendar months with day clamping.
func SubtractMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 - n
	year += floorDiv(total, 12)
	target := time.Month(total-floorDiv(total, 12)*12 + 1)
	if last := daysIn(year, target); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(year, target, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// FormatSince renders a bound as RFC3339 UTC, or "" when there is none.
func FormatSince(since time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return since.UTC().Format(time.RFC3339Nano)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
