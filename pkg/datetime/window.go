// Package datetime provides date and eligibility window utility functions.
package datetime

import (
	"fmt"
	"strconv"
	"time"

	"github.com/planwise/retirecast/pkg/constants"
)

// DateLayout is the format expected for start/stop dates in profiles.
const DateLayout = constants.DateLayout

// MidYear returns the July 1 anchor date for a year in DateLayout form.
// Anchoring comparisons mid-year avoids off-by-one classification of dates
// that are not aligned to January 1.
func MidYear(year int) string {
	return fmt.Sprintf("%04d-07-01", year)
}

// ActiveInYear reports whether a dated cash flow applies to the given year.
// Bounds are ISO date strings compared lexicographically against the mid-year
// anchor; an empty bound is unbounded on that side.
func ActiveInYear(year int, start, stop string) bool {
	mid := MidYear(year)
	if start != "" && start > mid {
		return false
	}
	if stop != "" && stop < mid {
		return false
	}
	return true
}

// RecursInYear reports whether a periodic flow with the given frequency in
// years occurs in the given year. The phase anchors on the year component of
// start; an absent start anchors at year zero, i.e. always in phase.
func RecursInYear(year, frequencyYears int, start string) bool {
	if frequencyYears <= constants.DefaultExpenseFrequency {
		return true
	}
	return (year-Year(start))%frequencyYears == 0
}

// Year extracts the year component from an ISO date string, or 0 when the
// string is absent or malformed.
func Year(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}
