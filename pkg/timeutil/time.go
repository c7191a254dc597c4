package timeutil

import "time"

// MonthsInYear is the number of calendar months in a year
const MonthsInYear = 12

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// MonthIndex converts a year and a 1-based month into a count of months,
// so month-precision dates can be compared and offset with plain integers
func MonthIndex(year, month int) int {
	return year*MonthsInYear + month
}

// MonthIndexOf returns the MonthIndex of t in UTC
func MonthIndexOf(t time.Time) int {
	year, month, _ := t.UTC().Date()
	return MonthIndex(year, int(month))
}

// StartOfMonth returns the first instant of t's month in UTC
func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the first instant of the month that is n months after t's month
func AddMonths(t time.Time, n int) time.Time {
	return StartOfMonth(t).AddDate(0, n, 0)
}
