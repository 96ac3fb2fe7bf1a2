package domain

import "time"

// Day truncates t to midnight UTC. All due-date comparisons work on
// whole days so a fiche due "today" fires regardless of scan time.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns d plus the given number of calendar months, with
// the day-of-month clamped to the last day of the target month:
// Jan 31 + 1 month = Feb 28 (Feb 29 in leap years), never Mar 2/3.
// time.AddDate would roll over instead, which is why this exists.
func AddMonths(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Location())
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
