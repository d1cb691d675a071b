// Package schedule decides whether an elevator's maintenance schedule makes
// it due in a given calendar month. All comparisons use UTC calendar months;
// days and times within a month are irrelevant.
package schedule

// Entry is one maintenance schedule entry: a target month plus an optional
// repeat interval. RepeatMonths of 0 or 1 means a one-time entry.
type Entry struct {
	Date         YearMonth
	RepeatMonths int
}

// Matches reports whether this entry makes the target month due.
//
// One-time entries match only their own month. An entry repeating every N
// months matches every Nth month starting at its date. Months before the
// entry's date never match.
func (e Entry) Matches(target YearMonth) bool {
	diff := target.Index() - e.Date.Index()
	if diff < 0 {
		return false
	}
	if e.RepeatMonths <= 1 {
		return diff == 0
	}
	return diff%e.RepeatMonths == 0
}

// Match returns the first entry that makes the target month due, if any.
// An empty entry list never matches.
func Match(entries []Entry, target YearMonth) (Entry, bool) {
	for _, e := range entries {
		if e.Matches(target) {
			return e, true
		}
	}
	return Entry{}, false
}

// IsDue reports whether any entry makes the target month due.
func IsDue(entries []Entry, target YearMonth) bool {
	_, ok := Match(entries, target)
	return ok
}
