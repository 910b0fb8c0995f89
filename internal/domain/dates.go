package domain

import (
	"regexp"
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// InsertDate adds date to a strictly ascending slice. The second return value is
// false when the date was already present and the slice is returned untouched.
func InsertDate(dates []string, date string) ([]string, bool) {
	idx := sort.SearchStrings(dates, date)
	if idx < len(dates) && dates[idx] == date {
		return dates, false
	}
	out := make([]string, 0, len(dates)+1)
	out = append(out, dates[:idx]...)
	out = append(out, date)
	out = append(out, dates[idx:]...)
	return out, true
}

// RemoveDate drops date from a sorted slice if present.
func RemoveDate(dates []string, date string) ([]string, bool) {
	idx := sort.SearchStrings(dates, date)
	if idx >= len(dates) || dates[idx] != date {
		return dates, false
	}
	out := make([]string, 0, len(dates)-1)
	out = append(out, dates[:idx]...)
	return append(out, dates[idx+1:]...), true
}

// NormalizeDates sorts and deduplicates, skipping anything that is not a valid date.
func NormalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if !IsValidDate(d) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func IsStrictlyAscending(dates []string) bool {
	for i := 1; i < len(dates); i++ {
		if dates[i-1] >= dates[i] {
			return false
		}
	}
	return true
}
