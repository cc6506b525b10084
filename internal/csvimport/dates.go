package csvimport

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/width"

	"kakeibo/internal/core"
)

var ErrDateUnparseable = errors.New("date unparseable")

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const monthPattern = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

var (
	isoDateRe     = regexp.MustCompile(`(?:^|\D)(\d{4})\s*[-/.年]\s*(\d{1,2})\s*[-/.月]\s*(\d{1,2})(?:\D|$)`)
	compactDateRe = regexp.MustCompile(`(?:^|\D)(\d{4})(\d{2})(\d{2})(?:\D|$)`)
	textMDYRe     = regexp.MustCompile(`(?i)\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{2,4})\b`)
	textDMYRe     = regexp.MustCompile(`(?i)\b(\d{1,2})[\s\-/.]+` + monthPattern + `[\s\-/.,]+(\d{2,4})\b`)
	numericDateRe = regexp.MustCompile(`(?:^|\D)(\d{1,2})[-/.](\d{1,2})[-/.](\d{2,4})(?:\D|$)`)

	// Dates without a year.
	japaneseMDRe = regexp.MustCompile(`(?:^|\D)(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	numericMDRe  = regexp.MustCompile(`(?:^|[^\d/.\-])(\d{1,2})[-/.](\d{1,2})(?:[^\d/.\-]|$)`)
)

// ParseDate is ParseDateAt relative to the current time.
func ParseDate(s string) (time.Time, error) {
	return ParseDateAt(s, time.Now())
}

// ParseDateAt extracts the most plausible calendar date from s. It accepts
// ISO and Japanese notations, compact YYYYMMDD, English month names in
// either order and numeric month-first dates, ignoring surrounding text.
// Two-digit years below 69 are read as 20xx. A date without a year, such
// as "3/5" or "3月5日", takes the year of ref. Years outside
// core.MinYear..core.MaxYear are rejected.
func ParseDateAt(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" {
		return time.Time{}, ErrDateUnparseable
	}

	for _, m := range isoDateRe.FindAllStringSubmatch(s, -1) {
		if t, ok := civil(m[1], m[2], m[3]); ok {
			return t, nil
		}
	}
	for _, m := range compactDateRe.FindAllStringSubmatch(s, -1) {
		if t, ok := civil(m[1], m[2], m[3]); ok {
			return t, nil
		}
	}
	for _, m := range textMDYRe.FindAllStringSubmatch(s, -1) {
		if t, ok := civilMonth(m[3], m[1], m[2]); ok {
			return t, nil
		}
	}
	for _, m := range textDMYRe.FindAllStringSubmatch(s, -1) {
		if t, ok := civilMonth(m[3], m[2], m[1]); ok {
			return t, nil
		}
	}
	for _, m := range numericDateRe.FindAllStringSubmatch(s, -1) {
		first, _ := strconv.Atoi(m[1])
		month, day := m[1], m[2]
		if first > 12 {
			month, day = m[2], m[1]
		}
		if t, ok := civil(m[3], month, day); ok {
			return t, nil
		}
	}

	year := strconv.Itoa(ref.Year())
	for _, m := range japaneseMDRe.FindAllStringSubmatch(s, -1) {
		if t, ok := civil(year, m[1], m[2]); ok {
			return t, nil
		}
	}
	for _, m := range numericMDRe.FindAllStringSubmatch(s, -1) {
		first, _ := strconv.Atoi(m[1])
		month, day := m[1], m[2]
		if first > 12 {
			month, day = m[2], m[1]
		}
		if t, ok := civil(year, month, day); ok {
			return t, nil
		}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, ErrDateUnparseable
	}
	d, ok := settle(t, ref)
	if !ok {
		return time.Time{}, ErrDateUnparseable
	}
	return d, nil
}

// settle runs a fallback parse through the same checks as the patterns
// above. A result with year 0 had no year in its input and takes ref's.
func settle(t, ref time.Time) (time.Time, bool) {
	year := t.Year()
	if year == 0 {
		year = ref.Year()
	}
	return civil(strconv.Itoa(year), strconv.Itoa(int(t.Month())), strconv.Itoa(t.Day()))
}

func civilMonth(year, monthName, day string) (time.Time, bool) {
	m, ok := monthNames[strings.ToLower(monthName[:3])]
	if !ok {
		return time.Time{}, false
	}
	return civil(year, strconv.Itoa(int(m)), day)
}

func civil(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	if len(year) <= 2 {
		if y < 69 {
			y += 2000
		} else {
			y += 1900
		}
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	if y < core.MinYear || y > core.MaxYear || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March.
	if t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
