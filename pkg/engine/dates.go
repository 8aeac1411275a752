package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Spreadsheet serials count days with an offset of 25569 days before the
// Unix epoch, so serial 25569 is 1970-01-01.
const serialEpochOffset = 25569

var (
	serialStringRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dmyRe          = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
)

// Fallback layouts for free-text cells that are neither serials nor
// day-first strings.
var textLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02 Jan 2006",
}

// resolveDate converts a cell value to a calendar date. Resolution order,
// first success wins: numeric serial, numeric-string serial, dd/mm/yyyy or
// dd-mm-yyyy (two-digit years land in 2000-2099), then the generic layout
// list. Never errors; unresolvable cells report ok=false.
func resolveDate(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		if v > 1 {
			return serialToDate(v), true
		}
		return time.Time{}, false
	case string:
		s := NormalizeText(v)
		if s == "" {
			return time.Time{}, false
		}
		if serialStringRe.MatchString(s) {
			n, err := strconv.ParseFloat(s, 64)
			if err == nil && n > 1 {
				return serialToDate(n), true
			}
			return time.Time{}, false
		}
		if m := dmyRe.FindStringSubmatch(s); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				year += 2000
			}
			if month < 1 || month > 12 || day < 1 || day > 31 {
				return time.Time{}, false
			}
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
		for _, layout := range textLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return resolveDate(NormalizeText(cell))
	}
}

func serialToDate(serial float64) time.Time {
	ms := int64(math.Round((serial - serialEpochOffset) * 86400000))
	return time.UnixMilli(ms).UTC()
}

// ResolveYear extracts the calendar year of a cell, if resolvable.
func ResolveYear(cell any) (int, bool) {
	d, ok := resolveDate(cell)
	if !ok {
		return 0, false
	}
	return d.Year(), true
}

// DisplayDate formats a cell as dd/mm/yyyy, or "" when unresolvable.
func DisplayDate(cell any) string {
	d, ok := resolveDate(cell)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day(), int(d.Month()), d.Year())
}
