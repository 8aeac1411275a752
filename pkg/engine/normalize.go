// Package engine is the tabular query core: schema probing, key
// normalization, date resolution, row filtering, aggregation, and field
// projection over a loaded spreadsheet table.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText stringifies and trims a cell value. Blank and nil map to "".
// Numeric cells render in canonical decimal form (integers without a
// fractional part).
func NormalizeText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// FoldKey canonicalizes free text for comparison: trim, lowercase, strip
// diacritics (e.g. "Nezahualcóyotl" -> "nezahualcoyotl").
func FoldKey(v any) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(NormalizeText(v)))
	return result
}

// FoldRegionName is FoldKey plus dropping a leading numeric zone code, so
// a cell or criterion written as "5 Chalco" compares equal to "Chalco".
func FoldRegionName(v any) string {
	s := FoldKey(v)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && s[i] == ' ' {
		return strings.TrimSpace(s[i:])
	}
	return s
}

// NormalizeNumericID canonicalizes a stringified numeric identifier: trim
// plus stripping the trailing ".0" artifact of numeric-typed cells holding
// integer codes.
func NormalizeNumericID(v any) string {
	return strings.TrimSuffix(NormalizeText(v), ".0")
}

// NormalizeRegionCode is NormalizeNumericID plus leading-zero stripping, the
// form used when matching a region code criterion against a cell.
func NormalizeRegionCode(v any) string {
	s := NormalizeNumericID(v)
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
