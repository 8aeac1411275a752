package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX parses the first sheet of an xlsx workbook. The first row is
// the header; header cells are trimmed and empty header columns are skipped.
// Data cells shorter than the header default to blank, so every row carries
// the full column set.
func DecodeXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	header := rows[0]
	var cols []string
	idx := make([]int, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		cols = append(cols, h)
		idx = append(idx, i)
	}

	t := &Table{Columns: cols, Rows: make([]Row, 0, len(rows)-1)}
	for _, raw := range rows[1:] {
		row := make(Row, len(cols))
		for j, col := range cols {
			v := ""
			if idx[j] < len(raw) {
				v = raw[idx[j]]
			}
			row[col] = cellValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// cellValue converts a raw cell string to its typed form. Numeric cells come
// back from the codec as their canonical decimal text; only strings that
// round-trip through float64 unchanged become numbers, so identifiers with
// leading zeros stay textual.
func cellValue(s string) any {
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != s {
		return s
	}
	return f
}
