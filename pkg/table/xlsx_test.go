package table

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"iCveCZ", "cDesCZ", " cRFE ", "", "iNum"},
		{7, "AZUA", "AAA800101XXX", "ignored", 12.5},
		{8, "BANI"},
	})

	tbl, err := DecodeXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeXLSX: %v", err)
	}

	// Header cells are trimmed, empty header columns dropped.
	wantCols := []string{"iCveCZ", "cDesCZ", "cRFE", "iNum"}
	if len(tbl.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", tbl.Columns, wantCols)
	}
	for i, c := range wantCols {
		if tbl.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, tbl.Columns[i], c)
		}
	}

	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}

	first := tbl.First()
	if v, ok := first["iCveCZ"].(float64); !ok || v != 7 {
		t.Errorf("numeric cell = %v (%T), want float64 7", first["iCveCZ"], first["iCveCZ"])
	}
	if first["cDesCZ"] != "AZUA" {
		t.Errorf("text cell = %v", first["cDesCZ"])
	}
	if v, ok := first["iNum"].(float64); !ok || v != 12.5 {
		t.Errorf("fractional cell = %v (%T), want float64 12.5", first["iNum"], first["iNum"])
	}

	// Short rows pad with blank cells for the full column set.
	second := tbl.Rows[1]
	if second["cRFE"] != "" || second["iNum"] != "" {
		t.Errorf("short row not padded: %v", second)
	}
}

func TestDecodeXLSXEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := DecodeXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeXLSX: %v", err)
	}
	if tbl.Len() != 0 || len(tbl.Columns) != 0 {
		t.Errorf("empty workbook decoded to %+v", tbl)
	}
}

func TestCellValueKeepsLeadingZeros(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"007", "007"},   // does not round-trip as a float
		{"7", float64(7)},
		{"7.50", "7.50"}, // trailing zero would be lost
		{"7.5", float64(7.5)},
		{"", ""},
		{"AZUA", "AZUA"},
	}
	for _, tt := range tests {
		got := cellValue(tt.input)
		if got != tt.want {
			t.Errorf("cellValue(%q) = %v (%T), want %v", tt.input, got, got, tt.want)
		}
	}
}
