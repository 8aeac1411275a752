package engine

import (
	"testing"

	"github.com/Val0905/INEA/pkg/table"
)

func TestFilterRegionCriteria(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "007", "cDesCZ": "Nezahualcóyotl", "cRFE": "AAA800101XXX", "cDesSituacion": "ACTIVO", "cSexo": "M"},
		table.Row{"iCveCZ": float64(7), "cDesCZ": "NEZAHUALCOYOTL", "cRFE": "BBB800101XXX", "cDesSituacion": "BAJA", "cSexo": "F"},
		table.Row{"iCveCZ": "12", "cDesCZ": "Toluca", "cRFE": "CCC800101XXX", "cDesSituacion": "ACTIVO", "cSexo": "F"},
	)
	schema := Probe(tbl, spec)

	tests := []struct {
		name string
		crit Criteria
		want int
	}{
		{"region code, leading zeros and numeric cells agree", Criteria{RegionCode: "7"}, 2},
		{"region code padded input", Criteria{RegionCode: "007"}, 2},
		{"region name folds accents and case", Criteria{RegionName: "nezahualcóyotl", NameExact: true}, 2},
		{"active only", Criteria{ActiveOnly: true}, 2},
		{"region + active", Criteria{RegionCode: "7", ActiveOnly: true}, 1},
		{"sex filter", Criteria{Sexes: []string{"F"}}, 2},
		{"no criteria matches everything", Criteria{}, 3},
	}
	for _, tt := range tests {
		got := 0
		for range Filter(tbl, schema, spec, tt.crit) {
			got++
		}
		if got != tt.want {
			t.Errorf("%s: matched %d rows, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFilterIsRestartable(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "AAA800101XXX", "cDesSituacion": "ACTIVO", "cSexo": "M"},
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "BBB800101XXX", "cDesSituacion": "ACTIVO", "cSexo": "F"},
	)
	schema := Probe(tbl, spec)
	seq := Filter(tbl, schema, spec, Criteria{RegionName: "azua", NameExact: true})

	for pass := 0; pass < 2; pass++ {
		n := 0
		for range seq {
			n++
		}
		if n != 2 {
			t.Fatalf("pass %d: matched %d rows, want 2", pass, n)
		}
	}
}

func TestFilterAbsentColumns(t *testing.T) {
	spec := testRosterSpec()
	// No region columns at all: region criteria must degrade to no-ops,
	// while key and situation criteria match nothing.
	tbl := &table.Table{
		Columns: []string{"nombre"},
		Rows:    []table.Row{{"nombre": "ANA"}, {"nombre": "LUIS"}},
	}
	schema := Probe(tbl, spec)

	tests := []struct {
		name string
		crit Criteria
		want int
	}{
		{"region code ignored when column absent", Criteria{RegionCode: "7"}, 2},
		{"lenient region name ignored when column absent", Criteria{RegionName: "azua"}, 2},
		{"exact region name requires the column", Criteria{RegionName: "azua", NameExact: true}, 0},
		{"tax id requires the column", Criteria{TaxID: "AAA800101XXX"}, 0},
		{"active requires the column", Criteria{ActiveOnly: true}, 0},
		{"sex requires the column", Criteria{Sexes: []string{"M"}}, 0},
	}
	for _, tt := range tests {
		got := 0
		for range Filter(tbl, schema, spec, tt.crit) {
			got++
		}
		if got != tt.want {
			t.Errorf("%s: matched %d rows, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFindOneFirstMatchWins(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "aaa800101xxx", "cDesSituacion": "ACTIVO", "cSexo": "M"},
		table.Row{"iCveCZ": "2", "cDesCZ": "BANI", "cRFE": "BBB800101XXX", "cDesSituacion": "BAJA", "cSexo": "F"},
	)
	schema := Probe(tbl, spec)

	row, ok := FindOne(tbl, schema, spec, Criteria{TaxID: "AAA800101XXX"})
	if !ok {
		t.Fatal("expected a match")
	}
	if row["iCveCZ"] != "1" {
		t.Errorf("FindOne returned row %v, want the first table-order match", row["iCveCZ"])
	}

	// Key compare is case-insensitive on both sides.
	if _, ok := FindOne(tbl, schema, spec, Criteria{TaxID: "aaa800101xxx"}); !ok {
		t.Error("lowercase key input should still match")
	}

	// Lenient region name: a blank region cell would pass, a different one not.
	if _, ok := FindOne(tbl, schema, spec, Criteria{TaxID: "AAA800101XXX", RegionName: "bani"}); ok {
		t.Error("row in a different region should not match")
	}
}
