package engine

import (
	"errors"
	"testing"

	"github.com/Val0905/INEA/pkg/table"
)

func certTable(rows ...table.Row) *table.Table {
	return &table.Table{
		Columns: []string{"iCveCZ", "cNombreCZ", "cEstatus", "fElaboracion", "fEmisionCertificado", "fEntregaCertificado"},
		Rows:    rows,
	}
}

func TestAggregateStatus(t *testing.T) {
	spec := testCertSpec()
	tbl := certTable(
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "EMITIDO", "fElaboracion": float64(44531), "fEmisionCertificado": "", "fEntregaCertificado": ""},
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "entregado", "fElaboracion": float64(44531), "fEmisionCertificado": "10/02/2022", "fEntregaCertificado": "11/02/2022"},
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "CANCELADO", "fElaboracion": "", "fEmisionCertificado": "", "fEntregaCertificado": ""},
		// Unrecognized status: counted in the total, in no tri-bucket.
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "EN TRAMITE", "fElaboracion": "", "fEmisionCertificado": "", "fEntregaCertificado": ""},
		// Blank status: the row contributes to nothing.
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "", "fElaboracion": float64(44531), "fEmisionCertificado": "", "fEntregaCertificado": ""},
		// Other region: excluded by the criteria.
		table.Row{"iCveCZ": "2", "cNombreCZ": "BANI", "cEstatus": "EMITIDO", "fElaboracion": "", "fEmisionCertificado": "", "fEntregaCertificado": ""},
		// Pre-floor year: dropped from the buckets, row still counted.
		table.Row{"iCveCZ": "1", "cNombreCZ": "AZUA", "cEstatus": "EMITIDO", "fElaboracion": float64(42370), "fEmisionCertificado": "", "fEntregaCertificado": ""},
	)
	schema := Probe(tbl, spec)

	stats, err := AggregateStatus(tbl, schema, spec, Criteria{RegionCode: "1"})
	if err != nil {
		t.Fatalf("AggregateStatus: %v", err)
	}

	if stats.Issued != 2 || stats.Delivered != 1 || stats.Cancelled != 1 {
		t.Errorf("tri-counts = %d/%d/%d, want 2/1/1", stats.Issued, stats.Delivered, stats.Cancelled)
	}
	if stats.TotalMatched != 5 {
		t.Errorf("TotalMatched = %d, want 5 (blank status excluded)", stats.TotalMatched)
	}

	if yc := stats.Years[2021]; yc.Elaboration != 2 {
		t.Errorf("2021 elaboration = %d, want 2", yc.Elaboration)
	}
	if yc := stats.Years[2022]; yc.Issue != 1 || yc.Delivery != 1 {
		t.Errorf("2022 issue/delivery = %d/%d, want 1/1", yc.Issue, yc.Delivery)
	}
	if _, ok := stats.Years[2016]; ok {
		t.Error("years below the floor must not appear in the buckets")
	}

	// Blank date cells count per field, independently of the other fields.
	if stats.Blank.Elaboration != 2 {
		t.Errorf("blank elaboration = %d, want 2", stats.Blank.Elaboration)
	}
	if stats.Blank.Issue != 4 || stats.Blank.Delivery != 4 {
		t.Errorf("blank issue/delivery = %d/%d, want 4/4", stats.Blank.Issue, stats.Blank.Delivery)
	}
}

func TestAggregateStatusRegionLabelWithCode(t *testing.T) {
	spec := testCertSpec()
	tbl := certTable(
		table.Row{"cNombreCZ": "5 Chalco", "cEstatus": "EMITIDO"},
		table.Row{"cNombreCZ": "5 Chalco", "cEstatus": "CANCELADO"},
		table.Row{"cNombreCZ": "6 Ecatepec", "cEstatus": "EMITIDO"},
	)
	schema := Probe(tbl, spec)

	stats, err := AggregateStatus(tbl, schema, spec, Criteria{RegionName: "Chalco"})
	if err != nil {
		t.Fatalf("AggregateStatus: %v", err)
	}
	if stats.Issued != 1 || stats.Delivered != 0 || stats.Cancelled != 1 {
		t.Errorf("tri-counts = %d/%d/%d, want 1/0/1", stats.Issued, stats.Delivered, stats.Cancelled)
	}
	if stats.TotalMatched != 2 {
		t.Errorf("TotalMatched = %d, want 2", stats.TotalMatched)
	}
}

func TestAggregateStatusRequiresStatusColumn(t *testing.T) {
	spec := testCertSpec()
	tbl := &table.Table{
		Columns: []string{"iCveCZ"},
		Rows:    []table.Row{{"iCveCZ": "1"}},
	}
	_, err := AggregateStatus(tbl, Probe(tbl, spec), spec, Criteria{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Field != FieldStatus {
		t.Errorf("SchemaError field = %s, want %s", schemaErr.Field, FieldStatus)
	}
}

func TestAggregateActive(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "1", "cDesCZ": "Nezahualcóyotl", "cRFE": "A", "cDesSituacion": "ACTIVO", "cSexo": "M"},
		table.Row{"iCveCZ": "1", "cDesCZ": "NEZAHUALCOYOTL", "cRFE": "B", "cDesSituacion": "Activo", "cSexo": "F"},
		table.Row{"iCveCZ": "1", "cDesCZ": "NEZAHUALCOYOTL", "cRFE": "C", "cDesSituacion": "ACTIVO", "cSexo": ""},
		table.Row{"iCveCZ": "1", "cDesCZ": "NEZAHUALCOYOTL", "cRFE": "D", "cDesSituacion": "BAJA", "cSexo": "M"},
		table.Row{"iCveCZ": "2", "cDesCZ": "TOLUCA", "cRFE": "E", "cDesSituacion": "ACTIVO", "cSexo": "F"},
	)
	schema := Probe(tbl, spec)

	stats := AggregateActive(tbl, schema, spec, "nezahualcóyotl")
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.MatchedRegion != 4 {
		t.Errorf("MatchedRegion = %d, want 4", stats.MatchedRegion)
	}
	if stats.Active != 3 {
		t.Errorf("Active = %d, want 3", stats.Active)
	}
	if stats.Male != 1 || stats.Female != 1 {
		t.Errorf("Male/Female = %d/%d, want 1/1 (blank sex in neither bucket)", stats.Male, stats.Female)
	}
}

func TestAggregateActiveEmptyRegion(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "A", "cDesSituacion": "ACTIVO", "cSexo": "M"},
	)
	stats := AggregateActive(tbl, Probe(tbl, spec), spec, "")
	if stats.Total != 1 || stats.MatchedRegion != 0 || stats.Active != 0 {
		t.Errorf("empty region: got %+v, want only Total set", stats)
	}
}

func TestExportRowSet(t *testing.T) {
	spec := testRosterSpec()
	tbl := rosterTable(
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "A", "cDesSituacion": "ACTIVO", "cSexo": "M"},
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "B", "cDesSituacion": "ACTIVO", "cSexo": "F"},
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "C", "cDesSituacion": "ACTIVO", "cSexo": ""},
		table.Row{"iCveCZ": "1", "cDesCZ": "AZUA", "cRFE": "D", "cDesSituacion": "BAJA", "cSexo": "M"},
	)
	schema := Probe(tbl, spec)

	rows := ExportRowSet(tbl, schema, spec, "azua")
	if len(rows) != 2 {
		t.Fatalf("export rows = %d, want 2 (active with sex M or F)", len(rows))
	}

	if got := ExportRowSet(tbl, schema, spec, ""); got != nil {
		t.Errorf("empty region export = %v, want nil", got)
	}
}
