package engine

import (
	"testing"

	"github.com/Val0905/INEA/pkg/table"
)

// testCertSpec is a certificates manifest with the production alias history.
func testCertSpec() *DatasetSpec {
	s := &DatasetSpec{
		ID:         "sigasti",
		Name:       "SIGASTI Certificados",
		FilePrefix: "SIGASTI",
		Kind:       KindCertificates,
		Statuses:   StatusLiterals{Issued: "EMITIDO", Delivered: "ENTREGADO", Cancelled: "CANCELADO"},
		Aliases: map[Field][]string{
			FieldRegionCode:      {"iCveCZ", "ICveCZ"},
			FieldRegionName:      {"cNombreCZ", "CNombreCZ", "cDesCZ", "CDesCZ"},
			FieldTaxID:           {"cRFE", "CRFE", "RFC"},
			FieldStatus:          {"cEstatusCertificado", "cEstatus", "Estatus"},
			FieldElaborationDate: {"fElaboracion"},
			FieldIssueDate:       {"fEmisionCertificado"},
			FieldDeliveryDate:    {"fEntregaCertificado"},
		},
	}
	if err := s.validate(); err != nil {
		panic(err)
	}
	return s
}

// testRosterSpec is a roster manifest matching the attendance export.
func testRosterSpec() *DatasetSpec {
	s := &DatasetSpec{
		ID:         "atnyseg",
		Name:       "Atención y Seguimiento",
		FilePrefix: "ATNYSEG",
		Kind:       KindRoster,
		KeyPattern: "^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{0,3}$",
		Aliases: map[Field][]string{
			FieldRegionCode: {"iCveCZ", "ICveCZ"},
			FieldRegionName: {"cDesCZ", "CDesCZ"},
			FieldTaxID:      {"cRFE", "CRFE"},
			FieldSituation:  {"cDesSituacion"},
			FieldSex:        {"cSexo"},
		},
	}
	if err := s.validate(); err != nil {
		panic(err)
	}
	return s
}

func rosterTable(rows ...table.Row) *table.Table {
	return &table.Table{
		Columns: []string{"iCveCZ", "cDesCZ", "cRFE", "cDesSituacion", "cSexo"},
		Rows:    rows,
	}
}

func TestProbeFirstAliasWins(t *testing.T) {
	spec := testCertSpec()
	tbl := &table.Table{
		Columns: []string{"iCveCZ", "cDesCZ", "cEstatus", "fElaboracion"},
		Rows: []table.Row{
			{"iCveCZ": float64(7), "cDesCZ": "AZUA", "cEstatus": "EMITIDO", "fElaboracion": float64(44531)},
		},
	}
	schema := Probe(tbl, spec)

	tests := []struct {
		field Field
		want  string
	}{
		{FieldRegionCode, "iCveCZ"},
		{FieldRegionName, "cDesCZ"}, // cNombreCZ absent, falls through to cDesCZ
		{FieldStatus, "cEstatus"},
		{FieldElaborationDate, "fElaboracion"},
	}
	for _, tt := range tests {
		got, ok := schema.Column(tt.field)
		if !ok || got != tt.want {
			t.Errorf("Probe resolved %s = (%q, %v), want %q", tt.field, got, ok, tt.want)
		}
	}

	if schema.Has(FieldTaxID) {
		t.Error("tax_id should be absent: no alias in table")
	}
	if schema.Has(FieldIssueDate) || schema.Has(FieldDeliveryDate) {
		t.Error("issue/delivery dates should be absent")
	}
}

func TestProbeEmptyTable(t *testing.T) {
	schema := Probe(&table.Table{}, testCertSpec())
	if len(schema) != 0 {
		t.Errorf("empty table probed %d fields, want 0", len(schema))
	}
}
