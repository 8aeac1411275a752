package engine

import (
	"testing"

	"github.com/Val0905/INEA/pkg/table"
)

func TestProject(t *testing.T) {
	spec := &DatasetSpec{
		ID:       "sigasti",
		Kind:     KindCertificates,
		Statuses: StatusLiterals{Issued: "EMITIDO", Delivered: "ENTREGADO", Cancelled: "CANCELADO"},
		Aliases:  map[Field][]string{FieldStatus: {"cEstatus"}},
		DisplayFields: []DisplayField{
			{Label: "Nombre", Column: "cNombre"},
			{Label: "Coordinación", Kind: "composite", CodeColumn: "iCveCZ", DescColumn: "cNombreCZ"},
			{Label: "Fecha Conclusión", Kind: "date", Column: "fConclusion"},
			{Label: "Nivel", Column: "cNivel"},
		},
	}
	if err := spec.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	row := table.Row{
		"cNombre":     "  MARÍA  ",
		"iCveCZ":      float64(7),
		"cNombreCZ":   "AZUA",
		"fConclusion": float64(44531),
		// cNivel absent from the row entirely
	}

	got := Project(row, spec)
	want := []ProjectedField{
		{Label: "Nombre", Value: "MARÍA"},
		{Label: "Coordinación", Value: "7, AZUA"},
		{Label: "Fecha Conclusión", Value: "01/12/2021"},
		{Label: "Nivel", Value: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("projected %d fields, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestProjectCompositeDropsEmptyHalves(t *testing.T) {
	df := DisplayField{Kind: "composite", CodeColumn: "cve", DescColumn: "des"}

	tests := []struct {
		row  table.Row
		want string
	}{
		{table.Row{"cve": "12.0", "des": "TOLUCA"}, "12, TOLUCA"},
		{table.Row{"cve": "", "des": "TOLUCA"}, "TOLUCA"},
		{table.Row{"cve": float64(12), "des": ""}, "12"},
		{table.Row{"cve": "", "des": ""}, ""},
	}
	for _, tt := range tests {
		got := renderField(tt.row, df)
		if got != tt.want {
			t.Errorf("composite of %v = %q, want %q", tt.row, got, tt.want)
		}
	}
}
