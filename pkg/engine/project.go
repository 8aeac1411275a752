package engine

import "github.com/Val0905/INEA/pkg/table"

// ProjectedField is one rendered output field of a matched row.
type ProjectedField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Project renders a matched row through the manifest's display-field specs,
// preserving their order. Composite fields join the normalized code and
// description with ", ", dropping empty halves so no dangling separator
// appears. Date fields go through the display formatter. Absent cells
// render as "", never null.
func Project(row table.Row, spec *DatasetSpec) []ProjectedField {
	out := make([]ProjectedField, 0, len(spec.DisplayFields))
	for _, df := range spec.DisplayFields {
		out = append(out, ProjectedField{Label: df.Label, Value: renderField(row, df)})
	}
	return out
}

func renderField(row table.Row, df DisplayField) string {
	switch df.Kind {
	case "composite":
		code := NormalizeNumericID(row[df.CodeColumn])
		desc := NormalizeNumericID(row[df.DescColumn])
		switch {
		case code == "":
			return desc
		case desc == "":
			return code
		default:
			return code + ", " + desc
		}
	case "date":
		return DisplayDate(row[df.Column])
	default:
		return NormalizeText(row[df.Column])
	}
}
