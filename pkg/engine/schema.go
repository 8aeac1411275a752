package engine

import "github.com/Val0905/INEA/pkg/table"

// Schema maps each logical field to the concrete column name chosen from
// the manifest's ranked alias list. Absent fields have no entry. Derived
// once per table from row 0; never re-derived per row.
type Schema map[Field]string

// Column returns the resolved column for a logical field.
func (s Schema) Column(f Field) (string, bool) {
	col, ok := s[f]
	return col, ok
}

// Has reports whether the field resolved to a column.
func (s Schema) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Probe resolves the manifest's alias lists against the first row of the
// table. For each field, the first alias present as a key of row 0 wins;
// fields with no present alias are left absent. Probing an empty table
// yields an empty schema. Probe itself never fails — required-field
// enforcement belongs to the operation that needs the field.
func Probe(t *table.Table, spec *DatasetSpec) Schema {
	schema := make(Schema, len(spec.Aliases))
	first := t.First()
	if first == nil {
		return schema
	}
	for field, aliases := range spec.Aliases {
		for _, alias := range aliases {
			if _, ok := first[alias]; ok {
				schema[field] = alias
				break
			}
		}
	}
	return schema
}
