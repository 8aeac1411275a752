package engine

import (
	"iter"
	"slices"
	"strings"

	"github.com/Val0905/INEA/pkg/table"
)

// Criteria is a row predicate. Zero values disable a criterion. A criterion
// whose column is absent from the schema is ignored rather than failing the
// query, with one exception: a key lookup (TaxID) or an ActiveOnly scan
// against a table without the backing column matches nothing, since no row
// can satisfy it.
type Criteria struct {
	RegionCode string
	RegionName string
	// NameExact requires the region-name cell to equal the criterion;
	// by default a blank cell passes, matching how lookups behave when a
	// region export omits the name on some rows.
	NameExact  bool
	TaxID      string
	ActiveOnly bool
	Sexes      []string
}

type matcher struct {
	schema Schema
	spec   *DatasetSpec

	wantCode  string
	wantName  string
	nameExact bool
	wantTax   string
	active    bool
	sexes     []string
}

func newMatcher(schema Schema, spec *DatasetSpec, crit Criteria) *matcher {
	m := &matcher{
		schema:    schema,
		spec:      spec,
		wantCode:  NormalizeRegionCode(crit.RegionCode),
		wantName:  FoldRegionName(crit.RegionName),
		nameExact: crit.NameExact,
		wantTax:   strings.ToUpper(NormalizeText(crit.TaxID)),
		active:    crit.ActiveOnly,
	}
	for _, s := range crit.Sexes {
		m.sexes = append(m.sexes, strings.ToUpper(NormalizeText(s)))
	}
	return m
}

func (m *matcher) match(row table.Row) bool {
	if m.wantCode != "" {
		if col, ok := m.schema.Column(FieldRegionCode); ok {
			if NormalizeRegionCode(row[col]) != m.wantCode {
				return false
			}
		}
	}
	if m.wantName != "" {
		col, ok := m.schema.Column(FieldRegionName)
		switch {
		case !ok:
			if m.nameExact {
				return false
			}
		case m.nameExact:
			if FoldRegionName(row[col]) != m.wantName {
				return false
			}
		default:
			// A blank region-name cell does not disqualify the row.
			if name := FoldRegionName(row[col]); name != "" && name != m.wantName {
				return false
			}
		}
	}
	if m.wantTax != "" {
		col, ok := m.schema.Column(FieldTaxID)
		if !ok {
			return false
		}
		if strings.ToUpper(NormalizeText(row[col])) != m.wantTax {
			return false
		}
	}
	if m.active {
		col, ok := m.schema.Column(FieldSituation)
		if !ok {
			return false
		}
		if !strings.EqualFold(NormalizeText(row[col]), m.spec.ActiveLiteral) {
			return false
		}
	}
	if len(m.sexes) > 0 {
		col, ok := m.schema.Column(FieldSex)
		if !ok {
			return false
		}
		if !slices.Contains(m.sexes, strings.ToUpper(NormalizeText(row[col]))) {
			return false
		}
	}
	return true
}

// Filter yields the rows matching the criteria, lazily, in table order.
// Ranging again restarts the scan.
func Filter(t *table.Table, schema Schema, spec *DatasetSpec, crit Criteria) iter.Seq[table.Row] {
	m := newMatcher(schema, spec, crit)
	return func(yield func(table.Row) bool) {
		for _, row := range t.Rows {
			if !m.match(row) {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// FindOne returns the first row in table order satisfying the criteria.
// When duplicates exist the earlier row wins; uniqueness is the source
// data's responsibility.
func FindOne(t *table.Table, schema Schema, spec *DatasetSpec, crit Criteria) (table.Row, bool) {
	for row := range Filter(t, schema, spec, crit) {
		return row, true
	}
	return nil, false
}
