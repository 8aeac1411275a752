package engine

import (
	"strings"

	"github.com/Val0905/INEA/pkg/table"
)

// YearFloor excludes years before the program's first reporting period from
// year-bucketed aggregation. Out-of-range years are dropped, not errors.
const YearFloor = 2017

// Recognized sex cell values, compared after trim + uppercase.
const (
	SexMale   = "M"
	SexFemale = "F"
)

// YearCounts are per-year counts for the three certificate date fields.
type YearCounts struct {
	Elaboration int `json:"elaboration"`
	Issue       int `json:"issue"`
	Delivery    int `json:"delivery"`
}

// StatusStats is the result of a status aggregation. TotalMatched counts
// every filtered row with a non-blank status, including statuses outside
// the three recognized literals; blank-status rows are excluded entirely.
type StatusStats struct {
	Issued       int                `json:"issued"`
	Delivered    int                `json:"delivered"`
	Cancelled    int                `json:"cancelled"`
	TotalMatched int                `json:"totalMatched"`
	Years        map[int]YearCounts `json:"yearBuckets"`
	Blank        YearCounts         `json:"blankDateCounts"`
}

// AggregateStatus reduces the rows matching the criteria into status
// tri-counts, independent per-field year buckets, and blank-date counts.
// The status column is required; its absence is a SchemaError.
func AggregateStatus(t *table.Table, schema Schema, spec *DatasetSpec, crit Criteria) (*StatusStats, error) {
	statusCol, ok := schema.Column(FieldStatus)
	if !ok {
		return nil, &SchemaError{Dataset: spec.ID, Field: FieldStatus}
	}

	issued := strings.ToUpper(spec.Statuses.Issued)
	delivered := strings.ToUpper(spec.Statuses.Delivered)
	cancelled := strings.ToUpper(spec.Statuses.Cancelled)

	elabCol, hasElab := schema.Column(FieldElaborationDate)
	issueCol, hasIssue := schema.Column(FieldIssueDate)
	delivCol, hasDeliv := schema.Column(FieldDeliveryDate)

	stats := &StatusStats{Years: make(map[int]YearCounts)}
	for row := range Filter(t, schema, spec, crit) {
		status := strings.ToUpper(NormalizeText(row[statusCol]))
		if status == "" {
			// Blank required field: the row is excluded from every count.
			continue
		}
		stats.TotalMatched++
		switch status {
		case issued:
			stats.Issued++
		case delivered:
			stats.Delivered++
		case cancelled:
			stats.Cancelled++
		}

		if hasElab {
			stats.countDate(row[elabCol], func(yc *YearCounts) { yc.Elaboration++ }, &stats.Blank.Elaboration)
		}
		if hasIssue {
			stats.countDate(row[issueCol], func(yc *YearCounts) { yc.Issue++ }, &stats.Blank.Issue)
		}
		if hasDeliv {
			stats.countDate(row[delivCol], func(yc *YearCounts) { yc.Delivery++ }, &stats.Blank.Delivery)
		}
	}
	return stats, nil
}

// countDate resolves one date cell and files it into the right year bucket,
// or into the blank counter when the cell is empty. Each of the three date
// fields contributes independently, so one row can touch up to three
// buckets across different years.
func (s *StatusStats) countDate(cell any, bump func(*YearCounts), blank *int) {
	if NormalizeText(cell) == "" {
		*blank++
		return
	}
	year, ok := ResolveYear(cell)
	if !ok || year < YearFloor {
		return
	}
	yc := s.Years[year]
	bump(&yc)
	s.Years[year] = yc
}

// ActiveStats is the result of a sex/active aggregation over a roster
// dataset.
type ActiveStats struct {
	Total         int `json:"total"`         // all rows in the table
	MatchedRegion int `json:"matchedRegion"` // rows in the queried region, any situation
	Active        int `json:"active"`        // matched rows with the active situation
	Male          int `json:"male"`          // active rows with sex M
	Female        int `json:"female"`        // active rows with sex F
}

// AggregateActive counts the region's rows, its active subset, and the M/F
// split of the active subset. Region matching is a folded-name compare
// tolerant of a leading zone code on either side; rows with a blank or unrecognized sex stay in Active but in
// neither sex bucket. An empty region name yields zero counts with Total
// still set.
func AggregateActive(t *table.Table, schema Schema, spec *DatasetSpec, regionName string) *ActiveStats {
	stats := &ActiveStats{Total: t.Len()}

	want := FoldRegionName(regionName)
	if want == "" {
		return stats
	}
	nameCol, ok := schema.Column(FieldRegionName)
	if !ok {
		return stats
	}
	situCol, hasSitu := schema.Column(FieldSituation)
	sexCol, hasSex := schema.Column(FieldSex)

	for _, row := range t.Rows {
		if FoldRegionName(row[nameCol]) != want {
			continue
		}
		stats.MatchedRegion++

		if !hasSitu || !strings.EqualFold(NormalizeText(row[situCol]), spec.ActiveLiteral) {
			continue
		}
		stats.Active++

		if !hasSex {
			continue
		}
		switch strings.ToUpper(NormalizeText(row[sexCol])) {
		case SexMale:
			stats.Male++
		case SexFemale:
			stats.Female++
		}
	}
	return stats
}

// ExportRowSet returns the rows feeding the spreadsheet export: exact
// region match, active situation, sex M or F.
func ExportRowSet(t *table.Table, schema Schema, spec *DatasetSpec, regionName string) []table.Row {
	if FoldRegionName(regionName) == "" {
		return nil
	}
	var out []table.Row
	for row := range Filter(t, schema, spec, Criteria{
		RegionName: regionName,
		NameExact:  true,
		ActiveOnly: true,
		Sexes:      []string{SexMale, SexFemale},
	}) {
		out = append(out, row)
	}
	return out
}
