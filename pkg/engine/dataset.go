package engine

import (
	"bytes"
	"fmt"

	"github.com/Val0905/INEA/pkg/table"
)

// Dataset is one loaded spreadsheet: its manifest, the parsed table, and
// the schema probed once from the table's first row.
type Dataset struct {
	Spec   *DatasetSpec
	Table  *table.Table
	Schema Schema
}

// LoadDataset decodes the raw workbook bytes and probes the schema.
func LoadDataset(spec *DatasetSpec, data []byte) (*Dataset, error) {
	t, err := table.DecodeXLSX(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", spec.ID, err)
	}
	return &Dataset{Spec: spec, Table: t, Schema: Probe(t, spec)}, nil
}
