package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is a logical column of a dataset, resolved to a concrete column
// name by the schema prober.
type Field string

const (
	FieldRegionCode      Field = "region_code"
	FieldRegionName      Field = "region_name"
	FieldTaxID           Field = "tax_id"
	FieldStatus          Field = "status"
	FieldSituation       Field = "situation"
	FieldSex             Field = "sex"
	FieldElaborationDate Field = "elaboration_date"
	FieldIssueDate       Field = "issue_date"
	FieldDeliveryDate    Field = "delivery_date"
)

// Dataset kinds select which aggregation the dataset supports.
const (
	KindCertificates = "certificates" // status tri-counts + year buckets
	KindRoster       = "roster"       // active/sex counts + row export
)

// StatusLiterals are the recognized status cell values, compared after
// trim + uppercase.
type StatusLiterals struct {
	Issued    string `yaml:"issued"`
	Delivered string `yaml:"delivered"`
	Cancelled string `yaml:"cancelled"`
}

// DisplayField describes one projected output field for find-one results.
// Kind "composite" joins a code column and a description column with ", ";
// kind "date" routes the cell through the date resolver.
type DisplayField struct {
	Label      string `yaml:"label"`
	Kind       string `yaml:"kind"` // "", "text", "date", "composite"
	Column     string `yaml:"column"`
	CodeColumn string `yaml:"code_column"`
	DescColumn string `yaml:"desc_column"`
}

// DatasetSpec is the per-dataset manifest: which file it comes from, how to
// locate its logical columns (ranked alias lists, most canonical first),
// and how to present a matched row. Alias tables live here as data so the
// observed naming history of the spreadsheet producers stays testable.
type DatasetSpec struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	FilePrefix    string             `yaml:"file_prefix"`
	Kind          string             `yaml:"kind"`
	KeyPattern    string             `yaml:"key_pattern"`
	ActiveLiteral string             `yaml:"active_literal"`
	Statuses      StatusLiterals     `yaml:"status_literals"`
	Aliases       map[Field][]string `yaml:"aliases"`
	DisplayFields []DisplayField     `yaml:"display_fields"`

	keyRe *regexp.Regexp
}

// LoadSpec reads and validates a dataset manifest.
func LoadSpec(path string) (*DatasetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var s DatasetSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &s, nil
}

// LoadSpecs loads every *.yaml manifest in dir, keyed by dataset ID.
func LoadSpecs(dir string) (map[string]*DatasetSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read datasets dir %s: %w", dir, err)
	}
	specs := make(map[string]*DatasetSpec)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		s, err := LoadSpec(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := specs[s.ID]; dup {
			return nil, fmt.Errorf("duplicate dataset id %q", s.ID)
		}
		specs[s.ID] = s
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no dataset manifests in %s", dir)
	}
	return specs, nil
}

func (s *DatasetSpec) validate() error {
	if s.ID == "" {
		return fmt.Errorf("missing id")
	}
	switch s.Kind {
	case KindCertificates:
		if len(s.Aliases[FieldStatus]) == 0 {
			return fmt.Errorf("kind %s requires status aliases", s.Kind)
		}
		if s.Statuses.Issued == "" || s.Statuses.Delivered == "" || s.Statuses.Cancelled == "" {
			return fmt.Errorf("kind %s requires the three status literals", s.Kind)
		}
	case KindRoster:
		if len(s.Aliases[FieldSituation]) == 0 || len(s.Aliases[FieldSex]) == 0 {
			return fmt.Errorf("kind %s requires situation and sex aliases", s.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if s.ActiveLiteral == "" {
		s.ActiveLiteral = "ACTIVO"
	}
	if s.KeyPattern != "" {
		re, err := regexp.Compile(s.KeyPattern)
		if err != nil {
			return fmt.Errorf("key_pattern: %w", err)
		}
		s.keyRe = re
	}
	for i, df := range s.DisplayFields {
		switch df.Kind {
		case "", "text", "date":
			if df.Column == "" {
				return fmt.Errorf("display field %d (%s): missing column", i, df.Label)
			}
		case "composite":
			if df.CodeColumn == "" && df.DescColumn == "" {
				return fmt.Errorf("display field %d (%s): composite needs code_column or desc_column", i, df.Label)
			}
		default:
			return fmt.Errorf("display field %d (%s): unknown kind %q", i, df.Label, df.Kind)
		}
	}
	return nil
}

// ValidKey reports whether a lookup key matches the manifest's key pattern.
// A manifest without a pattern accepts any non-empty key.
func (s *DatasetSpec) ValidKey(key string) bool {
	if key == "" {
		return false
	}
	if s.keyRe == nil {
		return true
	}
	return s.keyRe.MatchString(key)
}

// FieldNames returns the logical fields declared by this manifest in a
// stable order.
func (s *DatasetSpec) FieldNames() []Field {
	out := make([]Field, 0, len(s.Aliases))
	for f := range s.Aliases {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
