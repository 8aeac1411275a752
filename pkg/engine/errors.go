package engine

import "fmt"

// LoadError wraps a failure to fetch or parse the raw spreadsheet bytes.
// Fatal for the current query only: the cache stays unset and a later query
// re-attempts the load.
type LoadError struct {
	Dataset string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Dataset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError reports that a required logical column could not be resolved
// from the header row. Aggregation queries need the column; find queries
// proceed with a partial schema instead.
type SchemaError struct {
	Dataset string
	Field   Field
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: missing %s column", e.Dataset, e.Field)
}
