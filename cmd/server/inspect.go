package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Val0905/INEA/pkg/engine"
)

// cmdInspect probes an xlsx file against a dataset manifest and prints the
// resolved schema. Useful when a new spreadsheet revision renames columns.
func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	manifest := fs.String("manifest", "", "path to the dataset manifest (yaml)")
	fs.Parse(args)

	if *manifest == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inea inspect --manifest <dataset.yaml> <file.xlsx>")
		os.Exit(1)
	}

	spec, err := engine.LoadSpec(*manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	tbl, schema, err := engine.InspectBytes(spec, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("dataset: %s (%s)\n", spec.ID, spec.Kind)
	fmt.Printf("rows:    %d\n", tbl.Len())
	fmt.Printf("columns: %d\n", len(tbl.Columns))
	fmt.Println("resolved schema:")
	for _, field := range spec.FieldNames() {
		if col, ok := schema.Column(field); ok {
			fmt.Printf("  %-18s -> %q\n", field, col)
		} else {
			fmt.Printf("  %-18s -> (absent)\n", field)
		}
	}
}
