package extractor

import (
	"fmt"

	"github.com/dbsmedya/gostage/internal/catalog"
	"github.com/dbsmedya/gostage/internal/graph"
)

// ResolveColumns computes the effective column set for a table: the user's
// selection, plus every NOT NULL column without a default (the destination
// insert would fail without a value), plus the primary key. The result
// preserves source column order regardless of how the selection was written.
//
// Explicitly selected columns that do not exist on the source are an error;
// a typo must not silently shrink the sync.
func ResolveColumns(table graph.TableRef, cols []catalog.Column, pkColumn string, sel ColumnSelection) ([]string, error) {
	if sel.All() {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}
		return names, nil
	}

	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.Name] = true
	}
	for _, name := range sel.List() {
		if !known[name] {
			return nil, fmt.Errorf("selected column %q does not exist on %s", name, table)
		}
	}

	wanted := make(map[string]bool, len(sel.List()))
	for _, name := range sel.List() {
		wanted[name] = true
	}

	var resolved []string
	for _, c := range cols {
		switch {
		case wanted[c.Name]:
			resolved = append(resolved, c.Name)
		case !c.Nullable && !c.HasDefault():
			resolved = append(resolved, c.Name)
		case c.Name == pkColumn:
			resolved = append(resolved, c.Name)
		}
	}
	return resolved, nil
}
