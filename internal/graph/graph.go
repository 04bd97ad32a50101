// Package graph builds a foreign-key dependency graph over the tables of a
// source database and computes deterministic parent-before-child load orders.
package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dbsmedya/gostage/internal/catalog"
)

// TableRef identifies a table by schema and name. It is the node identity
// of the dependency graph.
type TableRef struct {
	Schema string
	Table  string
}

// String returns the qualified "schema.table" form.
func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

// ParseTableRef splits a qualified "schema.table" name. Names without a dot
// yield an empty schema; resolution of bare names is Graph.Resolve's job.
func ParseTableRef(name string) TableRef {
	if i := strings.Index(name, "."); i >= 0 {
		return TableRef{Schema: name[:i], Table: name[i+1:]}
	}
	return TableRef{Table: name}
}

// defaultExcludedSchemas are never scanned unless explicitly included.
var defaultExcludedSchemas = []string{
	"information_schema",
	"performance_schema",
	"mysql",
	"sys",
}

// Graph holds the foreign-key adjacency of the scanned tables.
// parents maps child -> set of parents; children is its inverse.
// Both maps always cover the same vertex set.
type Graph struct {
	parents  map[TableRef]map[TableRef]struct{}
	children map[TableRef]map[TableRef]struct{}
}

// BuildOptions restricts which schemas are scanned.
type BuildOptions struct {
	// IncludeSchemas, when non-empty, limits the scan to exactly these schemas.
	IncludeSchemas []string
	// ExcludeSchemas replaces the default system-schema exclusions when set.
	ExcludeSchemas []string
}

// Build scans every visible, non-excluded schema of the catalog and records
// one child->parent edge per foreign key. Self-referencing foreign keys are
// dropped silently; they are not dependencies between tables and must never
// count as cycles.
//
// The graph is a snapshot: callers must rebuild it after schema changes.
func Build(ctx context.Context, cat catalog.Catalog, opts BuildOptions) (*Graph, error) {
	g := &Graph{
		parents:  make(map[TableRef]map[TableRef]struct{}),
		children: make(map[TableRef]map[TableRef]struct{}),
	}

	include := make(map[string]bool, len(opts.IncludeSchemas))
	for _, s := range opts.IncludeSchemas {
		include[s] = true
	}

	excluded := opts.ExcludeSchemas
	if len(excluded) == 0 {
		excluded = defaultExcludedSchemas
	}
	exclude := make(map[string]bool, len(excluded))
	for _, s := range excluded {
		exclude[s] = true
	}

	schemas, err := cat.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}

	for _, schema := range schemas {
		if len(include) > 0 && !include[schema] {
			continue
		}
		if exclude[schema] {
			continue
		}

		tables, err := cat.ListTables(ctx, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
		}

		for _, table := range tables {
			child := TableRef{Schema: schema, Table: table}
			g.addVertex(child)

			fks, err := cat.TableForeignKeys(ctx, schema, table)
			if err != nil {
				return nil, fmt.Errorf("failed to read foreign keys of %s: %w", child, err)
			}

			for _, fk := range fks {
				refSchema := fk.RefSchema
				if refSchema == "" {
					refSchema = schema
				}
				parent := TableRef{Schema: refSchema, Table: fk.RefTable}

				if parent == child {
					// self-reference, not a dependency
					continue
				}
				g.addEdge(child, parent)
			}
		}
	}

	return g, nil
}

// addVertex ensures a table is present in both adjacency maps.
func (g *Graph) addVertex(t TableRef) {
	if g.parents[t] == nil {
		g.parents[t] = make(map[TableRef]struct{})
	}
	if g.children[t] == nil {
		g.children[t] = make(map[TableRef]struct{})
	}
}

// addEdge records child -> parent, keeping both maps in sync.
func (g *Graph) addEdge(child, parent TableRef) {
	g.addVertex(child)
	g.addVertex(parent)
	g.parents[child][parent] = struct{}{}
	g.children[parent][child] = struct{}{}
}

// Tables returns every known table in sorted order.
func (g *Graph) Tables() []TableRef {
	tables := make([]TableRef, 0, len(g.parents))
	for t := range g.parents {
		tables = append(tables, t)
	}
	sortRefs(tables)
	return tables
}

// Parents returns the direct parents of a table in sorted order.
func (g *Graph) Parents(t TableRef) []TableRef {
	return sortedSet(g.parents[t])
}

// Children returns the direct children of a table in sorted order.
func (g *Graph) Children(t TableRef) []TableRef {
	return sortedSet(g.children[t])
}

// HasTable reports whether the graph knows the given table.
func (g *Graph) HasTable(t TableRef) bool {
	_, ok := g.parents[t]
	return ok
}

// TableCount returns the number of tables in the graph.
func (g *Graph) TableCount() int {
	return len(g.parents)
}

// EdgeCount returns the number of child->parent edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, ps := range g.parents {
		count += len(ps)
	}
	return count
}

func sortedSet(set map[TableRef]struct{}) []TableRef {
	refs := make([]TableRef, 0, len(set))
	for t := range set {
		refs = append(refs, t)
	}
	sortRefs(refs)
	return refs
}

func sortRefs(refs []TableRef) {
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].String() < refs[j].String()
	})
}
