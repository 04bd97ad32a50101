package catalog

import (
	"context"
	"fmt"
	"sort"
)

// MemoryTable describes one table held by the in-memory catalog.
type MemoryTable struct {
	Schema      string
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
	PK          string
}

// Memory is an in-process Catalog used in tests and dry runs. Tables are
// registered up front; lookups never touch a database.
type Memory struct {
	tables map[string]map[string]*MemoryTable // schema -> table -> def
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]*MemoryTable)}
}

// AddTable registers a table definition. Re-adding a table replaces it.
func (m *Memory) AddTable(t MemoryTable) {
	if m.tables[t.Schema] == nil {
		m.tables[t.Schema] = make(map[string]*MemoryTable)
	}
	def := t
	m.tables[t.Schema][t.Name] = &def
}

// ListSchemas returns every registered schema in sorted order.
func (m *Memory) ListSchemas(ctx context.Context) ([]string, error) {
	schemas := make([]string, 0, len(m.tables))
	for s := range m.tables {
		schemas = append(schemas, s)
	}
	sort.Strings(schemas)
	return schemas, nil
}

// ListTables returns the tables of a schema in sorted order.
func (m *Memory) ListTables(ctx context.Context, schema string) ([]string, error) {
	defs, ok := m.tables[schema]
	if !ok {
		return nil, nil
	}
	tables := make([]string, 0, len(defs))
	for t := range defs {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables, nil
}

func (m *Memory) lookup(schema, table string) (*MemoryTable, error) {
	defs, ok := m.tables[schema]
	if !ok {
		return nil, fmt.Errorf("schema %q not registered", schema)
	}
	def, ok := defs[table]
	if !ok {
		return nil, fmt.Errorf("table %q not registered in schema %q", table, schema)
	}
	return def, nil
}

// TableColumns returns the registered columns of a table.
func (m *Memory) TableColumns(ctx context.Context, schema, table string) ([]Column, error) {
	def, err := m.lookup(schema, table)
	if err != nil {
		return nil, err
	}
	return def.Columns, nil
}

// TableForeignKeys returns the registered foreign keys of a table.
func (m *Memory) TableForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error) {
	def, err := m.lookup(schema, table)
	if err != nil {
		return nil, err
	}
	return def.ForeignKeys, nil
}

// TableIndexes returns the registered secondary indexes of a table.
func (m *Memory) TableIndexes(ctx context.Context, schema, table string) ([]Index, error) {
	def, err := m.lookup(schema, table)
	if err != nil {
		return nil, err
	}
	return def.Indexes, nil
}

// PrimaryKey returns the registered primary-key column of a table.
func (m *Memory) PrimaryKey(ctx context.Context, schema, table string) (string, error) {
	def, err := m.lookup(schema, table)
	if err != nil {
		return "", err
	}
	return def.PK, nil
}
