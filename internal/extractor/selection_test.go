package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/gostage/internal/config"
	"github.com/dbsmedya/gostage/internal/graph"
)

func TestSelectionFromJob(t *testing.T) {
	job := &config.JobConfig{
		Tables: []config.TableSelection{
			{Table: "departments"},
			{Table: "employees", Columns: []string{"name", "email"}},
			{Table: "company.projects", Columns: []string{"*"}},
		},
	}

	sel := SelectionFromJob(job)

	assert.Equal(t, 3, sel.Len())
	assert.Equal(t, []string{"departments", "employees", "company.projects"}, sel.TableNames())

	assert.True(t, sel.For(graph.ParseTableRef("company.departments")).All())
	assert.Equal(t, []string{"name", "email"},
		sel.For(graph.ParseTableRef("company.employees")).List())
	assert.True(t, sel.For(graph.ParseTableRef("company.projects")).All(),
		"a '*' entry selects every column")
}

func TestSelectionQualifiedNameWins(t *testing.T) {
	sel := NewSelection()
	sel.Set("employees", Columns("name"))
	sel.Set("company.employees", Columns("email"))

	cs := sel.For(graph.ParseTableRef("company.employees"))
	assert.Equal(t, []string{"email"}, cs.List())

	// a different schema only matches the bare entry
	cs = sel.For(graph.ParseTableRef("hr.employees"))
	assert.Equal(t, []string{"name"}, cs.List())
}

func TestSelectionAbsentTableDefaultsToAllColumns(t *testing.T) {
	sel := NewSelection()
	sel.Set("employees", Columns("name"))

	cs := sel.For(graph.ParseTableRef("company.departments"))
	assert.True(t, cs.All(), "ancestors outside the selection sync every column")
}

func TestSelectionSetKeepsPosition(t *testing.T) {
	sel := NewSelection()
	sel.Set("a", AllColumns())
	sel.Set("b", AllColumns())
	sel.Set("a", Columns("id"))

	assert.Equal(t, []string{"a", "b"}, sel.TableNames())
	assert.Equal(t, []string{"id"}, sel.For(graph.TableRef{Schema: "s", Table: "a"}).List())
}

func TestColumnSelectionString(t *testing.T) {
	assert.Equal(t, "*", AllColumns().String())
	assert.Equal(t, "[id name]", Columns("id", "name").String())
}
