package graph

import (
	"errors"
	"reflect"
	"testing"
)

func position(order []TableRef, name string) int {
	for i, t := range order {
		if t.String() == name {
			return i
		}
	}
	return -1
}

func TestSortedTables_ParentsBeforeChildren(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.orders", "app.users"},
		{"app.order_items", "app.orders"},
		{"app.order_items", "app.products"},
	})

	order, err := g.SortedTables(nil)
	if err != nil {
		t.Fatalf("SortedTables failed: %v", err)
	}

	if len(order) != 4 {
		t.Fatalf("expected 4 tables, got %v", order)
	}

	checks := [][2]string{
		{"app.users", "app.orders"},
		{"app.orders", "app.order_items"},
		{"app.products", "app.order_items"},
	}
	for _, c := range checks {
		if position(order, c[0]) > position(order, c[1]) {
			t.Errorf("%s must precede %s in %v", c[0], c[1], order)
		}
	}

	// every table appears exactly once
	seen := make(map[TableRef]int)
	for _, ref := range order {
		seen[ref]++
	}
	for ref, n := range seen {
		if n != 1 {
			t.Errorf("table %s appears %d times", ref, n)
		}
	}
}

func TestSortedTables_SelectionClosesOverAncestors(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.child", "app.parent"},
		{"app.parent", "app.grandparent"},
		{"app.unrelated_child", "app.unrelated_parent"},
	})

	order, err := g.SortedTables([]string{"child"})
	if err != nil {
		t.Fatalf("SortedTables failed: %v", err)
	}

	want := refs("app.grandparent", "app.parent", "app.child")
	if !reflect.DeepEqual(order, want) {
		t.Errorf("got %v, want %v", order, want)
	}
}

func TestSortedTables_NeverIncludesDescendants(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.child", "app.parent"},
		{"app.grandchild", "app.child"},
	})

	order, err := g.SortedTables([]string{"app.child"})
	if err != nil {
		t.Fatalf("SortedTables failed: %v", err)
	}

	if position(order, "app.grandchild") != -1 {
		t.Errorf("descendant leaked into closure: %v", order)
	}
}

func TestSortedTables_DeterministicLexicographicTieBreak(t *testing.T) {
	// Two roots with equal indegree: the frontier must drain in
	// lexicographic order regardless of discovery order.
	g := buildTestGraph(t, [][2]string{
		{"app.child", "app.zebra"},
		{"app.child", "app.aardvark"},
	})

	first, err := g.SortedTables(nil)
	if err != nil {
		t.Fatalf("SortedTables failed: %v", err)
	}

	want := refs("app.aardvark", "app.zebra", "app.child")
	if !reflect.DeepEqual(first, want) {
		t.Errorf("got %v, want %v", first, want)
	}

	// identical output across repeated calls
	for i := 0; i < 10; i++ {
		again, err := g.SortedTables(nil)
		if err != nil {
			t.Fatalf("SortedTables failed on repeat: %v", err)
		}
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("order changed between calls: %v vs %v", again, first)
		}
	}
}

func TestSortedTables_CycleInsideSubset(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.a", "app.b"},
		{"app.b", "app.c"},
		{"app.c", "app.a"},
	})

	_, err := g.SortedTables([]string{"app.a"})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}

	want := refs("app.a", "app.b", "app.c")
	if !reflect.DeepEqual(cycleErr.Tables, want) {
		t.Errorf("cycle names %v, want %v", cycleErr.Tables, want)
	}
}

func TestSortedTables_CycleOutsideSubsetIgnored(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.a", "app.b"},
		{"app.b", "app.c"},
		{"app.c", "app.a"},
		{"app.clean_child", "app.clean_parent"},
	})

	order, err := g.SortedTables([]string{"app.clean_child"})
	if err != nil {
		t.Fatalf("cycle outside the requested subset must not raise: %v", err)
	}

	want := refs("app.clean_parent", "app.clean_child")
	if !reflect.DeepEqual(order, want) {
		t.Errorf("got %v, want %v", order, want)
	}
}

func TestSortedTables_ResolutionFailuresSurface(t *testing.T) {
	g := buildTestGraph(t, nil, "one.dup", "two.dup")

	_, err := g.SortedTables([]string{"missing"})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected *NotFoundError, got %v", err)
	}

	_, err = g.SortedTables([]string{"dup"})
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Errorf("expected *AmbiguousError, got %v", err)
	}
}

func TestClosureUp(t *testing.T) {
	g := buildTestGraph(t, [][2]string{
		{"app.c", "app.b"},
		{"app.b", "app.a"},
		{"app.d", "app.c"},
	})

	closure := g.ClosureUp(refs("app.c"))
	want := refs("app.a", "app.b", "app.c")
	if !reflect.DeepEqual(closure, want) {
		t.Errorf("got %v, want %v", closure, want)
	}
}

func TestValidate(t *testing.T) {
	acyclic := buildTestGraph(t, [][2]string{
		{"app.child", "app.parent"},
	})
	if err := acyclic.Validate(); err != nil {
		t.Errorf("acyclic graph should validate, got %v", err)
	}

	cyclic := buildTestGraph(t, [][2]string{
		{"app.x", "app.y"},
		{"app.y", "app.x"},
	})
	if err := cyclic.Validate(); err == nil {
		t.Error("cyclic graph should fail validation")
	}
}
