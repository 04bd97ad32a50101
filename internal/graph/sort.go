package graph

// SortedTables returns a parent-first load order for the selected tables
// plus every transitive ancestor.
//
// With no selection the full discovered vertex set is ordered. Bare names
// are resolved first, so planning failures (NotFound, Ambiguous, Cycle)
// surface here, before any data movement.
func (g *Graph) SortedTables(selected []string) ([]TableRef, error) {
	subset := make(map[TableRef]struct{})

	if len(selected) == 0 {
		for t := range g.parents {
			subset[t] = struct{}{}
		}
	} else {
		for _, name := range selected {
			ref, err := g.Resolve(name)
			if err != nil {
				return nil, err
			}
			subset[ref] = struct{}{}
		}
	}

	g.closureUp(subset)
	return g.topologicalOrder(subset)
}

// ClosureUp returns the given tables plus every transitive ancestor,
// in sorted order. Descendants are never added.
func (g *Graph) ClosureUp(tables []TableRef) []TableRef {
	set := make(map[TableRef]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}
	g.closureUp(set)
	return sortedSet(set)
}

// closureUp expands the set in place via breadth-first traversal along
// parent edges until fixpoint.
func (g *Graph) closureUp(set map[TableRef]struct{}) {
	queue := make([]TableRef, 0, len(set))
	for t := range set {
		queue = append(queue, t)
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		for parent := range g.parents[t] {
			if _, seen := set[parent]; !seen {
				set[parent] = struct{}{}
				queue = append(queue, parent)
			}
		}
	}
}

// topologicalOrder runs Kahn's algorithm on the subgraph induced by the
// subset; edges to tables outside the subset do not count toward indegree.
//
// The zero-indegree frontier is always drained in lexicographic order, not
// discovery order, so the result is identical across runs on an unchanged
// schema. If fewer tables are emitted than the subset holds, the remainder
// forms one or more cycles and a *CycleError names every member, sorted.
func (g *Graph) topologicalOrder(subset map[TableRef]struct{}) ([]TableRef, error) {
	indegree := make(map[TableRef]int, len(subset))
	for t := range subset {
		indegree[t] = 0
	}
	for child := range subset {
		for parent := range g.parents[child] {
			if _, in := subset[parent]; in {
				indegree[child]++
			}
		}
	}

	var frontier []TableRef
	for t, d := range indegree {
		if d == 0 {
			frontier = append(frontier, t)
		}
	}
	sortRefs(frontier)

	order := make([]TableRef, 0, len(subset))
	for len(frontier) > 0 {
		t := frontier[0]
		frontier = frontier[1:]
		order = append(order, t)

		discharged := false
		for child := range g.children[t] {
			if _, in := subset[child]; !in {
				continue
			}
			indegree[child]--
			if indegree[child] == 0 {
				frontier = append(frontier, child)
				discharged = true
			}
		}
		if discharged {
			sortRefs(frontier)
		}
	}

	if len(order) != len(subset) {
		emitted := make(map[TableRef]struct{}, len(order))
		for _, t := range order {
			emitted[t] = struct{}{}
		}
		var remainder []TableRef
		for t := range subset {
			if _, ok := emitted[t]; !ok {
				remainder = append(remainder, t)
			}
		}
		sortRefs(remainder)
		return nil, &CycleError{Tables: remainder}
	}

	return order, nil
}

// Validate checks the full graph for cycles without computing a plan.
// Useful for failing fast at startup.
func (g *Graph) Validate() error {
	subset := make(map[TableRef]struct{}, len(g.parents))
	for t := range g.parents {
		subset[t] = struct{}{}
	}
	_, err := g.topologicalOrder(subset)
	return err
}
