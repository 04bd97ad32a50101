package graph

import "strings"

// Resolve maps a table name to a unique TableRef.
//
// Names that already contain a dot pass through unchanged. Bare names are
// matched against every known table by unqualified suffix: zero matches is a
// *NotFoundError, more than one is an *AmbiguousError listing every
// candidate.
func (g *Graph) Resolve(name string) (TableRef, error) {
	if strings.Contains(name, ".") {
		return ParseTableRef(name), nil
	}

	var candidates []TableRef
	for t := range g.parents {
		if t.Table == name {
			candidates = append(candidates, t)
		}
	}

	switch len(candidates) {
	case 0:
		return TableRef{}, &NotFoundError{Name: name}
	case 1:
		return candidates[0], nil
	default:
		sortRefs(candidates)
		return TableRef{}, &AmbiguousError{Name: name, Candidates: candidates}
	}
}
