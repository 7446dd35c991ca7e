package rdf

// Graph is an ordered list of triples. Insertion order is preserved and
// duplicates are permitted unless inserted through Insert.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	triples []Triple
}

// NewGraph returns a graph holding ts in order.
func NewGraph(ts ...Triple) *Graph {
	g := &Graph{}
	g.triples = append(g.triples, ts...)
	return g
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Add appends t, duplicates included.
func (g *Graph) Add(t Triple) {
	g.triples = append(g.triples, t)
}

// Insert appends t unless an identical triple is present. It reports whether
// the graph changed.
func (g *Graph) Insert(t Triple) bool {
	if g.Has(t) {
		return false
	}
	g.Add(t)
	return true
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t Triple) bool {
	for _, e := range g.triples {
		if e == t {
			return true
		}
	}
	return false
}

// Delete removes every triple matching p and returns how many were removed.
func (g *Graph) Delete(p Pattern) int {
	kept := g.triples[:0]
	removed := 0
	for _, t := range g.triples {
		if p.Matches(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	// clear the tail so dropped terms can be collected
	for i := len(kept); i < len(g.triples); i++ {
		g.triples[i] = Triple{}
	}
	g.triples = kept
	return removed
}

// Query returns the triples matching p, in graph order.
func (g *Graph) Query(p Pattern) []Triple {
	var out []Triple
	for _, t := range g.triples {
		if p.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// First returns the first triple matching p.
func (g *Graph) First(p Pattern) (Triple, bool) {
	for _, t := range g.triples {
		if p.Matches(t) {
			return t, true
		}
	}
	return Triple{}, false
}

// Objects returns the objects of (subject, predicate, *) in graph order.
func (g *Graph) Objects(subject Term, predicate string) []Term {
	var out []Term
	for _, t := range g.Query(Pattern{Subject: subject, Predicate: predicate}) {
		out = append(out, t.Object)
	}
	return out
}

// Triples returns a copy of the graph's triples.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Clone returns an independent copy.
func (g *Graph) Clone() *Graph {
	return NewGraph(g.triples...)
}

// Merge appends every triple of other.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	g.triples = append(g.triples, other.triples...)
}
