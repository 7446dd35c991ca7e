package relationships

import (
	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Target is the object of a relationship: an IRI, a literal value, or another
// repository object.
type Target struct {
	term rdf.Term
	ref  *identity.Ref
}

// URI targets an IRI such as "info:fedora/xyz:123".
func URI(uri string) Target {
	return Target{term: rdf.IRI(uri)}
}

// Literal targets a plain string value.
func Literal(value string) Target {
	return Target{term: rdf.Literal(value)}
}

// To targets another repository object by its legacy info URI.
func To(ref identity.Ref) Target {
	return Target{term: rdf.IRI(ref.InfoURI()), ref: &ref}
}

// FromTerm wraps a term read from a graph.
func FromTerm(t rdf.Term) Target {
	return Target{term: t}
}

// Term returns the RDF node written to the graph.
func (t Target) Term() rdf.Term {
	return t.term
}

// Value returns the IRI or literal string.
func (t Target) Value() string {
	return t.term.Value
}

// IsLiteral reports whether the target is a literal.
func (t Target) IsLiteral() bool {
	return t.term.IsLiteral()
}

// Ref returns the object the target was built from, if any.
func (t Target) Ref() (identity.Ref, bool) {
	if t.ref == nil {
		return identity.Ref{}, false
	}
	return *t.ref, true
}

func (t Target) same(o Target) bool {
	return t.term == o.term
}

// Relation is one outbound relationship of the store's subject.
type Relation struct {
	Predicate string
	Target    Target
}
