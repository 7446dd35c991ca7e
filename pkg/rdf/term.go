// Package rdf holds the small RDF model the rest of the module works in:
// terms, triples, an ordered graph, a Turtle/N-Triples codec and the
// predicate registry.
package rdf

import "strings"

// TermKind distinguishes IRIs, literals and blank nodes.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindLiteral
	KindBlank
)

// Term is an RDF node. The zero Term is used as a wildcard in patterns.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(v string) Term {
	return Term{Kind: KindIRI, Value: v}
}

// Literal returns a plain string literal.
func Literal(v string) Term {
	return Term{Kind: KindLiteral, Value: v}
}

// TypedLiteral returns a literal with an explicit datatype. xsd:string is
// normalized away so plain and explicitly typed strings compare equal.
func TypedLiteral(v, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: strings.ToLower(lang)}
}

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI && t.Value != "" }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }

// IsZero reports whether t is the wildcard term.
func (t Term) IsZero() bool {
	return t == Term{}
}

// String returns the lexical value.
func (t Term) String() string {
	return t.Value
}

// Triple is a single statement.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

// NewTriple builds a triple with an IRI subject.
func NewTriple(subject, predicate string, object Term) Triple {
	return Triple{Subject: IRI(subject), Predicate: predicate, Object: object}
}

// Pattern selects triples; zero fields match anything.
type Pattern struct {
	Subject   Term
	Predicate string
	Object    Term
}

// Matches reports whether t satisfies the pattern.
func (p Pattern) Matches(t Triple) bool {
	if !p.Subject.IsZero() && p.Subject != t.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != t.Predicate {
		return false
	}
	if !p.Object.IsZero() && p.Object != t.Object {
		return false
	}
	return true
}
