package rdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	krdf "github.com/knakk/rdf"
)

// Media types understood by the codec.
const (
	MediaTurtle   = "text/turtle"
	MediaNTriples = "application/n-triples"
)

// ErrUnsupportedMediaType is returned for serializations the codec does not handle.
var ErrUnsupportedMediaType = errors.New("rdf: unsupported media type")

// MediaType strips parameters (charset and the like) from a Content-Type value.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

// IsTurtle reports whether contentType names the Turtle serialization.
func IsTurtle(contentType string) bool {
	return MediaType(contentType) == MediaTurtle
}

func formatFor(contentType string) (krdf.Format, error) {
	switch MediaType(contentType) {
	case MediaTurtle:
		return krdf.Turtle, nil
	case MediaNTriples:
		return krdf.NTriples, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}
}

// Decode reads a whole document in the given serialization.
func Decode(r io.Reader, contentType string) (*Graph, error) {
	f, err := formatFor(contentType)
	if err != nil {
		return nil, err
	}
	dec := krdf.NewTripleDecoder(r, f)
	g := NewGraph()
	for {
		kt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", MediaType(contentType), err)
		}
		g.Add(fromKnakkTriple(kt))
	}
}

// ParseTurtle decodes a Turtle document.
func ParseTurtle(data []byte) (*Graph, error) {
	return Decode(bytes.NewReader(data), MediaTurtle)
}

// Encode writes g in the given serialization.
func Encode(w io.Writer, g *Graph, contentType string) error {
	f, err := formatFor(contentType)
	if err != nil {
		return err
	}
	enc := krdf.NewTripleEncoder(w, f)
	for _, t := range g.triples {
		kt, err := toKnakkTriple(t)
		if err != nil {
			return err
		}
		if err := enc.Encode(kt); err != nil {
			return fmt.Errorf("encode triple: %w", err)
		}
	}
	return enc.Close()
}

// MarshalTurtle serializes g as Turtle.
func MarshalTurtle(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, MediaTurtle); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fromKnakkTriple(kt krdf.Triple) Triple {
	return Triple{
		Subject:   fromKnakkTerm(kt.Subj),
		Predicate: kt.Pred.String(),
		Object:    fromKnakkTerm(kt.Obj),
	}
}

func fromKnakkTerm(t krdf.Term) Term {
	switch t.Type() {
	case krdf.TermBlank:
		return Blank(t.String())
	case krdf.TermLiteral:
		lit, ok := t.(krdf.Literal)
		if !ok {
			return Literal(t.String())
		}
		if lang := lit.Lang(); lang != "" {
			return LangLiteral(lit.String(), lang)
		}
		return TypedLiteral(lit.String(), lit.DataType.String())
	default:
		return IRI(t.String())
	}
}

func toKnakkTriple(t Triple) (krdf.Triple, error) {
	subj, err := toKnakkTerm(t.Subject)
	if err != nil {
		return krdf.Triple{}, err
	}
	s, ok := subj.(krdf.Subject)
	if !ok {
		return krdf.Triple{}, fmt.Errorf("rdf: literal %q cannot be a subject", t.Subject.Value)
	}
	pred, err := krdf.NewIRI(t.Predicate)
	if err != nil {
		return krdf.Triple{}, fmt.Errorf("rdf: predicate %q: %w", t.Predicate, err)
	}
	obj, err := toKnakkTerm(t.Object)
	if err != nil {
		return krdf.Triple{}, err
	}
	return krdf.Triple{Subj: s, Pred: pred, Obj: obj.(krdf.Object)}, nil
}

func toKnakkTerm(t Term) (krdf.Term, error) {
	switch t.Kind {
	case KindBlank:
		b, err := krdf.NewBlank(t.Value)
		if err != nil {
			return nil, fmt.Errorf("rdf: blank node %q: %w", t.Value, err)
		}
		return b, nil
	case KindLiteral:
		switch {
		case t.Lang != "":
			l, err := krdf.NewLangLiteral(t.Value, t.Lang)
			if err != nil {
				return nil, fmt.Errorf("rdf: literal %q: %w", t.Value, err)
			}
			return l, nil
		case t.Datatype != "":
			dt, err := krdf.NewIRI(t.Datatype)
			if err != nil {
				return nil, fmt.Errorf("rdf: datatype %q: %w", t.Datatype, err)
			}
			return krdf.NewTypedLiteral(t.Value, dt), nil
		default:
			l, err := krdf.NewLiteral(t.Value)
			if err != nil {
				return nil, fmt.Errorf("rdf: literal %q: %w", t.Value, err)
			}
			return l, nil
		}
	default:
		iri, err := krdf.NewIRI(t.Value)
		if err != nil {
			return nil, fmt.Errorf("rdf: iri %q: %w", t.Value, err)
		}
		return iri, nil
	}
}
