package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const versionsDoc = `@prefix fedora: <http://fedora.info/definitions/v4/repository#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<http://localhost:8080/rest/test/abc> fedora:hasVersion <http://localhost:8080/rest/test/abc/fcr:versions/v1> , <http://localhost:8080/rest/test/abc/fcr:versions/v2> .
<http://localhost:8080/rest/test/abc/fcr:versions/v1> fedora:hasVersionLabel "v1" ;
	fedora:created "2026-01-01T10:00:00Z"^^xsd:dateTime .
`

func TestParseTurtle(t *testing.T) {
	g, err := ParseTurtle([]byte(versionsDoc))
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())

	versions := g.Objects(IRI("http://localhost:8080/rest/test/abc"), FedoraHasVersion)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].IsIRI())
	assert.Equal(t, "http://localhost:8080/rest/test/abc/fcr:versions/v1", versions[0].Value)

	v1 := IRI("http://localhost:8080/rest/test/abc/fcr:versions/v1")
	assert.Equal(t, []Term{Literal("v1")}, g.Objects(v1, FedoraHasVersionLabel))
	created := g.Objects(v1, FedoraCreated)
	require.Len(t, created, 1)
	assert.Equal(t, XSDDateTime, created[0].Datatype)
}

func TestParseTurtleRejectsGarbage(t *testing.T) {
	_, err := ParseTurtle([]byte("<http://a> <http://b> ."))
	assert.Error(t, err)
}

func TestTurtleRoundTrip(t *testing.T) {
	g := NewGraph(
		NewTriple(subj, RDFType, IRI(MixVersionable)),
		NewTriple(subj, HasModel, IRI(ModelPrefix+"Book")),
		NewTriple(subj, DCTitle, Literal("Greetings Earthlings")),
		NewTriple(subj, DCTitle, LangLiteral("Bonjour", "fr")),
	)

	data, err := MarshalTurtle(g)
	require.NoError(t, err)

	back, err := ParseTurtle(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, g.Triples(), back.Triples())
}

func TestEncodeNTriples(t *testing.T) {
	g := NewGraph(NewTriple(subj, DCTitle, Literal("x")))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g, MediaNTriples))
	assert.Contains(t, buf.String(), "<"+subj+">")

	back, err := Decode(strings.NewReader(buf.String()), "application/n-triples; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, g.Triples(), back.Triples())
}

func TestCodecRejectsUnknownMediaType(t *testing.T) {
	_, err := Decode(strings.NewReader("{}"), "application/json")
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestEncodeRejectsLiteralSubject(t *testing.T) {
	g := NewGraph(Triple{Subject: Literal("nope"), Predicate: DCTitle, Object: Literal("x")})
	_, err := MarshalTurtle(g)
	assert.Error(t, err)
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		turtle bool
	}{
		{"text/turtle", "text/turtle", true},
		{"text/turtle;charset=utf-8", "text/turtle", true},
		{"Text/Turtle", "text/turtle", true},
		{"application/ld+json", "application/ld+json", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaType(tt.in))
			assert.Equal(t, tt.turtle, IsTurtle(tt.in))
		})
	}
}
