package rdf

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed predicates.yml
var defaultPredicates []byte

// ErrUnknownPredicate is returned when a predicate name is not registered.
var ErrUnknownPredicate = errors.New("rdf: unknown predicate")

type predicateFile struct {
	Predicates map[string]map[string]string `yaml:"predicates"`
}

// Registry maps short relationship names to predicate URIs. Both the
// snake_case key (is_part_of) and the camelCase local name (isPartOf)
// resolve to the same URI.
type Registry struct {
	byName    map[string]string
	relations map[string]struct{}
}

// LoadRegistry parses a predicate mapping document.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var pf predicateFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("parse predicate mappings: %w", err)
	}
	reg := &Registry{
		byName:    make(map[string]string),
		relations: make(map[string]struct{}),
	}
	for ns, preds := range pf.Predicates {
		for name, local := range preds {
			if name == "" || local == "" {
				return nil, fmt.Errorf("predicate mappings: empty entry in namespace %q", ns)
			}
			uri := ns + local
			if prev, ok := reg.byName[name]; ok && prev != uri {
				return nil, fmt.Errorf("predicate mappings: %q maps to both %q and %q", name, prev, uri)
			}
			reg.byName[name] = uri
			reg.byName[local] = uri
			reg.relations[uri] = struct{}{}
		}
	}
	return reg, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	reg, err := LoadRegistry(bytes.NewReader(defaultPredicates))
	if err != nil {
		panic(err)
	}
	return reg
})

// DefaultRegistry returns the registry built from the embedded mappings.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Resolve turns a registered name or an absolute URI into a predicate URI.
func (r *Registry) Resolve(name string) (string, error) {
	if strings.Contains(name, ":") {
		return name, nil
	}
	if uri, ok := r.byName[name]; ok {
		return uri, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPredicate, name)
}

// IsRelation reports whether uri is a registered relationship predicate.
func (r *Registry) IsRelation(uri string) bool {
	_, ok := r.relations[uri]
	return ok
}

// IsRelationTriple reports whether t belongs to a resource's relationships
// rather than its descriptive attributes. Registered predicates always do.
// Any other predicate does when its object is a resource, except rdf:type
// and repository-managed properties.
func (r *Registry) IsRelationTriple(t Triple) bool {
	if r.IsRelation(t.Predicate) {
		return true
	}
	if !t.Object.IsIRI() || t.Predicate == RDFType {
		return false
	}
	return !strings.HasPrefix(t.Predicate, FedoraNS) && !strings.HasPrefix(t.Predicate, LDPNS)
}
