// Package relationships manages the outbound relationship graph of a single
// repository resource.
//
// The graph is loaded lazily on first access. The load runs at most once per
// lifecycle: its outcome, graph or error, is kept until ClearAll. A Store is
// owned by one resource instance and is not safe for concurrent use.
package relationships

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// LoadState tracks the lazy load.
type LoadState uint8

const (
	StateAbsent LoadState = iota
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Subject is the resource owning a store.
type Subject interface {
	Ref() identity.Ref
}

// Loader fetches the persisted outbound relationships of subject.
type Loader interface {
	LoadRelationships(ctx context.Context, subject identity.Ref) (*rdf.Graph, error)
}

// UnimplementedLoader is the default hook for resource types that do not
// know how to fetch their relationships.
type UnimplementedLoader struct{}

func (UnimplementedLoader) LoadRelationships(context.Context, identity.Ref) (*rdf.Graph, error) {
	return nil, apperror.ErrNotImplemented.WithMessage("Not implemented: load_relationships")
}

// Store is the in-memory relationship graph of one subject.
type Store struct {
	subject  Subject
	loader   Loader
	resolver *identity.Resolver
	registry *rdf.Registry
	log      *slog.Logger

	rels    []Relation
	state   LoadState
	loadErr error
	dirty   bool
}

// NewStore creates an unloaded store. A nil loader means UnimplementedLoader.
func NewStore(subject Subject, loader Loader, resolver *identity.Resolver, registry *rdf.Registry, log *slog.Logger) *Store {
	if loader == nil {
		loader = UnimplementedLoader{}
	}
	if registry == nil {
		registry = rdf.DefaultRegistry()
	}
	return &Store{
		subject:  subject,
		loader:   loader,
		resolver: resolver,
		registry: registry,
		log:      log.With(logger.Scope("relationships")),
	}
}

// State returns the current load state.
func (s *Store) State() LoadState {
	return s.state
}

// Dirty reports whether the graph changed since the last flush.
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkClean clears the dirty flag after a successful flush.
func (s *Store) MarkClean() {
	s.dirty = false
}

// Replace installs g as the loaded graph, discarding local changes. Only
// triples whose subject is the store's subject, or all triples when the
// subject has no URI, are taken.
func (s *Store) Replace(g *rdf.Graph) {
	s.rels = s.relationsFrom(g)
	s.state = StateLoaded
	s.loadErr = nil
	s.dirty = false
}

// ClearAll drops the graph and resets the load state, so the next access
// loads again.
func (s *Store) ClearAll() {
	s.rels = nil
	s.state = StateAbsent
	s.loadErr = nil
}

func (s *Store) relationsFrom(g *rdf.Graph) []Relation {
	if g == nil {
		return nil
	}
	ref := s.subject.Ref()
	var out []Relation
	for _, t := range g.Triples() {
		if !ref.IsZero() && t.Subject.Value != ref.URI {
			continue
		}
		out = append(out, Relation{Predicate: t.Predicate, Target: FromTerm(t.Object)})
	}
	return out
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	switch s.state {
	case StateLoaded:
		return nil
	case StateFailed:
		return s.loadErr
	}

	ref := s.subject.Ref()
	if ref.IsZero() {
		// nothing persisted yet
		s.state = StateLoaded
		return nil
	}

	g, err := s.loader.LoadRelationships(ctx, ref)
	if err != nil {
		s.state = StateFailed
		s.loadErr = fmt.Errorf("load relationships of %s: %w", ref.URI, err)
		s.log.Warn("relationship load failed",
			slog.String("uri", ref.URI),
			logger.Error(err))
		return s.loadErr
	}

	s.rels = s.relationsFrom(g)
	s.state = StateLoaded
	s.log.Debug("relationships loaded",
		slog.String("uri", ref.URI),
		slog.Int("count", len(s.rels)))
	return nil
}

func (s *Store) resolve(predicate string) (string, error) {
	uri, err := s.registry.Resolve(predicate)
	if err != nil {
		return "", apperror.NewBadRequest(err.Error()).WithInternal(err)
	}
	return uri, nil
}

// Add appends a relationship. Duplicates are kept. Literal targets need a
// registered predicate; on any other predicate a literal reads back as a
// descriptive attribute.
func (s *Store) Add(ctx context.Context, predicate string, target Target) error {
	if target.Value() == "" {
		return apperror.NewPrecondition("relationship target has no identifier")
	}
	pred, err := s.resolve(predicate)
	if err != nil {
		return err
	}
	if target.IsLiteral() && !s.registry.IsRelation(pred) {
		return apperror.NewBadRequest(fmt.Sprintf("predicate %s is not a registered relationship and cannot take a literal target", pred))
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.rels = append(s.rels, Relation{Predicate: pred, Target: target})
	s.dirty = true
	return nil
}

// Remove deletes every (predicate, target) relationship. Removing a pair that
// does not exist is not an error.
func (s *Store) Remove(ctx context.Context, predicate string, target Target) error {
	pred, err := s.resolve(predicate)
	if err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	kept := s.rels[:0]
	for _, r := range s.rels {
		if r.Predicate == pred && r.Target.same(target) {
			continue
		}
		kept = append(kept, r)
	}
	s.rels = kept
	s.dirty = true
	return nil
}

// Clear removes every relationship with predicate. Matching targets are
// collected before any is deleted.
func (s *Store) Clear(ctx context.Context, predicate string) error {
	targets, err := s.Targets(ctx, predicate)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := s.Remove(ctx, predicate, t); err != nil {
			return err
		}
	}
	return nil
}

// Targets returns the targets of predicate in insertion order.
func (s *Store) Targets(ctx context.Context, predicate string) ([]Target, error) {
	pred, err := s.resolve(predicate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []Target
	for _, r := range s.rels {
		if r.Predicate == pred {
			out = append(out, r.Target)
		}
	}
	return out, nil
}

// URIs returns the raw IRIs and literal values related through predicate, in
// order, skipping empty values.
func (s *Store) URIs(ctx context.Context, predicate string) ([]string, error) {
	targets, err := s.Targets(ctx, predicate)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if v := t.Value(); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// Values returns the identifiers related through predicate, in order,
// skipping empty values. Object targets yield their PID, "info:fedora/" and
// repository IRIs their local id. Other IRIs and literals are returned as is.
func (s *Store) Values(ctx context.Context, predicate string) ([]string, error) {
	targets, err := s.Targets(ctx, predicate)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		switch ref, ok := t.Ref(); {
		case ok:
			out = append(out, ref.PID)
		case t.Value() == "":
		case t.IsLiteral():
			out = append(out, t.Value())
		default:
			out = append(out, s.resolver.PIDFromURI(t.Value()))
		}
	}
	return out, nil
}

// IDsForOutbound returns local ids of the objects related through predicate.
// Object targets yield their PID, IRI and literal targets are parsed.
func (s *Store) IDsForOutbound(ctx context.Context, predicate string) ([]string, error) {
	targets, err := s.Targets(ctx, predicate)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if ref, ok := t.Ref(); ok {
			out = append(out, ref.PID)
			continue
		}
		if v := t.Value(); v != "" {
			out = append(out, s.resolver.PIDFromURI(v))
		}
	}
	return out, nil
}

// Graph returns the full outbound graph rooted at the subject URI.
func (s *Store) Graph(ctx context.Context) (*rdf.Graph, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	ref := s.subject.Ref()
	if ref.IsZero() {
		return nil, apperror.NewPrecondition("Must have uri")
	}
	g := rdf.NewGraph()
	for _, r := range s.rels {
		g.Add(rdf.Triple{Subject: rdf.IRI(ref.URI), Predicate: r.Predicate, Object: r.Target.Term()})
	}
	return g, nil
}
