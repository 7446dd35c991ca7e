package resource

import (
	"context"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/domain/relationships"
	"github.com/emergent-company/ldpgraph/domain/versioning"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Relatable is the relationship capability of a resource.
type Relatable interface {
	relationships.Reader
	AddRelationship(ctx context.Context, predicate string, target relationships.Target) error
	RemoveRelationship(ctx context.Context, predicate string, target relationships.Target) error
	ClearRelationship(ctx context.Context, predicate string) error
	ClearRelationships()
	Relationships(ctx context.Context) (*rdf.Graph, error)
	ConformsTo(ctx context.Context, expected *Model) (bool, error)
}

// Versionable is the version-history capability of a resource.
type Versionable interface {
	Versionable() bool
	ModelType() []string
	Versions(ctx context.Context) ([]versioning.Version, error)
	CreateVersion(ctx context.Context) (bool, error)
	RestoreVersion(ctx context.Context, id string) (bool, error)
}

var (
	_ Relatable   = (*Base)(nil)
	_ Versionable = (*Base)(nil)
)

// Base is a repository object or datastream. It delegates relationship
// handling to a relationships.Store and versioning to a versioning.Controller.
//
// A Base is owned by one caller at a time and is not safe for concurrent use.
type Base struct {
	model *Model
	repo  *Repository
	ref   identity.Ref

	// datastream placement, set for datastreams only
	parent *Base
	dsid   string

	attrs     *rdf.Graph
	rels      *relationships.Store
	versions  *versioning.Controller
	persisted bool
}

// refreshing is the versioning subject for models with a refresh hook.
type refreshing struct {
	*Base
}

func (r refreshing) RefreshAttributes(ctx context.Context) error {
	return r.model.RefreshAttributes(ctx, r.Base)
}

func newBase(repo *Repository, model *Model, ref identity.Ref) *Base {
	b := &Base{
		model: model,
		repo:  repo,
		ref:   ref,
		attrs: rdf.NewGraph(),
	}
	b.rels = relationships.NewStore(b, repo, repo.resolver, repo.registry, repo.log)

	var subject versioning.Subject = b
	if model.RefreshAttributes != nil {
		subject = refreshing{b}
	}
	b.versions = versioning.NewController(subject, repo.client, repo.log)
	return b
}

// Ref returns the resource identity, zero until first save.
func (b *Base) Ref() identity.Ref { return b.ref }

// PID returns the local identifier, empty until first save.
func (b *Base) PID() string { return b.ref.PID }

// URI returns the repository URI, empty until first save.
func (b *Base) URI() string { return b.ref.URI }

// Model returns the resource type.
func (b *Base) Model() *Model { return b.model }

// Persisted reports whether the resource exists in the repository.
func (b *Base) Persisted() bool { return b.persisted }

// Property returns the literal values of predicate on the resource.
func (b *Base) Property(predicate string) []string {
	var out []string
	for _, t := range b.attrs.Objects(rdf.IRI(b.ref.URI), predicate) {
		out = append(out, t.Value)
	}
	return out
}

// SetProperty replaces the values of predicate with literals.
func (b *Base) SetProperty(predicate string, values ...string) {
	subject := rdf.IRI(b.ref.URI)
	b.attrs.Delete(rdf.Pattern{Subject: subject, Predicate: predicate})
	for _, v := range values {
		b.attrs.Add(rdf.Triple{Subject: subject, Predicate: predicate, Object: rdf.Literal(v)})
	}
}

// Resource returns a copy of the descriptive graph.
func (b *Base) Resource() *rdf.Graph {
	return b.attrs.Clone()
}

// assignRef moves the descriptive graph from the unsaved placeholder subject
// to ref.
func (b *Base) assignRef(ref identity.Ref) {
	moved := rdf.NewGraph()
	for _, t := range b.attrs.Triples() {
		if t.Subject == rdf.IRI(b.ref.URI) {
			t.Subject = rdf.IRI(ref.URI)
		}
		moved.Add(t)
	}
	b.attrs = moved
	b.ref = ref
}

// Save persists the resource.
func (b *Base) Save(ctx context.Context) error { return b.repo.Save(ctx, b) }

// Reload re-reads the resource from the repository.
func (b *Base) Reload(ctx context.Context) error { return b.repo.Reload(ctx, b) }

// Destroy deletes the resource from the repository.
func (b *Base) Destroy(ctx context.Context) error { return b.repo.Destroy(ctx, b) }

// Relationship capability

func (b *Base) AddRelationship(ctx context.Context, predicate string, target relationships.Target) error {
	return b.rels.Add(ctx, predicate, target)
}

func (b *Base) RemoveRelationship(ctx context.Context, predicate string, target relationships.Target) error {
	return b.rels.Remove(ctx, predicate, target)
}

func (b *Base) ClearRelationship(ctx context.Context, predicate string) error {
	return b.rels.Clear(ctx, predicate)
}

func (b *Base) ClearRelationships() {
	b.rels.ClearAll()
}

// Relationships returns the full outbound graph; it fails with a
// precondition error before the first save.
func (b *Base) Relationships(ctx context.Context) (*rdf.Graph, error) {
	return b.rels.Graph(ctx)
}

func (b *Base) Targets(ctx context.Context, predicate string) ([]relationships.Target, error) {
	return b.rels.Targets(ctx, predicate)
}

func (b *Base) URIs(ctx context.Context, predicate string) ([]string, error) {
	return b.rels.URIs(ctx, predicate)
}

func (b *Base) Values(ctx context.Context, predicate string) ([]string, error) {
	return b.rels.Values(ctx, predicate)
}

func (b *Base) IDsForOutbound(ctx context.Context, predicate string) ([]string, error) {
	return b.rels.IDsForOutbound(ctx, predicate)
}

// ConformsTo checks the resource against expected. See relationships.Store.ConformsTo.
func (b *Base) ConformsTo(ctx context.Context, expected *Model) (bool, error) {
	return b.rels.ConformsTo(ctx, b.model, expected)
}

// Version capability

func (b *Base) Versionable() bool {
	return b.model.Versionable
}

// ModelType returns the rdf:type values of the descriptive graph.
func (b *Base) ModelType() []string {
	return b.versions.ModelType(b.attrs)
}

func (b *Base) Versions(ctx context.Context) ([]versioning.Version, error) {
	return b.versions.Versions(ctx)
}

func (b *Base) CreateVersion(ctx context.Context) (bool, error) {
	return b.versions.CreateVersion(ctx)
}

func (b *Base) RestoreVersion(ctx context.Context, id string) (bool, error) {
	return b.versions.RestoreVersion(ctx, id)
}

func (b *Base) RootVersion(ctx context.Context) (versioning.Version, bool, error) {
	return b.versions.RootVersion(ctx)
}

func (b *Base) InitialVersion(ctx context.Context) (versioning.Version, bool, error) {
	return b.versions.InitialVersion(ctx)
}

func (b *Base) LatestVersion(ctx context.Context) (versioning.Version, bool, error) {
	return b.versions.LatestVersion(ctx)
}
