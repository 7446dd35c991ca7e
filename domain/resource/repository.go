package resource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/domain/relationships"
	"github.com/emergent-company/ldpgraph/domain/versioning"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/ldp"
	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Client is the LDP transport the repository needs.
type Client interface {
	versioning.Transport
	Put(ctx context.Context, url, contentType string, body []byte, opts ...ldp.RequestOption) (*ldp.Response, error)
	Delete(ctx context.Context, url string, opts ...ldp.RequestOption) (*ldp.Response, error)
}

// Repository maps Base resources to repository documents.
type Repository struct {
	client   Client
	resolver *identity.Resolver
	minter   *identity.Minter
	registry *rdf.Registry
	log      *slog.Logger
}

// NewRepository creates a repository.
func NewRepository(client Client, resolver *identity.Resolver, minter *identity.Minter, registry *rdf.Registry, log *slog.Logger) *Repository {
	if registry == nil {
		registry = rdf.DefaultRegistry()
	}
	return &Repository{
		client:   client,
		resolver: resolver,
		minter:   minter,
		registry: registry,
		log:      log.With(logger.Scope("resource.repository")),
	}
}

// Resolver returns the PID resolver.
func (r *Repository) Resolver() *identity.Resolver {
	return r.resolver
}

// New returns an unsaved object of model.
func (r *Repository) New(model *Model) *Base {
	b := newBase(r, model, identity.Ref{})
	b.rels.Replace(nil)
	return b
}

// NewDatastream returns an unsaved datastream dsid inside parent.
func (r *Repository) NewDatastream(parent *Base, dsid string, model *Model) *Base {
	b := r.New(model)
	b.parent = parent
	b.dsid = dsid
	return b
}

// Find loads the object pid as model.
func (r *Repository) Find(ctx context.Context, model *Model, pid string) (*Base, error) {
	b := newBase(r, model, r.resolver.Object(pid))
	if err := r.Reload(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// FindDatastream loads datastream dsid of parent as model.
func (r *Repository) FindDatastream(ctx context.Context, parent *Base, dsid string, model *Model) (*Base, error) {
	if parent.ref.IsZero() {
		return nil, apperror.NewPrecondition("datastream parent has not been saved")
	}
	b := newBase(r, model, r.resolver.Datastream(parent.ref.PID, dsid))
	b.parent = parent
	b.dsid = dsid
	if err := r.Reload(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Finder adapts Find for relationship materialization.
func (r *Repository) Finder(model *Model) relationships.Finder[*Base] {
	return relationships.FinderFunc[*Base](func(ctx context.Context, pid string) (*Base, error) {
		return r.Find(ctx, model, pid)
	})
}

func (r *Repository) assignIdentity(b *Base) error {
	if !b.ref.IsZero() {
		return nil
	}
	if b.parent != nil {
		if b.parent.ref.IsZero() {
			return apperror.NewPrecondition("datastream parent has not been saved")
		}
		b.assignRef(r.resolver.Datastream(b.parent.ref.PID, b.dsid))
		return nil
	}
	b.assignRef(r.resolver.Object(r.minter.Mint()))
	return nil
}

// Save writes the descriptive graph and the relationships of b with a
// single PUT. New resources get a PID first; versionable ones are marked
// mix:versionable; every resource carries its has_model relationship.
func (r *Repository) Save(ctx context.Context, b *Base) error {
	if err := r.assignIdentity(b); err != nil {
		return err
	}
	if b.model.Versionable {
		b.versions.AssertVersionable(b.attrs)
	}

	models, err := b.rels.URIs(ctx, rdf.HasModel)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		if err := b.rels.Add(ctx, rdf.HasModel, relationships.URI(b.model.ClassURI())); err != nil {
			return err
		}
	}

	rels, err := b.rels.Graph(ctx)
	if err != nil {
		return err
	}
	doc := b.attrs.Clone()
	doc.Merge(rels)
	body, err := rdf.MarshalTurtle(doc)
	if err != nil {
		return apperror.NewInternal("failed to serialize resource", err)
	}

	if err := r.put(ctx, b.ref.URI, rdf.MediaTurtle, body); err != nil {
		return err
	}

	created := !b.persisted
	b.persisted = true
	b.rels.MarkClean()
	b.versions.Invalidate()

	r.log.Debug("resource saved",
		slog.String("uri", b.ref.URI),
		slog.String("model", b.model.Name),
		slog.Bool("created", created))
	return nil
}

// put writes body to url. A 409 means the repository refused the write,
// e.g. the parent is gone or the resource kind differs.
func (r *Repository) put(ctx context.Context, url, contentType string, body []byte, opts ...ldp.RequestOption) error {
	resp, err := r.client.Put(ctx, url, contentType, body, opts...)
	if err != nil {
		return apperror.NewTransport("failed to save resource", err)
	}
	err = resp.Err()
	switch {
	case err == nil:
		return nil
	case ldp.IsConflict(err):
		return apperror.ErrConflict.WithMessage(fmt.Sprintf("repository refused to save %s", url)).WithInternal(err)
	default:
		return apperror.NewTransport(fmt.Sprintf("unexpected return value %d when saving %s", resp.StatusCode, url), err)
	}
}

func (r *Repository) fetch(ctx context.Context, ref identity.Ref) (*rdf.Graph, error) {
	return r.fetchAt(ctx, ref.URI, ref)
}

// fetchAt reads the Turtle document at url, which describes ref.
func (r *Repository) fetchAt(ctx context.Context, url string, ref identity.Ref) (*rdf.Graph, error) {
	resp, err := r.client.Get(ctx, url, ldp.WithAccept(rdf.MediaTurtle))
	if err != nil {
		return nil, apperror.NewTransport("failed to fetch resource", err)
	}
	if ldp.IsNotFound(resp.Err()) {
		return nil, apperror.NewNotFound(ref.Kind.String(), ref.PID).WithInternal(resp.Err())
	}
	if err := resp.Err(); err != nil {
		return nil, apperror.NewTransport(fmt.Sprintf("unexpected return value %d when fetching %s", resp.StatusCode, url), err)
	}
	if !rdf.IsTurtle(resp.Header.Get("Content-Type")) {
		return nil, apperror.NewTransport(
			fmt.Sprintf("unknown response format. got '%s', but was expecting '%s'", resp.Header.Get("Content-Type"), rdf.MediaTurtle), nil)
	}
	g, err := rdf.ParseTurtle(resp.Body)
	if err != nil {
		return nil, apperror.NewTransport("failed to parse resource", err)
	}
	return g, nil
}

// split separates the triples about ref into descriptive and relationship
// graphs. See rdf.Registry.IsRelationTriple.
func (r *Repository) split(g *rdf.Graph, ref identity.Ref) (attrs, rels *rdf.Graph) {
	attrs, rels = rdf.NewGraph(), rdf.NewGraph()
	subject := rdf.IRI(ref.URI)
	for _, t := range g.Triples() {
		if t.Subject != subject {
			continue
		}
		if r.registry.IsRelationTriple(t) {
			rels.Add(t)
		} else {
			attrs.Add(t)
		}
	}
	return attrs, rels
}

// LoadRelationships fetches the persisted relationships of ref.
func (r *Repository) LoadRelationships(ctx context.Context, ref identity.Ref) (*rdf.Graph, error) {
	g, err := r.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	_, rels := r.split(g, ref)
	return rels, nil
}

// Reload replaces the in-memory state of b with the repository's.
func (r *Repository) Reload(ctx context.Context, b *Base) error {
	if b.ref.IsZero() {
		return apperror.NewPrecondition("cannot reload a resource that has not been saved")
	}
	g, err := r.fetch(ctx, b.ref)
	if err != nil {
		return err
	}
	attrs, rels := r.split(g, b.ref)
	b.attrs = attrs
	b.rels.Replace(rels)
	b.persisted = true
	return nil
}

// Destroy deletes b. Its relationships and cached history are dropped.
func (r *Repository) Destroy(ctx context.Context, b *Base) error {
	if err := r.delete(ctx, b.ref); err != nil {
		return err
	}
	b.persisted = false
	b.rels.ClearAll()
	b.versions.Invalidate()
	return nil
}

func (r *Repository) delete(ctx context.Context, ref identity.Ref) error {
	if ref.IsZero() {
		return apperror.NewPrecondition("cannot destroy a resource that has not been saved")
	}
	resp, err := r.client.Delete(ctx, ref.URI)
	if err != nil {
		return apperror.NewTransport("failed to delete resource", err)
	}
	if ldp.IsNotFound(resp.Err()) {
		return apperror.NewNotFound(ref.Kind.String(), ref.PID)
	}
	if err := resp.Err(); err != nil {
		return apperror.NewTransport(fmt.Sprintf("unexpected return value %d when deleting %s", resp.StatusCode, ref.URI), err)
	}
	r.log.Debug("resource destroyed", slog.String("uri", ref.URI))
	return nil
}
