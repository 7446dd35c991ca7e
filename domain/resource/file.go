package resource

import (
	"context"
	"fmt"
	"log/slog"
	"mime"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/domain/versioning"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/ldp"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

const (
	metadataSegment = "/fcr:metadata"

	// DefaultMediaType is sent for files without a media type.
	DefaultMediaType = "application/octet-stream"
)

var _ Versionable = (*File)(nil)

// File is a binary datastream: content bytes with a media type and an
// original file name. Its description, including the versionable marker,
// lives in the repository at "<uri>/fcr:metadata".
//
// Model.RefreshAttributes is not called for files.
type File struct {
	model  *Model
	repo   *Repository
	ref    identity.Ref
	parent *Base
	dsid   string

	content      []byte
	mediaType    string
	originalName string
	description  *rdf.Graph
	versions     *versioning.Controller
	persisted    bool
}

func newFile(repo *Repository, parent *Base, dsid string, model *Model, ref identity.Ref) *File {
	f := &File{
		model:       model,
		repo:        repo,
		ref:         ref,
		parent:      parent,
		dsid:        dsid,
		description: rdf.NewGraph(),
	}
	f.versions = versioning.NewController(f, repo.client, repo.log)
	return f
}

// NewFile returns an unsaved binary datastream dsid inside parent.
func (r *Repository) NewFile(parent *Base, dsid string, model *Model) *File {
	return newFile(r, parent, dsid, model, identity.Ref{})
}

// FindFile loads binary datastream dsid of parent.
func (r *Repository) FindFile(ctx context.Context, parent *Base, dsid string, model *Model) (*File, error) {
	if parent.ref.IsZero() {
		return nil, apperror.NewPrecondition("datastream parent has not been saved")
	}
	f := newFile(r, parent, dsid, model, r.resolver.Datastream(parent.ref.PID, dsid))
	if err := r.ReloadFile(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveFile writes the content of f with its media type, then its description
// when there is one. Versionable files are marked mix:versionable first.
func (r *Repository) SaveFile(ctx context.Context, f *File) error {
	if f.ref.IsZero() {
		if f.parent == nil || f.parent.ref.IsZero() {
			return apperror.NewPrecondition("datastream parent has not been saved")
		}
		f.ref = r.resolver.Datastream(f.parent.ref.PID, f.dsid)
	}

	var opts []ldp.RequestOption
	if f.originalName != "" {
		opts = append(opts, ldp.WithHeader("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": f.originalName})))
	}
	if err := r.put(ctx, f.ref.URI, f.MediaType(), f.content, opts...); err != nil {
		return err
	}

	if f.model.Versionable {
		versioning.AssertVersionable(f.description, f.ref)
	}
	if f.description.Len() > 0 {
		body, err := rdf.MarshalTurtle(f.description)
		if err != nil {
			return apperror.NewInternal("failed to serialize file description", err)
		}
		if err := r.put(ctx, f.ref.URI+metadataSegment, rdf.MediaTurtle, body); err != nil {
			return err
		}
	}

	created := !f.persisted
	f.persisted = true
	f.versions.Invalidate()
	r.log.Debug("file saved",
		slog.String("uri", f.ref.URI),
		slog.Int("size", len(f.content)),
		slog.Bool("created", created))
	return nil
}

// ReloadFile replaces the content and description of f with the
// repository's.
func (r *Repository) ReloadFile(ctx context.Context, f *File) error {
	if f.ref.IsZero() {
		return apperror.NewPrecondition("cannot reload a resource that has not been saved")
	}
	resp, err := r.client.Get(ctx, f.ref.URI, ldp.WithAccept("*/*"))
	if err != nil {
		return apperror.NewTransport("failed to fetch file", err)
	}
	if ldp.IsNotFound(resp.Err()) {
		return apperror.NewNotFound(f.ref.Kind.String(), f.ref.PID).WithInternal(resp.Err())
	}
	if err := resp.Err(); err != nil {
		return apperror.NewTransport(fmt.Sprintf("unexpected return value %d when fetching %s", resp.StatusCode, f.ref.URI), err)
	}

	desc, err := r.fetchAt(ctx, f.ref.URI+metadataSegment, f.ref)
	if err != nil {
		return err
	}

	f.content = resp.Body
	f.mediaType = resp.ContentType()
	f.originalName = ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		f.originalName = params["filename"]
	}
	f.description = desc
	f.persisted = true
	return nil
}

// DestroyFile deletes f and drops its cached history.
func (r *Repository) DestroyFile(ctx context.Context, f *File) error {
	if err := r.delete(ctx, f.ref); err != nil {
		return err
	}
	f.persisted = false
	f.versions.Invalidate()
	return nil
}

// Ref returns the file identity, zero until first save.
func (f *File) Ref() identity.Ref { return f.ref }

// URI returns the repository URI, empty until first save.
func (f *File) URI() string { return f.ref.URI }

// Model returns the file type.
func (f *File) Model() *Model { return f.model }

// Persisted reports whether the file exists in the repository.
func (f *File) Persisted() bool { return f.persisted }

// Content returns the file bytes. The slice must not be modified.
func (f *File) Content() []byte { return f.content }

// Size returns the content length in bytes.
func (f *File) Size() int { return len(f.content) }

// MediaType returns the content type, DefaultMediaType when unset.
func (f *File) MediaType() string {
	if f.mediaType == "" {
		return DefaultMediaType
	}
	return f.mediaType
}

// OriginalName returns the file name the content was uploaded under.
func (f *File) OriginalName() string { return f.originalName }

// SetContent replaces the content and its media type.
func (f *File) SetContent(content []byte, mediaType string) {
	f.content = append([]byte(nil), content...)
	f.mediaType = mediaType
}

// SetOriginalName sets the name sent with the content on save.
func (f *File) SetOriginalName(name string) { f.originalName = name }

// Description returns a copy of the file's descriptive graph.
func (f *File) Description() *rdf.Graph { return f.description.Clone() }

func (f *File) Save(ctx context.Context) error    { return f.repo.SaveFile(ctx, f) }
func (f *File) Reload(ctx context.Context) error  { return f.repo.ReloadFile(ctx, f) }
func (f *File) Destroy(ctx context.Context) error { return f.repo.DestroyFile(ctx, f) }

// Version capability

func (f *File) Versionable() bool {
	return f.model.Versionable
}

// ModelType returns the rdf:type values of the description.
func (f *File) ModelType() []string {
	return f.versions.ModelType(f.description)
}

func (f *File) Versions(ctx context.Context) ([]versioning.Version, error) {
	return f.versions.Versions(ctx)
}

func (f *File) CreateVersion(ctx context.Context) (bool, error) {
	return f.versions.CreateVersion(ctx)
}

func (f *File) RestoreVersion(ctx context.Context, id string) (bool, error) {
	return f.versions.RestoreVersion(ctx, id)
}

func (f *File) RootVersion(ctx context.Context) (versioning.Version, bool, error) {
	return f.versions.RootVersion(ctx)
}

func (f *File) InitialVersion(ctx context.Context) (versioning.Version, bool, error) {
	return f.versions.InitialVersion(ctx)
}

func (f *File) LatestVersion(ctx context.Context) (versioning.Version, bool, error) {
	return f.versions.LatestVersion(ctx)
}
