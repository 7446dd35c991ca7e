// Package versioning creates, lists and restores snapshots of a repository
// resource through its fcr:versions sub-resource.
//
// A Controller belongs to one resource instance and is not safe for
// concurrent use. The version count lives on the server; the controller only
// caches the last parsed history and drops it on every create or restore.
package versioning

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/ldp"
	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

const versionsSegment = "/fcr:versions"

// Transport is the subset of the LDP client the controller uses.
type Transport interface {
	Get(ctx context.Context, url string, opts ...ldp.RequestOption) (*ldp.Response, error)
	Post(ctx context.Context, url, contentType string, body []byte, opts ...ldp.RequestOption) (*ldp.Response, error)
	Patch(ctx context.Context, url, contentType string, body []byte, opts ...ldp.RequestOption) (*ldp.Response, error)
}

// Subject is the versioned resource.
type Subject interface {
	Ref() identity.Ref
	// Reload re-reads the resource's state from the repository.
	Reload(ctx context.Context) error
}

// AttributeRefresher is implemented by subjects holding attributes derived
// from their state that must be recomputed after a restore.
type AttributeRefresher interface {
	RefreshAttributes(ctx context.Context) error
}

// Controller manages the version history of one subject.
type Controller struct {
	subject   Subject
	transport Transport
	log       *slog.Logger
	cache     historyCache
}

// NewController creates a controller for subject.
func NewController(subject Subject, transport Transport, log *slog.Logger) *Controller {
	return &Controller{
		subject:   subject,
		transport: transport,
		log:       log.With(logger.Scope("versioning")),
	}
}

// VersionsURL is "<uri>/fcr:versions", or empty while the subject has no URI.
func (c *Controller) VersionsURL() string {
	ref := c.subject.Ref()
	if ref.IsZero() {
		return ""
	}
	return ref.URI + versionsSegment
}

// VersionURL is the URL of version id, or empty while the subject has no URI.
func (c *Controller) VersionURL(id string) string {
	versions := c.VersionsURL()
	if versions == "" {
		return ""
	}
	return versions + "/" + id
}

// Invalidate drops the cached history.
func (c *Controller) Invalidate() {
	c.cache.invalidate()
}

// Versions returns the history, root first. A subject without a URI, or one
// the repository has no history for, has an empty history.
func (c *Controller) Versions(ctx context.Context) ([]Version, error) {
	if versions, ok := c.cache.get(); ok {
		return versions, nil
	}
	if c.VersionsURL() == "" {
		return nil, nil
	}
	versions, err := c.fetchHistory(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.put(versions)
	out := make([]Version, len(versions))
	copy(out, versions)
	return out, nil
}

func (c *Controller) fetchHistory(ctx context.Context) ([]Version, error) {
	url := c.VersionsURL()
	resp, err := c.transport.Get(ctx, url, ldp.WithAccept(rdf.MediaTurtle))
	if err != nil {
		return nil, apperror.NewTransport("failed to fetch version history", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if !resp.Success() {
		return nil, apperror.NewTransport(
			fmt.Sprintf("unexpected return value %d when getting versions at %s", resp.StatusCode, url),
			resp.Err())
	}
	if ct := resp.Header.Get("Content-Type"); !rdf.IsTurtle(ct) {
		return nil, apperror.NewTransport(
			fmt.Sprintf("unknown response format. got '%s', but was expecting '%s'", ct, rdf.MediaTurtle),
			&ldp.Error{StatusCode: resp.StatusCode, Method: http.MethodGet, URL: url, Message: "unexpected content type"})
	}

	g, err := rdf.ParseTurtle(resp.Body)
	if err != nil {
		return nil, apperror.NewTransport("failed to parse version history", err)
	}
	return parseVersions(g, c.subject.Ref().URI), nil
}

// CreateVersion snapshots the subject's current state. The bool is the
// repository's verdict; an error is returned only when the request could not
// be made or the follow-up reload failed. Without a URI nothing is sent.
func (c *Controller) CreateVersion(ctx context.Context) (bool, error) {
	url := c.VersionsURL()
	if url == "" {
		return false, nil
	}
	resp, err := c.transport.Post(ctx, url, "", nil)
	if err != nil {
		return false, apperror.NewTransport("failed to create version", err)
	}
	c.Invalidate()

	ok := resp.Success()
	c.log.Info("version created",
		slog.String("uri", c.subject.Ref().URI),
		slog.Int("status", resp.StatusCode),
		slog.String("location", resp.Location()))

	if err := c.subject.Reload(ctx); err != nil {
		return ok, fmt.Errorf("reload after create version: %w", err)
	}
	return ok, nil
}

// RestoreVersion reverts the subject to version id. It reports success the
// same way CreateVersion does and refreshes derived attributes afterwards.
func (c *Controller) RestoreVersion(ctx context.Context, id string) (bool, error) {
	url := c.VersionURL(id)
	if url == "" {
		return false, nil
	}
	resp, err := c.transport.Patch(ctx, url, "", nil)
	if err != nil {
		return false, apperror.NewTransport("failed to restore version", err)
	}
	c.Invalidate()

	ok := resp.Success()
	c.log.Info("version restored",
		slog.String("uri", c.subject.Ref().URI),
		slog.String("version", id),
		slog.Int("status", resp.StatusCode))

	if err := c.subject.Reload(ctx); err != nil {
		return ok, fmt.Errorf("reload after restore version: %w", err)
	}
	if r, isRefresher := c.subject.(AttributeRefresher); isRefresher {
		if err := r.RefreshAttributes(ctx); err != nil {
			return ok, fmt.Errorf("refresh attributes: %w", err)
		}
	}
	return ok, nil
}

// RootVersion returns the oldest entry, recorded with the first created
// version.
func (c *Controller) RootVersion(ctx context.Context) (Version, bool, error) {
	versions, err := c.Versions(ctx)
	if err != nil || len(versions) == 0 {
		return Version{}, false, err
	}
	return versions[0], true, nil
}

// InitialVersion returns the first explicitly created version.
func (c *Controller) InitialVersion(ctx context.Context) (Version, bool, error) {
	versions, err := c.Versions(ctx)
	if err != nil || len(versions) < 2 {
		return Version{}, false, err
	}
	return versions[1], true, nil
}

// LatestVersion returns the newest entry.
func (c *Controller) LatestVersion(ctx context.Context) (Version, bool, error) {
	versions, err := c.Versions(ctx)
	if err != nil || len(versions) == 0 {
		return Version{}, false, err
	}
	return versions[len(versions)-1], true, nil
}

// AssertVersionable ensures g declares the subject mix:versionable. It
// reports whether the marker was added.
func (c *Controller) AssertVersionable(g *rdf.Graph) bool {
	return AssertVersionable(g, c.subject.Ref())
}

// ModelType returns the rdf:type values of the subject in g.
func (c *Controller) ModelType(g *rdf.Graph) []string {
	return ModelType(g, c.subject.Ref())
}

// AssertVersionable inserts "<ref> rdf:type mix:versionable" unless present.
func AssertVersionable(g *rdf.Graph, ref identity.Ref) bool {
	return g.Insert(rdf.NewTriple(ref.URI, rdf.RDFType, rdf.IRI(rdf.MixVersionable)))
}

// ModelType returns the rdf:type values of ref in g.
func ModelType(g *rdf.Graph, ref identity.Ref) []string {
	var out []string
	for _, t := range g.Objects(rdf.IRI(ref.URI), rdf.RDFType) {
		out = append(out, t.Value)
	}
	return out
}
