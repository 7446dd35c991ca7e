package ldpstub

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

const (
	versionsSegment = "fcr:versions"
	metadataSegment = "fcr:metadata"
)

// rdfMediaTypes are request bodies treated as RDF sources. Anything else is
// stored as a binary.
var rdfMediaTypes = map[string]bool{
	"":                    true,
	rdf.MediaTurtle:       true,
	rdf.MediaNTriples:     true,
	"application/rdf+xml": true,
	"application/ld+json": true,
}

// Handler serves the repository endpoints.
type Handler struct {
	store    *Store
	basePath string
	log      *slog.Logger
}

// NewHandler creates a handler mounted at basePath.
func NewHandler(store *Store, basePath string, log *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		basePath: "/" + strings.Trim(basePath, "/"),
		log:      log.With(logger.Scope("ldpstub.handler")),
	}
}

// target is a parsed request path.
type target struct {
	path     string // resource path below the base, "" for the root
	versions bool
	label    string
	metadata bool
}

func (h *Handler) parse(c echo.Context) target {
	rel := strings.Trim(strings.TrimPrefix(c.Request().URL.Path, h.basePath), "/")
	var t target
	parts := strings.Split(rel, "/")
	if n := len(parts); n > 1 && parts[n-1] == metadataSegment {
		t.path = strings.Join(parts[:n-1], "/")
		t.metadata = true
		return t
	}
	for i, p := range parts {
		if p == versionsSegment {
			t.versions = true
			t.path = strings.Join(parts[:i], "/")
			t.label = strings.Join(parts[i+1:], "/")
			return t
		}
	}
	t.path = rel
	return t
}

func (h *Handler) uri(c echo.Context, path string) string {
	return c.Scheme() + "://" + c.Request().Host + h.basePath + "/" + path
}

func negotiate(c echo.Context) string {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), rdf.MediaNTriples) {
		return rdf.MediaNTriples
	}
	return rdf.MediaTurtle
}

func (h *Handler) writeGraph(c echo.Context, status int, g *rdf.Graph) error {
	mt := negotiate(c)
	var buf bytes.Buffer
	if err := rdf.Encode(&buf, g, mt); err != nil {
		return apperror.NewInternal("failed to serialize graph", err)
	}
	if c.Request().Method == http.MethodHead {
		c.Response().Header().Set(echo.HeaderContentType, mt)
		return c.NoContent(status)
	}
	return c.Blob(status, mt, buf.Bytes())
}

func (h *Handler) writeBinary(c echo.Context, b *Binary) error {
	header := c.Response().Header()
	if b.Filename != "" {
		header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": b.Filename}))
	}
	if c.Request().Method == http.MethodHead {
		header.Set(echo.HeaderContentType, b.MediaType)
		return c.NoContent(http.StatusOK)
	}
	return c.Blob(http.StatusOK, b.MediaType, b.Content)
}

func (h *Handler) write(c echo.Context, status int, r Resource) error {
	if r.Binary != nil {
		return h.writeBinary(c, r.Binary)
	}
	return h.writeGraph(c, status, r.Graph)
}

func (h *Handler) readBinary(c echo.Context) (Binary, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return Binary{}, apperror.NewBadRequest("failed to read request body")
	}
	b := Binary{Content: body, MediaType: c.Request().Header.Get(echo.HeaderContentType)}
	if cd := c.Request().Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			b.Filename = params["filename"]
		}
	}
	return b, nil
}

// save writes the request body to path as an RDF source or a binary,
// depending on its content type.
func (h *Handler) save(c echo.Context, path string) (bool, error) {
	if !rdfMediaTypes[rdf.MediaType(c.Request().Header.Get(echo.HeaderContentType))] {
		b, err := h.readBinary(c)
		if err != nil {
			return false, err
		}
		return h.store.PutBinary(path, b)
	}
	g, err := h.readGraph(c)
	if err != nil {
		return false, err
	}
	return h.store.Put(path, g)
}

func (h *Handler) readGraph(c echo.Context) (*rdf.Graph, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperror.NewBadRequest("failed to read request body")
	}
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if len(bytes.TrimSpace(body)) == 0 {
		return rdf.NewGraph(), nil
	}
	g, err := rdf.Decode(bytes.NewReader(body), ct)
	if errors.Is(err, rdf.ErrUnsupportedMediaType) {
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	}
	if err != nil {
		return nil, apperror.NewBadRequest("malformed RDF body").WithInternal(err)
	}
	return g, nil
}

// Get returns a resource, a binary description, the version history, or one
// stored version.
func (h *Handler) Get(c echo.Context) error {
	t := h.parse(c)
	if t.path == "" {
		return apperror.NewBadRequest("the repository root is not readable")
	}
	switch {
	case t.metadata:
		b, err := h.store.Binary(t.path)
		if err != nil {
			return err
		}
		if b == nil {
			return apperror.NewNotFound("binary", t.path)
		}
		g, err := h.store.Get(t.path)
		if err != nil {
			return err
		}
		return h.writeGraph(c, http.StatusOK, g)
	case t.versions && t.label == "":
		return h.history(c, t.path)
	case t.versions:
		r, err := h.store.Version(t.path, t.label)
		if err != nil {
			return err
		}
		return h.write(c, http.StatusOK, r)
	default:
		b, err := h.store.Binary(t.path)
		if err != nil {
			return err
		}
		if b != nil {
			return h.writeBinary(c, b)
		}
		g, err := h.store.Get(t.path)
		if err != nil {
			return err
		}
		return h.writeGraph(c, http.StatusOK, g)
	}
}

func (h *Handler) history(c echo.Context, path string) error {
	versions, err := h.store.Versions(path)
	if err != nil {
		return err
	}
	subject := h.uri(c, path)
	g := rdf.NewGraph()
	for _, v := range versions {
		vuri := subject + "/" + versionsSegment + "/" + v.Label
		g.Add(rdf.NewTriple(subject, rdf.FedoraHasVersion, rdf.IRI(vuri)))
		g.Add(rdf.NewTriple(vuri, rdf.FedoraHasVersionLabel, rdf.Literal(v.Label)))
		g.Add(rdf.NewTriple(vuri, rdf.FedoraCreated, rdf.TypedLiteral(v.Created.Format("2006-01-02T15:04:05.000000Z07:00"), rdf.XSDDateTime)))
	}
	return h.writeGraph(c, http.StatusOK, g)
}

// Put creates or replaces a resource, or the description of a binary.
func (h *Handler) Put(c echo.Context) error {
	t := h.parse(c)
	if t.versions || t.path == "" {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "PUT is not allowed here")
	}
	if t.metadata {
		g, err := h.readGraph(c)
		if err != nil {
			return err
		}
		if err := h.store.PutDescription(t.path, g); err != nil {
			return err
		}
		OperationsTotal.WithLabelValues("put_metadata").Inc()
		return c.NoContent(http.StatusNoContent)
	}
	created, err := h.save(c, t.path)
	if err != nil {
		return err
	}
	OperationsTotal.WithLabelValues("put").Inc()
	if created {
		uri := h.uri(c, t.path)
		c.Response().Header().Set(echo.HeaderLocation, uri)
		return c.String(http.StatusCreated, uri)
	}
	return c.NoContent(http.StatusNoContent)
}

// Post creates a version on fcr:versions, or a child resource elsewhere.
// The Slug header names the new version or child.
func (h *Handler) Post(c echo.Context) error {
	t := h.parse(c)
	slug := strings.TrimSpace(c.Request().Header.Get("Slug"))

	if t.metadata {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "POST is not allowed on a description")
	}
	if t.versions {
		if t.label != "" {
			return echo.NewHTTPError(http.StatusMethodNotAllowed, "POST is not allowed on a version")
		}
		snap, err := h.store.CreateVersion(t.path, slug)
		if err != nil {
			return err
		}
		OperationsTotal.WithLabelValues("create_version").Inc()
		uri := h.uri(c, t.path) + "/" + versionsSegment + "/" + snap.Label
		h.log.Debug("version created", slog.String("uri", uri))
		c.Response().Header().Set(echo.HeaderLocation, uri)
		return c.String(http.StatusCreated, uri)
	}

	if t.path != "" && !h.store.Exists(t.path) {
		return apperror.NewNotFound("resource", t.path)
	}
	if slug == "" {
		slug = uuid.NewString()
	}
	child := strings.TrimPrefix(t.path+"/"+slug, "/")
	if h.store.Exists(child) {
		return apperror.ErrConflict.WithMessage("resource '" + child + "' already exists")
	}
	if _, err := h.save(c, child); err != nil {
		return err
	}
	OperationsTotal.WithLabelValues("post").Inc()
	uri := h.uri(c, child)
	c.Response().Header().Set(echo.HeaderLocation, uri)
	return c.String(http.StatusCreated, uri)
}

// Patch restores a version.
func (h *Handler) Patch(c echo.Context) error {
	t := h.parse(c)
	if !t.versions || t.label == "" {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "PATCH is only supported on a version")
	}
	if err := h.store.RestoreVersion(t.path, t.label); err != nil {
		return err
	}
	OperationsTotal.WithLabelValues("restore_version").Inc()
	h.log.Debug("version restored", slog.String("path", t.path), slog.String("label", t.label))
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a resource or a version.
func (h *Handler) Delete(c echo.Context) error {
	t := h.parse(c)
	switch {
	case t.path == "" || t.metadata:
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "DELETE is not allowed here")
	case t.versions && t.label == "":
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "the version history cannot be deleted")
	case t.versions:
		if err := h.store.DeleteVersion(t.path, t.label); err != nil {
			return err
		}
		OperationsTotal.WithLabelValues("delete_version").Inc()
	default:
		if err := h.store.Delete(t.path); err != nil {
			return err
		}
		OperationsTotal.WithLabelValues("delete").Inc()
	}
	return c.NoContent(http.StatusNoContent)
}
