package versioning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/ldp"
	"github.com/emergent-company/ldpgraph/pkg/logger"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// historyServer is a minimal fcr:versions endpoint for one resource.
type historyServer struct {
	*httptest.Server

	mu          sync.Mutex
	labels      []string
	gets        int
	status      int
	contentType string
	restored    []string
}

func newHistoryServer(t *testing.T) *historyServer {
	t.Helper()
	hs := &historyServer{labels: []string{"root"}, contentType: "text/turtle"}
	hs.Server = httptest.NewServer(http.HandlerFunc(hs.handle))
	t.Cleanup(hs.Close)
	return hs
}

func (hs *historyServer) subjectURI() string {
	return hs.URL + "/rest/test:1"
}

func (hs *historyServer) handle(w http.ResponseWriter, r *http.Request) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	versions := "/rest/test:1/fcr:versions"
	switch {
	case r.Method == http.MethodGet && r.URL.Path == versions:
		hs.gets++
		if hs.status != 0 {
			w.WriteHeader(hs.status)
			return
		}
		w.Header().Set("Content-Type", hs.contentType)
		_, _ = w.Write([]byte(hs.turtle()))
	case r.Method == http.MethodPost && r.URL.Path == versions:
		if hs.status != 0 {
			w.WriteHeader(hs.status)
			return
		}
		label := fmt.Sprintf("v%d", len(hs.labels))
		hs.labels = append(hs.labels, label)
		w.Header().Set("Location", hs.subjectURI()+"/fcr:versions/"+label)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, versions+"/"):
		id := strings.TrimPrefix(r.URL.Path, versions+"/")
		hs.restored = append(hs.restored, id)
		hs.labels = append(hs.labels, fmt.Sprintf("auto%d", len(hs.labels)))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (hs *historyServer) turtle() string {
	var b strings.Builder
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	// newest first, so ordering relies on fedora:created
	for i := len(hs.labels) - 1; i >= 0; i-- {
		v := hs.subjectURI() + "/fcr:versions/" + hs.labels[i]
		fmt.Fprintf(&b, "<%s> <%s> <%s> .\n", hs.subjectURI(), rdf.FedoraHasVersion, v)
		fmt.Fprintf(&b, "<%s> <%s> %q .\n", v, rdf.FedoraHasVersionLabel, hs.labels[i])
		fmt.Fprintf(&b, "<%s> <%s> \"%s\"^^<%s> .\n", v, rdf.FedoraCreated,
			start.Add(time.Duration(i)*time.Minute).Format(time.RFC3339), rdf.XSDDateTime)
	}
	return b.String()
}

func (hs *historyServer) getCount() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.gets
}

type fakeSubject struct {
	ref       identity.Ref
	reloads   int
	reloadErr error
}

func (s *fakeSubject) Ref() identity.Ref { return s.ref }

func (s *fakeSubject) Reload(context.Context) error {
	s.reloads++
	return s.reloadErr
}

type refreshingSubject struct {
	fakeSubject
	refreshes int
}

func (s *refreshingSubject) RefreshAttributes(context.Context) error {
	s.refreshes++
	return nil
}

func newController(t *testing.T, hs *historyServer, subject Subject) *Controller {
	t.Helper()
	client := ldp.NewClient(ldp.Config{BaseURL: hs.URL + "/rest"}, logger.Discard())
	return NewController(subject, client, logger.Discard())
}

func savedSubject(hs *historyServer) *fakeSubject {
	return &fakeSubject{ref: identity.NewResolver(hs.URL + "/rest").Object("test:1")}
}

func TestURLDerivation(t *testing.T) {
	hs := newHistoryServer(t)
	c := newController(t, hs, savedSubject(hs))
	assert.Equal(t, hs.subjectURI()+"/fcr:versions", c.VersionsURL())
	assert.Equal(t, hs.subjectURI()+"/fcr:versions/abc", c.VersionURL("abc"))

	unsaved := newController(t, hs, &fakeSubject{})
	assert.Empty(t, unsaved.VersionsURL())
	assert.Empty(t, unsaved.VersionURL("abc"))
}

func TestVersionsWithoutURIIsEmpty(t *testing.T) {
	hs := newHistoryServer(t)
	subject := &fakeSubject{}
	c := newController(t, hs, subject)

	versions, err := c.Versions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.Zero(t, hs.getCount())

	ok, err := c.CreateVersion(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.RestoreVersion(context.Background(), "v1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, subject.reloads)
}

func TestVersionsNotFoundIsEmpty(t *testing.T) {
	hs := newHistoryServer(t)
	hs.status = http.StatusNotFound
	c := newController(t, hs, savedSubject(hs))

	versions, err := c.Versions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestVersionsServerErrorIsFatal(t *testing.T) {
	hs := newHistoryServer(t)
	hs.status = http.StatusInternalServerError
	c := newController(t, hs, savedSubject(hs))

	_, err := c.Versions(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Contains(t, err.Error(), "unexpected return value 500")

	var ldpErr *ldp.Error
	require.True(t, errors.As(err, &ldpErr))
	assert.Equal(t, http.StatusInternalServerError, ldpErr.StatusCode)
}

func TestVersionsWrongContentTypeIsFatal(t *testing.T) {
	hs := newHistoryServer(t)
	hs.contentType = "application/ld+json"
	c := newController(t, hs, savedSubject(hs))

	_, err := c.Versions(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Contains(t, err.Error(), "unknown response format")
}

func TestVersionsAcceptsTurtleWithCharset(t *testing.T) {
	hs := newHistoryServer(t)
	hs.contentType = "text/turtle;charset=utf-8"
	c := newController(t, hs, savedSubject(hs))

	versions, err := c.Versions(context.Background())
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestVersionsTransportFailure(t *testing.T) {
	hs := newHistoryServer(t)
	c := newController(t, hs, savedSubject(hs))
	hs.Close()

	_, err := c.Versions(context.Background())
	assert.ErrorIs(t, err, apperror.ErrTransport)

	ok, err := c.CreateVersion(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperror.ErrTransport)

	ok, err = c.RestoreVersion(context.Background(), "v1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperror.ErrTransport)
}

func TestCreateVersionGrowsHistory(t *testing.T) {
	for _, n := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("%d creates", n), func(t *testing.T) {
			ctx := context.Background()
			hs := newHistoryServer(t)
			subject := savedSubject(hs)
			c := newController(t, hs, subject)

			for i := 0; i < n; i++ {
				ok, err := c.CreateVersion(ctx)
				require.NoError(t, err)
				assert.True(t, ok)
			}
			assert.Equal(t, n, subject.reloads)

			versions, err := c.Versions(ctx)
			require.NoError(t, err)
			require.Len(t, versions, n+1)
			assert.Equal(t, "root", versions[0].Label)
			for i := 1; i < len(versions); i++ {
				assert.True(t, versions[i-1].Created.Before(versions[i].Created))
			}
		})
	}
}

func TestCacheInvalidatedByCreateAndRestore(t *testing.T) {
	ctx := context.Background()
	hs := newHistoryServer(t)
	c := newController(t, hs, savedSubject(hs))

	v, err := c.Versions(ctx)
	require.NoError(t, err)
	require.Len(t, v, 1)
	_, err = c.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, hs.getCount())

	_, err = c.CreateVersion(ctx)
	require.NoError(t, err)
	v, err = c.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, v, 2)
	assert.Equal(t, 2, hs.getCount())

	_, err = c.RestoreVersion(ctx, v[1].ID())
	require.NoError(t, err)
	v, err = c.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, v, 3)

	c.Invalidate()
	_, err = c.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, hs.getCount())
}

func TestCreateVersionReportsServerFailure(t *testing.T) {
	ctx := context.Background()
	hs := newHistoryServer(t)
	subject := savedSubject(hs)
	c := newController(t, hs, subject)

	_, err := c.Versions(ctx)
	require.NoError(t, err)

	hs.mu.Lock()
	hs.status = http.StatusConflict
	hs.mu.Unlock()

	ok, err := c.CreateVersion(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, subject.reloads)

	// cache was dropped, so the failing server is consulted again
	_, err = c.Versions(ctx)
	assert.ErrorIs(t, err, apperror.ErrTransport)
}

func TestCreateVersionReloadError(t *testing.T) {
	hs := newHistoryServer(t)
	subject := savedSubject(hs)
	subject.reloadErr = errors.New("boom")
	c := newController(t, hs, subject)

	ok, err := c.CreateVersion(context.Background())
	assert.True(t, ok)
	assert.ErrorContains(t, err, "boom")
}

func TestRestoreVersion(t *testing.T) {
	ctx := context.Background()
	hs := newHistoryServer(t)
	subject := &refreshingSubject{fakeSubject: *savedSubject(hs)}
	c := newController(t, hs, subject)

	_, err := c.CreateVersion(ctx)
	require.NoError(t, err)
	_, err = c.CreateVersion(ctx)
	require.NoError(t, err)

	versions, err := c.Versions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 3)

	ok, err := c.RestoreVersion(ctx, versions[1].ID())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"v1"}, hs.restored)
	assert.Equal(t, 3, subject.reloads)
	assert.Equal(t, 1, subject.refreshes)

	versions, err = c.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 4)
}

func TestRootInitialLatest(t *testing.T) {
	ctx := context.Background()
	hs := newHistoryServer(t)
	c := newController(t, hs, savedSubject(hs))

	root, ok, err := c.RootVersion(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "root", root.ID())

	_, ok, err = c.InitialVersion(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CreateVersion(ctx)
	require.NoError(t, err)

	initial, ok, err := c.InitialVersion(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	latest, ok, err := c.LatestVersion(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, initial, latest)

	unsaved := newController(t, hs, &fakeSubject{})
	_, ok, err = unsaved.LatestVersion(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssertVersionableIsIdempotent(t *testing.T) {
	hs := newHistoryServer(t)
	subject := savedSubject(hs)
	c := newController(t, hs, subject)

	g := rdf.NewGraph(rdf.NewTriple(subject.ref.URI, rdf.DCTitle, rdf.Literal("x")))
	assert.True(t, c.AssertVersionable(g))
	assert.False(t, c.AssertVersionable(g))
	assert.Equal(t, []string{rdf.MixVersionable}, c.ModelType(g))
}
