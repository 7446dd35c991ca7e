package ldpstub

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Binary is the content of a non-RDF resource.
type Binary struct {
	Content   []byte
	MediaType string
	Filename  string
}

func (b *Binary) clone() *Binary {
	if b == nil {
		return nil
	}
	c := *b
	c.Content = append([]byte(nil), b.Content...)
	return &c
}

// Resource is the stored state of a path. Graph is the RDF body of an RDF
// source, or the description of a binary when Binary is set.
type Resource struct {
	Graph  *rdf.Graph
	Binary *Binary
}

func (r Resource) clone() Resource {
	return Resource{Graph: r.Graph.Clone(), Binary: r.Binary.clone()}
}

// Snapshot is one stored version of a resource.
type Snapshot struct {
	Label   string
	Created time.Time
	state   Resource
}

type node struct {
	state    Resource
	versions []Snapshot
}

// Store is an in-memory Fedora-like repository keyed by resource path. It is
// safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*node
	now   func() time.Time
}

// NewStore creates an empty repository.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*node),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func isVersionable(g *rdf.Graph) bool {
	_, ok := g.First(rdf.Pattern{Predicate: rdf.RDFType, Object: rdf.IRI(rdf.MixVersionable)})
	return ok
}

// Get returns a copy of the graph at path: the body of an RDF source or the
// description of a binary.
func (s *Store) Get(path string) (*rdf.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	if !ok {
		return nil, apperror.NewNotFound("resource", path)
	}
	return n.state.Graph.Clone(), nil
}

// Binary returns a copy of the content at path, nil for an RDF source.
func (s *Store) Binary(path string) (*Binary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	if !ok {
		return nil, apperror.NewNotFound("resource", path)
	}
	return n.state.Binary.clone(), nil
}

// Exists reports whether path holds a resource.
func (s *Store) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[path]
	return ok
}

// checkParent requires the immediate parent of p to exist. Must hold mu.
func (s *Store) checkParent(p string) error {
	parent := path.Dir(p)
	if parent == "." {
		return nil
	}
	if _, ok := s.nodes[parent]; !ok {
		return apperror.ErrConflict.WithMessage(fmt.Sprintf("parent resource '%s' does not exist", parent))
	}
	return nil
}

// Put creates or replaces the RDF source at path and reports whether it was
// created. A binary cannot be replaced by an RDF source.
func (s *Store) Put(path string, g *rdf.Graph) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkParent(path); err != nil {
		return false, err
	}
	n, exists := s.nodes[path]
	if exists && n.state.Binary != nil {
		return false, apperror.ErrConflict.WithMessage(fmt.Sprintf("'%s' is a binary, its description lives at fcr:metadata", path))
	}
	if !exists {
		n = &node{}
		s.nodes[path] = n
	}
	n.state.Graph = g.Clone()
	return !exists, nil
}

// PutBinary creates or replaces the binary at path and reports whether it was
// created. An existing description is kept.
func (s *Store) PutBinary(path string, b Binary) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkParent(path); err != nil {
		return false, err
	}
	n, exists := s.nodes[path]
	if exists && n.state.Binary == nil {
		return false, apperror.ErrConflict.WithMessage(fmt.Sprintf("'%s' is an RDF source and cannot hold binary content", path))
	}
	if !exists {
		n = &node{state: Resource{Graph: rdf.NewGraph()}}
		s.nodes[path] = n
	}
	n.state.Binary = b.clone()
	return !exists, nil
}

// PutDescription replaces the description of the binary at path.
func (s *Store) PutDescription(path string, g *rdf.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	if !ok || n.state.Binary == nil {
		return apperror.NewNotFound("binary", path)
	}
	n.state.Graph = g.Clone()
	return nil
}

// Delete removes the resource at path together with its children.
func (s *Store) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[path]; !ok {
		return apperror.NewNotFound("resource", path)
	}
	for p := range s.nodes {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(s.nodes, p)
		}
	}
	return nil
}

func (s *Store) snapshot(n *node, label string) Snapshot {
	created := s.now()
	if l := len(n.versions); l > 0 && !created.After(n.versions[l-1].Created) {
		// keep creation times strictly increasing
		created = n.versions[l-1].Created.Add(time.Microsecond)
	}
	return Snapshot{Label: label, Created: created, state: n.state.clone()}
}

// Versions lists the history of path, oldest first. A resource that was never
// versioned has no history resource at all.
func (s *Store) Versions(path string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	if !ok || len(n.versions) == 0 {
		return nil, apperror.NewNotFound("version history", path)
	}
	out := make([]Snapshot, len(n.versions))
	copy(out, n.versions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
}

// Version returns the stored state of path at version label.
func (s *Store) Version(path, label string) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[path]
	if !ok {
		return Resource{}, apperror.NewNotFound("resource", path)
	}
	for _, v := range n.versions {
		if v.Label == label {
			return v.state.clone(), nil
		}
	}
	return Resource{}, apperror.NewNotFound("version", label)
}

// CreateVersion snapshots the current state of path. Only resources typed
// mix:versionable can be versioned; the first call also records the root
// version. An empty label gets a generated one.
func (s *Store) CreateVersion(path, label string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	if !ok {
		return Snapshot{}, apperror.NewNotFound("resource", path)
	}
	if !isVersionable(n.state.Graph) {
		return Snapshot{}, apperror.NewBadRequest(fmt.Sprintf("'%s' is not versionable", path))
	}
	if label == "" {
		label = uuid.NewString()
	}
	if strings.Contains(label, "/") {
		return Snapshot{}, apperror.NewBadRequest("version label must not contain '/'")
	}
	for _, v := range n.versions {
		if v.Label == label {
			return Snapshot{}, apperror.ErrConflict.WithMessage(fmt.Sprintf("version '%s' already exists", label))
		}
	}
	if len(n.versions) == 0 {
		n.versions = append(n.versions, s.snapshot(n, uuid.NewString()))
	}
	snap := s.snapshot(n, label)
	n.versions = append(n.versions, snap)
	return snap, nil
}

// RestoreVersion reverts path to version label. The state being replaced is
// snapshotted first, so history only grows.
func (s *Store) RestoreVersion(path, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	if !ok {
		return apperror.NewNotFound("resource", path)
	}
	for _, v := range n.versions {
		if v.Label != label {
			continue
		}
		n.versions = append(n.versions, s.snapshot(n, uuid.NewString()))
		n.state = v.state.clone()
		return nil
	}
	return apperror.NewNotFound("version", label)
}

// DeleteVersion drops version label. The most recent version cannot be
// deleted.
func (s *Store) DeleteVersion(path, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[path]
	if !ok {
		return apperror.NewNotFound("resource", path)
	}
	for i, v := range n.versions {
		if v.Label != label {
			continue
		}
		if i == len(n.versions)-1 {
			return apperror.NewBadRequest("cannot delete the most recent version")
		}
		n.versions = append(n.versions[:i], n.versions[i+1:]...)
		return nil
	}
	return apperror.NewNotFound("version", label)
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
