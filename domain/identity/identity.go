// Package identity maps repository objects to their PIDs and URIs.
package identity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Kind distinguishes objects from datastreams.
type Kind uint8

const (
	KindObject Kind = iota
	KindDatastream
)

func (k Kind) String() string {
	if k == KindDatastream {
		return "datastream"
	}
	return "object"
}

// Ref identifies a repository object or one of its datastreams. A Ref is a
// value: its URI is derived from the PID once and never reassigned.
type Ref struct {
	URI  string
	PID  string
	DSID string
	Kind Kind
}

// IsZero reports whether the ref identifies nothing (an unsaved resource).
func (r Ref) IsZero() bool {
	return r.URI == ""
}

// InfoURI is the legacy "info:fedora/<pid>" form used as a relationship object.
func (r Ref) InfoURI() string {
	if r.PID == "" {
		return ""
	}
	return InfoURI(r.PID)
}

// InfoURI returns "info:fedora/<pid>".
func InfoURI(pid string) string {
	return rdf.InfoFedoraPrefix + pid
}

// Resolver derives URIs from PIDs against one repository root.
type Resolver struct {
	base string
}

// NewResolver creates a resolver rooted at baseURL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{base: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the repository root.
func (r *Resolver) BaseURL() string {
	return r.base
}

// URIFor returns the repository URI of pid.
func (r *Resolver) URIFor(pid string) string {
	return r.base + "/" + pid
}

// Object returns the ref of an object.
func (r *Resolver) Object(pid string) Ref {
	return Ref{URI: r.URIFor(pid), PID: pid, Kind: KindObject}
}

// Datastream returns the ref of datastream dsid inside object pid.
func (r *Resolver) Datastream(pid, dsid string) Ref {
	return Ref{URI: r.URIFor(pid) + "/" + dsid, PID: pid, DSID: dsid, Kind: KindDatastream}
}

// PIDFromURI extracts the local id from an "info:fedora/" URI or a URI under
// the repository root. Anything else is returned unchanged.
func (r *Resolver) PIDFromURI(uri string) string {
	if pid, ok := strings.CutPrefix(uri, rdf.InfoFedoraPrefix); ok {
		return pid
	}
	if r.base != "" {
		if rest, ok := strings.CutPrefix(uri, r.base+"/"); ok {
			// datastream URIs resolve to their owning object
			pid, _, _ := strings.Cut(rest, "/")
			return pid
		}
	}
	return uri
}

// Minter issues new PIDs in one namespace.
type Minter struct {
	namespace string
}

// NewMinter creates a minter; an empty namespace yields bare UUIDs.
func NewMinter(namespace string) *Minter {
	return &Minter{namespace: namespace}
}

// Mint returns a fresh "<namespace>:<uuid>" PID.
func (m *Minter) Mint() string {
	id := uuid.NewString()
	if m.namespace == "" {
		return id
	}
	return m.namespace + ":" + id
}
