package resource

import (
	"context"

	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Model describes a resource type. Models form a single-inheritance chain
// through Parent.
type Model struct {
	Name        string
	Parent      *Model
	Versionable bool

	// RefreshAttributes, when set, recomputes derived attributes after a
	// version restore.
	RefreshAttributes func(ctx context.Context, b *Base) error
}

func (m *Model) String() string {
	return m.Name
}

// ClassURI returns the canonical has_model value, "info:fedora/afmodel:<Name>".
func (m *Model) ClassURI() string {
	return rdf.ModelPrefix + m.Name
}

// KindOf reports whether m is other or descends from it.
func (m *Model) KindOf(other *Model) bool {
	if other == nil {
		return false
	}
	return m.IsKindOf(other.ClassURI())
}

// IsKindOf reports whether m or one of its ancestors has classURI.
func (m *Model) IsKindOf(classURI string) bool {
	for c := m; c != nil; c = c.Parent {
		if c.ClassURI() == classURI {
			return true
		}
	}
	return false
}
