package versioning

import (
	"sort"
	"strings"
	"time"

	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Version is one snapshot in a resource's history.
type Version struct {
	URI     string
	Label   string
	Created time.Time
}

// ID is the last path segment of the version URI, the value restore expects.
func (v Version) ID() string {
	return v.URI[strings.LastIndex(v.URI, "/")+1:]
}

// parseVersions reads the hasVersion entries of subject from a history
// graph. Entries are ordered by creation time when every entry carries one,
// otherwise graph order is kept.
func parseVersions(g *rdf.Graph, subject string) []Version {
	var out []Version
	dated := true
	for _, obj := range g.Objects(rdf.IRI(subject), rdf.FedoraHasVersion) {
		if !obj.IsIRI() {
			continue
		}
		v := Version{URI: obj.Value}
		if labels := g.Objects(obj, rdf.FedoraHasVersionLabel); len(labels) > 0 {
			v.Label = labels[0].Value
		} else {
			v.Label = v.ID()
		}
		if created := g.Objects(obj, rdf.FedoraCreated); len(created) > 0 {
			if ts, err := time.Parse(time.RFC3339Nano, created[0].Value); err == nil {
				v.Created = ts
			}
		}
		if v.Created.IsZero() {
			dated = false
		}
		out = append(out, v)
	}
	if dated {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Created.Before(out[j].Created)
		})
	}
	return out
}
