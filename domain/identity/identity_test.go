package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverDerivesURIs(t *testing.T) {
	r := NewResolver("http://localhost:8080/rest/")

	obj := r.Object("test:1")
	assert.Equal(t, "http://localhost:8080/rest/test:1", obj.URI)
	assert.Equal(t, KindObject, obj.Kind)
	assert.Equal(t, "info:fedora/test:1", obj.InfoURI())

	ds := r.Datastream("test:1", "descMetadata")
	assert.Equal(t, "http://localhost:8080/rest/test:1/descMetadata", ds.URI)
	assert.Equal(t, KindDatastream, ds.Kind)
	assert.Equal(t, "datastream", ds.Kind.String())
	assert.Equal(t, "test:1", ds.PID)
}

func TestResolverPIDFromURI(t *testing.T) {
	r := NewResolver("http://localhost:8080/rest")

	tests := []struct {
		in   string
		want string
	}{
		{"info:fedora/xyz:123", "xyz:123"},
		{"http://localhost:8080/rest/xyz:123", "xyz:123"},
		{"http://localhost:8080/rest/xyz:123/descMetadata", "xyz:123"},
		{"xyz:123", "xyz:123"},
		{"http://elsewhere.org/abc", "http://elsewhere.org/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.PIDFromURI(tt.in))
		})
	}
}

func TestRefZero(t *testing.T) {
	var ref Ref
	assert.True(t, ref.IsZero())
	assert.Empty(t, ref.InfoURI())
}

func TestMinter(t *testing.T) {
	pid := NewMinter("test").Mint()
	ns, id, ok := strings.Cut(pid, ":")
	require.True(t, ok)
	assert.Equal(t, "test", ns)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	assert.NotEqual(t, pid, NewMinter("test").Mint())

	_, err = uuid.Parse(NewMinter("").Mint())
	assert.NoError(t, err)
}
