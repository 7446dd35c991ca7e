package resource

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

var (
	binaryModel   = &Model{Name: "BinaryDatastream", Versionable: true}
	dino          = bytes.Repeat([]byte{0xd1}, 2048)
	minivan       = bytes.Repeat([]byte{0x3a}, 5120)
	complexModel  = &Model{Name: "ComplexObject", Parent: baseModel, Versionable: true}
	descMetaModel = &Model{Name: "VersionableDatastream", Versionable: true}
)

func TestVersionableBinaryScenario(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	obj := repo.New(baseModel)
	require.NoError(t, obj.Save(ctx))
	content := repo.NewFile(obj, "content", binaryModel)
	assert.True(t, content.Versionable())

	versions, err := content.Versions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)

	content.SetContent(dino, "image/jpeg")
	content.SetOriginalName("dino.jpg")
	require.NoError(t, content.Save(ctx))
	assert.Equal(t, identity.KindDatastream, content.Ref().Kind)
	assert.Equal(t, obj.URI()+"/content", content.URI())
	ok, err := content.CreateVersion(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, content.ModelType(), rdf.MixVersionable)
	versions, err = content.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, "dino.jpg", content.OriginalName())
	assert.Equal(t, len(dino), content.Size())
	assert.Equal(t, "image/jpeg", content.MediaType())

	content.SetContent(minivan, "image/jpeg")
	content.SetOriginalName("minivan.jpg")
	require.NoError(t, content.Save(ctx))
	_, err = content.CreateVersion(ctx)
	require.NoError(t, err)

	versions, err = content.Versions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "minivan.jpg", content.OriginalName())
	assert.Equal(t, len(minivan), content.Size())

	ok, err = content.RestoreVersion(ctx, versions[1].ID())
	require.NoError(t, err)
	require.True(t, ok)

	versions, err = content.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 4)
	assert.Equal(t, len(dino), content.Size())
	assert.Equal(t, "dino.jpg", content.OriginalName())

	content.SetContent(dino, "image/jpeg")
	content.SetOriginalName("dino.jpg")
	require.NoError(t, content.Save(ctx))
	_, err = content.CreateVersion(ctx)
	require.NoError(t, err)

	versions, err = content.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 5)
	assert.Equal(t, "dino.jpg", content.OriginalName())
	assert.Equal(t, len(dino), content.Size())

	found, err := repo.FindFile(ctx, obj, "content", binaryModel)
	require.NoError(t, err)
	assert.Equal(t, dino, found.Content())
	assert.Contains(t, found.ModelType(), rdf.MixVersionable)
}

func TestVersionableComplexObject(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	obj := repo.New(complexModel)
	desc := repo.NewDatastream(obj, "descMetadata", descMetaModel)
	binary := repo.NewFile(obj, "binaryData", binaryModel)

	for _, v := range []Versionable{obj, desc, binary} {
		versions, err := v.Versions(ctx)
		require.NoError(t, err)
		assert.Empty(t, versions)
	}

	obj.SetProperty(rdf.DCTitle, "dino.jpg")
	desc.SetProperty(rdf.DCTitle, "dino.jpg")
	binary.SetContent(dino, "image/jpeg")
	binary.SetOriginalName("dino.jpg")
	require.NoError(t, obj.Save(ctx))
	require.NoError(t, desc.Save(ctx))
	require.NoError(t, binary.Save(ctx))
	_, err := obj.CreateVersion(ctx)
	require.NoError(t, err)

	versions, err := obj.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	for _, v := range []Versionable{desc, binary} {
		versions, err := v.Versions(ctx)
		require.NoError(t, err)
		assert.Empty(t, versions)

		ok, err := v.CreateVersion(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		versions, err = v.Versions(ctx)
		require.NoError(t, err)
		assert.Len(t, versions, 2)
	}

	versions, err = obj.Versions(ctx)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestFileWithoutVersioning(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepository(t)
	plain := &Model{Name: "PlainFile"}

	obj := repo.New(baseModel)
	f := repo.NewFile(obj, "content", plain)
	assert.ErrorIs(t, f.Save(ctx), apperror.ErrPrecondition)
	assert.ErrorIs(t, f.Reload(ctx), apperror.ErrPrecondition)
	assert.Equal(t, DefaultMediaType, f.MediaType())

	require.NoError(t, obj.Save(ctx))
	f.SetContent([]byte("hello"), "")
	require.NoError(t, f.Save(ctx))
	assert.True(t, f.Persisted())

	b, err := store.Binary(obj.PID() + "/content")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, DefaultMediaType, b.MediaType)
	assert.Empty(t, b.Filename)

	found, err := repo.FindFile(ctx, obj, "content", plain)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), found.Content())
	assert.Empty(t, found.OriginalName())
	assert.NotContains(t, found.ModelType(), rdf.MixVersionable)

	ok, err := found.CreateVersion(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, found.Destroy(ctx))
	assert.False(t, found.Persisted())
	_, err = repo.FindFile(ctx, obj, "content", plain)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFileKindConflict(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	obj := repo.New(baseModel)
	require.NoError(t, obj.Save(ctx))
	desc := repo.NewDatastream(obj, "descMetadata", descMetaModel)
	require.NoError(t, desc.Save(ctx))

	f := repo.NewFile(obj, "descMetadata", binaryModel)
	f.SetContent([]byte("x"), "text/plain")
	assert.ErrorIs(t, f.Save(ctx), apperror.ErrConflict)
}
