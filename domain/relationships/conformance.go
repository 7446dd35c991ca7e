package relationships

import (
	"context"

	"github.com/emergent-company/ldpgraph/pkg/apperror"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Typed is implemented by model descriptors.
type Typed interface {
	String() string
	// ClassURI is the canonical has_model value, "info:fedora/afmodel:<Name>".
	ClassURI() string
	// IsKindOf reports whether the model is, or descends from, the model
	// with the given class URI.
	IsKindOf(classURI string) bool
}

// ConformsTo checks that actual is a kind of expected and that the stored
// has_model relationship names actual's class. It returns (true, nil) on
// success; every failure is (false, *apperror.Error) with code
// model_mismatch or missing_model_relationship.
func (s *Store) ConformsTo(ctx context.Context, actual, expected Typed) (bool, error) {
	if !actual.IsKindOf(expected.ClassURI()) {
		return false, apperror.NewModelMismatch("kind_of? for model "+expected.String(), expected.String(), actual.String())
	}

	models, err := s.URIs(ctx, rdf.HasModel)
	if err != nil {
		return false, err
	}
	if len(models) == 0 {
		return false, apperror.NewMissingModelRelationship(expected.String())
	}

	want := actual.ClassURI()
	if models[0] != want {
		return false, apperror.NewModelMismatch("has_model relationship for model "+expected.String(), want, models[0])
	}
	return true, nil
}
