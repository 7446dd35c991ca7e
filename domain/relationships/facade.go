package relationships

import (
	"context"
	"fmt"
)

// Reader is the read side of a relationship store, implemented by Store and
// by anything delegating to one.
type Reader interface {
	Targets(ctx context.Context, predicate string) ([]Target, error)
	URIs(ctx context.Context, predicate string) ([]string, error)
	Values(ctx context.Context, predicate string) ([]string, error)
	IDsForOutbound(ctx context.Context, predicate string) ([]string, error)
}

// Finder materializes an object by PID.
type Finder[T any] interface {
	Find(ctx context.Context, pid string) (T, error)
}

// FinderFunc adapts a function to Finder.
type FinderFunc[T any] func(ctx context.Context, pid string) (T, error)

func (f FinderFunc[T]) Find(ctx context.Context, pid string) (T, error) {
	return f(ctx, pid)
}

// URIs returns the raw IRIs and literal values related through predicate.
func URIs(ctx context.Context, r Reader, predicate string) ([]string, error) {
	return r.URIs(ctx, predicate)
}

// IDs returns the local ids related through predicate.
func IDs(ctx context.Context, r Reader, predicate string) ([]string, error) {
	return r.IDsForOutbound(ctx, predicate)
}

// Related loads every object related through predicate, in order.
func Related[T any](ctx context.Context, r Reader, predicate string, finder Finder[T]) ([]T, error) {
	ids, err := r.IDsForOutbound(ctx, predicate)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		obj, err := finder.Find(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find related %s: %w", id, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// First returns the first IRI or literal related through predicate.
func First(ctx context.Context, r Reader, predicate string) (string, bool, error) {
	values, err := r.URIs(ctx, predicate)
	if err != nil || len(values) == 0 {
		return "", false, err
	}
	return values[0], true, nil
}

// Has reports whether (predicate, target) is present.
func Has(ctx context.Context, r Reader, predicate string, target Target) (bool, error) {
	targets, err := r.Targets(ctx, predicate)
	if err != nil {
		return false, err
	}
	for _, t := range targets {
		if t.same(target) {
			return true, nil
		}
	}
	return false, nil
}
