package statuses

import (
	"context"
	"iter"
)

// ThreadStore yields the ancestors of a status, nearest first, stopping after
// bound elements. The sequence is lazy and may be ranged over more than once.
type ThreadStore interface {
	Ancestors(ctx context.Context, statusID string, bound int) iter.Seq2[Ancestor, error]
}

type StoreAPI interface {
	ThreadStore
	Get(ctx context.Context, statusID string) (Status, error)
}
