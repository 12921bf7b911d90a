package repository

import "context"

// SeenIndex defines the run-local deduplication of registry identifiers.
type SeenIndex interface {
	// Seen reports whether an id has already been emitted in this run.
	Seen(ctx context.Context, registryID string) (bool, error)
	// MarkSeen records an id as emitted.
	MarkSeen(ctx context.Context, registryID string) error
}
