package pipeline

import "github.com/pkg/errors"

var (
	// ErrNotFound reports that a looked-up entity has no row. Stage
	// handlers treat it as a structural inconsistency when the entity id
	// came from a message.
	ErrNotFound = errors.New("entity not found")

	// ErrConcurrentModification reports a lost optimistic-version race on
	// a caption vote write. Surfaced to the caller, never retried here.
	ErrConcurrentModification = errors.New("concurrent modification")
)
