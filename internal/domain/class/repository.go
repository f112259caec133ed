package class

import "context"

type Repository interface {
	// GetByID returns the class with its schedule blocks in stored order.
	// Returns ErrClassNotFound when no class exists with the given ID.
	GetByID(ctx context.Context, id string) (*Class, error)

	// ListAll returns every class with its schedule blocks. Used by the
	// nightly absence sweep.
	ListAll(ctx context.Context) ([]*Class, error)
}
