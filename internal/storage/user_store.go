package storage

import (
	"context"

	"snippet_bot/internal/model"
)

// UserStore persists user and team records keyed by name. Writes are
// last-write-wins; concurrent edits to the same key can race and one write
// may be lost.
type UserStore interface {
	// Get returns the record for name, or (nil, nil) when absent.
	Get(ctx context.Context, name string) (*model.User, error)
	// List returns all stored records.
	List(ctx context.Context) ([]*model.User, error)
	// Save creates or replaces the record under user.Name.
	Save(ctx context.Context, user *model.User) error
}
