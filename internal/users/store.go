package users

import "context"

// Store is the record store contract shared by every backend.
//
// List returns a snapshot in insertion order. Create appends and assigns an
// identifier; it never de-duplicates. Update replaces all mutable fields of the
// record with the given id in place and fails with ErrNotFound when the id is
// unknown.
type Store interface {
	List(ctx context.Context) ([]UserRecord, error)
	Get(ctx context.Context, id string) (UserRecord, error)
	Create(ctx context.Context, fields Fields) (UserRecord, error)
	Update(ctx context.Context, id string, fields Fields) error
}
