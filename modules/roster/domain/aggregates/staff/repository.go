package staff

import "context"

// Repository persists the whole roster. The store treats it as a settings
// document: load everything on startup, replace everything on save.
type Repository interface {
	GetAll(ctx context.Context) ([]*Record, error)
	ReplaceAll(ctx context.Context, records []*Record) error
}
