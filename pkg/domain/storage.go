package domain

import "context"

// PostStore defines the data access operations over the post collection
// Implementations must be safe for concurrent use by many requests
type PostStore interface {
	Create(ctx context.Context, in PostInput) (*Post, error)
	FindAll(ctx context.Context) ([]Post, error)
	FindByID(ctx context.Context, id string) (*Post, error)
	Update(ctx context.Context, id string, in PostInput) (*Post, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
