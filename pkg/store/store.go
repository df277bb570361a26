package store

import (
	"context"
)

type Store interface {
	Save(ctx context.Context, userID, content, category string) (*Entry, error)
	Query(ctx context.Context, userID, category string, limit int) ([]*Entry, error)
	QueryPage(ctx context.Context, userID string, page, perPage int) ([]*Entry, error)
	Count(ctx context.Context, userID string) (int, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
	Close() error
}
