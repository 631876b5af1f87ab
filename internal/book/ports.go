package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book collection storage.
type Repository interface {
	All(ctx context.Context) ([]Book, error)
	Len(ctx context.Context) (int, error)
	// Atomically runs fn while no other operation can observe or change the
	// collection.
	Atomically(ctx context.Context, fn func(tx *Tx) error) error
}
