package book

import (
	"context"
)

// Service provides the book collection operations.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every book in store order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.All(ctx)
}

// Search returns the books whose title or author contains q, ignoring case.
func (s *Service) Search(ctx context.Context, q string) ([]Book, error) {
	books, err := s.repo.All(ctx)
	if err != nil || q == "" {
		return books, err
	}
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if b.Matches(q) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Create assigns the next id to in and appends it to the collection.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	var created Book
	err := s.repo.Atomically(ctx, func(tx *Tx) error {
		created = Book{
			ID:        tx.NextID(),
			Title:     in.Title,
			Author:    in.Author,
			Available: in.Available,
		}
		tx.Append(created)
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return created, nil
}

// Update overlays the present fields of in onto the first book with the
// same id, keeping its position.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Book, error) {
	var updated Book
	err := s.repo.Atomically(ctx, func(tx *Tx) error {
		i := tx.IndexOf(in.ID)
		if i < 0 {
			return ErrNotFound
		}
		updated = in.Apply(tx.At(i))
		tx.ReplaceAt(i, updated)
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return updated, nil
}

// Delete removes the first book with the given id.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Atomically(ctx, func(tx *Tx) error {
		i := tx.IndexOf(id)
		if i < 0 {
			return ErrNotFound
		}
		tx.RemoveAt(i)
		return nil
	})
}

// Ready reports whether the collection can be read.
func (s *Service) Ready(ctx context.Context) error {
	_, err := s.repo.Len(ctx)
	return err
}
