package book

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no book carries the requested id.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog record.
type Book struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// CreateInput is a validated create request. It carries no id: ids are
// always assigned by the Store.
type CreateInput struct {
	Title     string
	Author    string
	Available bool
}

// UpdateInput is a validated update request. Nil fields are left untouched.
type UpdateInput struct {
	ID        int
	Title     *string
	Author    *string
	Available *bool
}

// Apply overlays the present fields of in onto b.
func (in UpdateInput) Apply(b Book) Book {
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Available != nil {
		b.Available = *in.Available
	}
	return b
}

// Matches reports whether q occurs in the title or author, ignoring case.
// An empty query matches every book.
func (b Book) Matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q)
}
