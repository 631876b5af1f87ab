package book

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// IDStrategy selects how the Store assigns ids to new books.
type IDStrategy string

const (
	// IDStrategyMax assigns max(current ids)+1. Deleting the book holding
	// the highest id makes that id available again.
	IDStrategyMax IDStrategy = "max"
	// IDStrategyCounter assigns one more than the highest id this Store has
	// ever held, so ids are never reused.
	IDStrategyCounter IDStrategy = "counter"
)

// ParseIDStrategy parses "max" or "counter". Empty means IDStrategyMax.
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", IDStrategyMax:
		return IDStrategyMax, nil
	case IDStrategyCounter:
		return IDStrategyCounter, nil
	default:
		return "", fmt.Errorf("unknown id strategy %q (want max or counter)", s)
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDStrategy sets the id assignment strategy.
func WithIDStrategy(strategy IDStrategy) StoreOption {
	return func(s *Store) {
		s.strategy = strategy
	}
}

// Store is the in-memory ordered collection of books. All access is
// serialized by a single mutex; composite operations go through Atomically.
type Store struct {
	mu        sync.Mutex
	books     []Book
	highWater int
	strategy  IDStrategy
}

// NewStore returns a Store holding a copy of seed in the given order.
func NewStore(seed []Book, opts ...StoreOption) *Store {
	s := &Store{
		books:    make([]Book, 0, len(seed)),
		strategy: IDStrategyMax,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, b := range seed {
		s.append(b)
	}
	return s
}

// All returns the books in insertion order.
func (s *Store) All(_ context.Context) ([]Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// NextID returns the id the next created book would receive.
func (s *Store) NextID(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID(), nil
}

// Len returns the number of books held.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books), nil
}

// Atomically runs fn with exclusive access to the collection. The Tx must
// not be retained after fn returns.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s}
	defer func() { tx.s = nil }()
	return fn(tx)
}

func (s *Store) snapshot() []Book {
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Store) nextID() int {
	if s.strategy == IDStrategyCounter {
		return s.highWater + 1
	}
	highest := 0
	for _, b := range s.books {
		if b.ID > highest {
			highest = b.ID
		}
	}
	return highest + 1
}

func (s *Store) append(b Book) {
	s.books = append(s.books, b)
	if b.ID > s.highWater {
		s.highWater = b.ID
	}
}

// Tx is the mutable view of a Store inside Atomically.
type Tx struct {
	s *Store
}

// All returns a copy of the books in insertion order.
func (tx *Tx) All() []Book { return tx.s.snapshot() }

// NextID returns the id for the next appended book.
func (tx *Tx) NextID() int { return tx.s.nextID() }

// IndexOf returns the position of the first book with the given id, or -1.
func (tx *Tx) IndexOf(id int) int {
	for i, b := range tx.s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// At returns the book at position i.
func (tx *Tx) At(i int) Book { return tx.s.books[i] }

// Append adds b at the end of the collection.
func (tx *Tx) Append(b Book) { tx.s.append(b) }

// ReplaceAt overwrites the book at position i.
func (tx *Tx) ReplaceAt(i int, b Book) { tx.s.books[i] = b }

// RemoveAt deletes the book at position i, keeping the order of the rest.
func (tx *Tx) RemoveAt(i int) {
	tx.s.books = append(tx.s.books[:i], tx.s.books[i+1:]...)
}
