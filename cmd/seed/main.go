package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"librarian/internal/book"
	"librarian/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		count       int
		out         string
		randSeed    int64
		unavailable float64
	)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Generate a YAML seed file for SEED_FILE",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count must not be negative, got %d", count)
			}
			if unavailable < 0 || unavailable > 1 {
				return fmt.Errorf("unavailable ratio must be within [0, 1], got %g", unavailable)
			}
			logger := logging.New(logging.Config{Output: cmd.ErrOrStderr()})

			books := generate(rand.New(rand.NewSource(randSeed)), count, unavailable)
			data, err := book.MarshalSeed(books)
			if err != nil {
				return err
			}

			if err := writeSeed(cmd.OutOrStdout(), out, data); err != nil {
				return err
			}

			logger.Info("seed file generated", "books", len(books), "out", out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "Number of books to generate")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output path, - for stdout")
	cmd.Flags().Int64Var(&randSeed, "rand-seed", 1, "Random source seed")
	cmd.Flags().Float64Var(&unavailable, "unavailable", 0.2, "Share of books marked as checked out")
	return cmd
}

var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeSeed writes data to path, or to stdout when path is "-". A failed
// close is reported since it can drop buffered data.
func writeSeed(stdout io.Writer, path string, data []byte) (err error) {
	if path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write seed file: %w", err)
		}
		return nil
	}

	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("create seed file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close seed file: %w", cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// generate returns count books with ids 1..count.
func generate(rng *rand.Rand, count int, unavailable float64) []book.Book {
	books := make([]book.Book, count)
	for i := range books {
		books[i] = book.Book{
			ID:        i + 1,
			Title:     fmt.Sprintf("The %s of %s", randomWord(rng), randomWord(rng)),
			Author:    fmt.Sprintf("%s %s", randomFirstName(rng), randomLastName(rng)),
			Available: rng.Float64() >= unavailable,
		}
	}
	return books
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}

func randomFirstName(rng *rand.Rand) string {
	names := []string{"Ada", "Jane", "Leo", "Toni", "Gabriel", "Haruki", "Chinua", "Virginia", "Jorge", "Orhan"}
	return names[rng.Intn(len(names))]
}

func randomLastName(rng *rand.Rand) string {
	names := []string{"Austen", "Tolstoy", "Morrison", "Marquez", "Murakami", "Achebe", "Woolf", "Borges", "Pamuk", "Lovelace"}
	return names[rng.Intn(len(names))]
}
