package book

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSeed returns the books a fresh catalog starts with.
func DefaultSeed() []Book {
	return []Book{
		{ID: 1, Title: "Hamlet", Author: "William Shakespeare", Available: true},
		{ID: 2, Title: "Rich Dad Poor Dad", Author: "Robert T. Kiyosaki", Available: true},
		{ID: 3, Title: "Main Anmol", Author: "Aapa Anmol", Available: false},
		{ID: 4, Title: "Tale of Izrail", Author: "Allama Iqbal", Available: true},
	}
}

type seedFile struct {
	Books []seedBook `yaml:"books"`
}

type seedBook struct {
	ID        int    `yaml:"id"`
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Available *bool  `yaml:"available"`
}

// LoadSeed reads a YAML seed file of the form
//
//	books:
//	  - id: 1
//	    title: Hamlet
//	    author: William Shakespeare
//	    available: true
//
// An empty path returns DefaultSeed. available defaults to true.
func LoadSeed(path string) ([]Book, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data and checks that ids are positive and
// distinct.
func ParseSeed(data []byte) ([]Book, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[int]bool, len(f.Books))
	out := make([]Book, 0, len(f.Books))
	for i, sb := range f.Books {
		if sb.ID <= 0 {
			return nil, fmt.Errorf("seed book %d: id must be positive, got %d", i, sb.ID)
		}
		if seen[sb.ID] {
			return nil, fmt.Errorf("seed book %d: duplicate id %d", i, sb.ID)
		}
		seen[sb.ID] = true

		b := Book{ID: sb.ID, Title: sb.Title, Author: sb.Author, Available: true}
		if sb.Available != nil {
			b.Available = *sb.Available
		}
		out = append(out, b)
	}
	return out, nil
}

// MarshalSeed encodes books in the format ParseSeed reads.
func MarshalSeed(books []Book) ([]byte, error) {
	f := seedFile{Books: make([]seedBook, len(books))}
	for i, b := range books {
		available := b.Available
		f.Books[i] = seedBook{ID: b.ID, Title: b.Title, Author: b.Author, Available: &available}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode seed file: %w", err)
	}
	return data, nil
}
