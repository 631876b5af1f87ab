package book

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed_DefaultWhenPathEmpty(t *testing.T) {
	books, err := LoadSeed("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed(), books)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(books))
}

func TestLoadSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := `books:
  - id: 10
    title: Dune
    author: Frank Herbert
  - id: 11
    title: Emma
    author: Jane Austen
    available: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	books, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, []Book{
		{ID: 10, Title: "Dune", Author: "Frank Herbert", Available: true},
		{ID: 11, Title: "Emma", Author: "Jane Austen", Available: false},
	}, books)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := map[string]string{
		"duplicate id": "books:\n  - id: 1\n  - id: 1\n",
		"zero id":      "books:\n  - title: no id\n",
		"bad yaml":     "books: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseSeed_Empty(t *testing.T) {
	books, err := ParseSeed([]byte("books: []\n"))
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestMarshalSeed_ParsesBack(t *testing.T) {
	data, err := MarshalSeed(DefaultSeed())
	require.NoError(t, err)
	assert.Contains(t, string(data), "available: false")

	books, err := ParseSeed(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed(), books)
}
