package main

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarian/internal/book"
)

func TestGenerate(t *testing.T) {
	books := generate(rand.New(rand.NewSource(7)), 50, 0)

	require.Len(t, books, 50)
	for i, b := range books {
		assert.Equal(t, i+1, b.ID)
		assert.NotEmpty(t, b.Title)
		assert.NotEmpty(t, b.Author)
		assert.True(t, b.Available)
	}

	again := generate(rand.New(rand.NewSource(7)), 50, 0)
	assert.Equal(t, books, again)
}

func TestGenerate_AllUnavailable(t *testing.T) {
	for _, b := range generate(rand.New(rand.NewSource(1)), 10, 1) {
		assert.False(t, b.Available)
	}
}

func TestSeedCommand_Stdout(t *testing.T) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--count", "3"})

	require.NoError(t, cmd.Execute())

	books, err := book.ParseSeed(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, books, 3)
	assert.Contains(t, errOut.String(), "seed file generated")
}

func TestSeedCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")

	cmd := newRootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-n", "5", "-o", path})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(path)
	require.NoError(t, err)

	books, err := book.LoadSeed(path)
	require.NoError(t, err)
	assert.Len(t, books, 5)
}

func TestSeedCommand_RejectsBadRatio(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--unavailable", "1.5"})

	assert.Error(t, cmd.Execute())
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
}

func (f *failingCloser) Close() error { return f.closeErr }

func TestWriteSeed_ReportsCloseError(t *testing.T) {
	file := &failingCloser{closeErr: errors.New("no space left on device")}
	orig := createFile
	createFile = func(string) (io.WriteCloser, error) { return file, nil }
	t.Cleanup(func() { createFile = orig })

	err := writeSeed(io.Discard, "seed.yaml", []byte("books: []\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "close seed file")
	assert.Equal(t, "books: []\n", file.String())
}

func TestWriteSeed_MissingDirectory(t *testing.T) {
	err := writeSeed(io.Discard, filepath.Join(t.TempDir(), "missing", "seed.yaml"), []byte("books: []\n"))
	assert.ErrorContains(t, err, "create seed file")
}

func TestWriteSeed_Stdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSeed(&out, "-", []byte("books: []\n")))
	assert.Equal(t, "books: []\n", out.String())
}
