package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://files.test/uploads/")
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("scan"), "documents/emp-1/contract.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "documents/emp-1/contract.pdf", key)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "scan", string(body))

	url, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/uploads/documents/emp-1/contract.pdf", url)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	for _, p := range []string{"../secret.txt", "a/../../b", "/etc/passwd", ""} {
		_, err := s.Upload(ctx, strings.NewReader("x"), p, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalStorage_FailedUploadLeavesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://files.test")
	require.NoError(t, err)

	_, err = s.Upload(ctx, io.MultiReader(strings.NewReader("part"), failingReader{}), "workflows/r-1/a.txt", "text/plain")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "workflows", "r-1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
