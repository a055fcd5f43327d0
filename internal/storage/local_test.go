package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Save(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()

	store, err := NewLocalStore(dir, "/uploads", logger)
	require.NoError(t, err)

	data := []byte("fake-jpeg-bytes")
	ref, err := store.Save(context.Background(), data, "meal.jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, "-meal.jpg"))

	// The reference resolves to a file holding the original bytes.
	name := strings.TrimPrefix(ref, "/uploads/")
	written, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestLocalStore_Save_UniqueKeys(t *testing.T) {
	logger := zerolog.Nop()
	store, err := NewLocalStore(t.TempDir(), "/uploads", logger)
	require.NoError(t, err)

	data := []byte("identical-bytes")

	ref1, err := store.Save(context.Background(), data, "meal.jpg")
	require.NoError(t, err)
	ref2, err := store.Save(context.Background(), data, "meal.jpg")
	require.NoError(t, err)

	// Identical payloads and names must still get distinct references.
	assert.NotEqual(t, ref1, ref2)
}

func TestLocalStore_Save_StripsClientPath(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads", logger)
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), []byte("x"), "../../etc/passwd")
	require.NoError(t, err)

	assert.NotContains(t, ref, "..")
	assert.True(t, strings.HasSuffix(ref, "-passwd"))

	// Nothing was written outside the uploads directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStore_CreatesDirectory(t *testing.T) {
	logger := zerolog.Nop()
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := NewLocalStore(dir, "/uploads", logger)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Constructing over an existing directory must not fail.
	_, err = NewLocalStore(dir, "/uploads", logger)
	assert.NoError(t, err)
}

func TestLocalStore_Save_RecreatesRemovedDirectory(t *testing.T) {
	logger := zerolog.Nop()
	dir := filepath.Join(t.TempDir(), "uploads")

	store, err := NewLocalStore(dir, "/uploads", logger)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = store.Save(context.Background(), []byte("x"), "meal.jpg")
	assert.NoError(t, err)
}
