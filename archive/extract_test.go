package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-archive/cask/store"
)

// openSubtree returns an in-memory archive holding a/b.txt and a/c.txt.
func openSubtree(t *testing.T) *Archive {
	t.Helper()
	a := openMemT(t)
	require.NoError(t, a.Batch(func(tx store.Tx) error {
		if _, err := a.PutFileData(tx, "a/b.txt", []byte("contents of b")); err != nil {
			return err
		}
		_, err := a.PutFileData(tx, "a/c.txt", []byte("contents of c"))
		return err
	}))
	return a
}

func TestExtractSubtree(t *testing.T) {
	a := openSubtree(t)
	dest := t.TempDir()

	var written []string
	require.NoError(t, a.View(func(tx store.Tx) error {
		var err error
		written, err = a.Extract(tx, "a", dest)
		return err
	}))
	assert.Len(t, written, 2)

	// The a/ subpath is preserved under the output root.
	b, err := os.ReadFile(filepath.Join(dest, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("contents of b"), b)

	c, err := os.ReadFile(filepath.Join(dest, "a", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("contents of c"), c)
}

func TestExtractSingleFileStripsParent(t *testing.T) {
	a := openSubtree(t)
	dest := t.TempDir()

	require.NoError(t, a.View(func(tx store.Tx) error {
		_, err := a.Extract(tx, "a/b.txt", dest)
		return err
	}))

	data, err := os.ReadFile(filepath.Join(dest, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("contents of b"), data)

	_, err = os.Stat(filepath.Join(dest, "c.txt"))
	assert.True(t, os.IsNotExist(err), "prefix a/b.txt must not select a/c.txt")
}

func TestExtractCollisionLeavesFileUntouched(t *testing.T) {
	a := openSubtree(t)
	dest := t.TempDir()

	existing := filepath.Join(dest, "a", "b.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0755))
	require.NoError(t, os.WriteFile(existing, []byte("pre-existing"), 0644))

	err := a.View(func(tx store.Tx) error {
		_, err := a.Extract(tx, "a", dest)
		return err
	})
	require.ErrorIs(t, err, ErrCollision)

	data, readErr := os.ReadFile(existing)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("pre-existing"), data)
}

func TestExtractNoMatch(t *testing.T) {
	a := openSubtree(t)
	err := a.View(func(tx store.Tx) error {
		_, err := a.Extract(tx, "z", t.TempDir())
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExtractEmptyFile(t *testing.T) {
	a := openMemT(t)
	putOne(t, a, "empty.txt", nil)
	dest := t.TempDir()

	require.NoError(t, a.View(func(tx store.Tx) error {
		_, err := a.Extract(tx, "empty.txt", dest)
		return err
	}))

	info, err := os.Stat(filepath.Join(dest, "empty.txt"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
