package filesystemStorage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"package-index/storage"
)

func TestUploadPath(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	t.Run("JoinsInsideRoot", func(t *testing.T) {
		t.Parallel()

		path, err := store.UploadPath("acme/acme-1.0.0.tar.gz")
		require.NoError(t, err)
		assert.Equal(
			t,
			filepath.Join(store.Root(), "acme", "acme-1.0.0.tar.gz"),
			path,
		)
	})

	t.Run("RejectsTraversal", func(t *testing.T) {
		t.Parallel()

		// A corrupted or maliciously set row path must never resolve
		// outside the upload root.
		_, err := store.UploadPath("acme/../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesRoot)
	})

	t.Run("RejectsAbsolutePath", func(t *testing.T) {
		t.Parallel()

		_, err := store.UploadPath("/etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesRoot)
	})

	t.Run("RejectsEmptyPath", func(t *testing.T) {
		t.Parallel()

		_, err := store.UploadPath("")
		assert.ErrorIs(t, err, ErrPathEscapesRoot)
	})
}

func TestSaveOpenRemove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)

	content := []byte("artifact bytes")

	require.NoError(t, store.Save("acme/acme-1.0.0.tar.gz", content))

	// Nested directories are created as needed.
	_, err = os.Stat(filepath.Join(root, "acme", "acme-1.0.0.tar.gz"))
	require.NoError(t, err)

	read, err := store.Open("acme/acme-1.0.0.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, content, read)

	exists, err := store.Exists("acme/acme-1.0.0.tar.gz")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove("acme/acme-1.0.0.tar.gz"))

	exists, err = store.Exists("acme/acme-1.0.0.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("acme/missing.tar.gz")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestRemoveMissingFile(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	// Remove fails loudly on a missing file; RemoveIfExists does not.
	assert.Error(t, store.Remove("acme/missing.tar.gz"))
	assert.NoError(t, store.RemoveIfExists("acme/missing.tar.gz"))
}

func TestNewCreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "uploads")

	_, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
