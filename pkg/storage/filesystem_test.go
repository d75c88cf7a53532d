package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialPathLayout(t *testing.T) {
	path := MaterialPath("Tech University", "Computer Science", "Introduction to Programming", 1, "lecture1.pdf")
	want := filepath.Join("Tech University", "Computer Science", "Introduction to Programming", "Week 1", "lecture1.pdf")
	assert.Equal(t, want, path)
}

func TestMaterialPathSanitizesTraversal(t *testing.T) {
	path := MaterialPath("../etc", "a/b", "c\\d", 2, "../../passwd.txt")
	assert.NotContains(t, path, "..")
	assert.Contains(t, path, "Week 2")
}

func TestSanitizeComponent(t *testing.T) {
	assert.Equal(t, "Tech University", SanitizeComponent("Tech University"))
	assert.Equal(t, "a_b", SanitizeComponent("a/b"))
	assert.Equal(t, "a_b", SanitizeComponent("a\\b"))
	assert.Equal(t, "_secret", SanitizeComponent("..secret"))
}

func TestSanitizeFilenameKeepsExtension(t *testing.T) {
	assert.Equal(t, "lecture1.pdf", SanitizeFilename("lecture1.pdf"))
	assert.Equal(t, "week_1_notes.txt", SanitizeFilename("week/1/notes.txt"))
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefghij"
	}
	out := SanitizeFilename(long + ".pdf")
	assert.Len(t, out, 204)
	assert.Equal(t, ".pdf", filepath.Ext(out))
}

func TestMaterialStoreRoundTrip(t *testing.T) {
	store, err := NewMaterialStore(t.TempDir())
	require.NoError(t, err)

	relPath := MaterialPath("Tech University", "Computer Science", "Introduction to Programming", 1, "notes.txt")
	require.NoError(t, store.Save(relPath, []byte("hello")))
	assert.True(t, store.Exists(relPath))

	file, err := store.Open(relPath)
	require.NoError(t, err)
	defer file.Close()

	data := make([]byte, 5)
	_, err = file.Read(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(relPath))
	assert.False(t, store.Exists(relPath))
}

func TestMaterialStoreDeleteMissingFile(t *testing.T) {
	store, err := NewMaterialStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("does/not/exist.pdf"))
}

func TestMaterialStoreCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "storage")
	_, err := NewMaterialStore(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
