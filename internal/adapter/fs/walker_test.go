package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestWalker_PlainPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gita.csv")
	touch(t, file)

	files, err := NewWalker(nil).Resolve(file)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)

	_, err = NewWalker(nil).Resolve(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewWalker(nil).Resolve(dir)
	assert.Error(t, err)
}

func TestWalker_Glob(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b", "chapter2.csv"))
	touch(t, filepath.Join(dir, "a", "chapter1.csv.xz"))
	touch(t, filepath.Join(dir, "a", "notes.txt"))
	touch(t, filepath.Join(dir, "drafts", "chapter3.csv"))

	w := NewWalker([]string{"drafts/**"})
	files, err := w.Resolve(filepath.ToSlash(dir) + "/**/*.{csv,csv.xz}")
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a", "chapter1.csv.xz"),
		filepath.Join(dir, "b", "chapter2.csv"),
	}
	assert.Equal(t, want, files)
}

func TestWalker_GlobNoMatch(t *testing.T) {
	dir := t.TempDir()
	files, err := NewWalker(nil).Resolve(filepath.ToSlash(dir) + "/*.csv")
	require.NoError(t, err)
	assert.Empty(t, files)
}
