package locate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
}

func TestFindNested(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "build", "tests", "unittests", "scn_stdin_parameterized_test")
	writeFile(t, want)
	writeFile(t, filepath.Join(root, "build", "tests", "unittests", "scn_stdin_test"))

	got, err := Find(root, ParameterizedTestPattern)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindReturnsFirstInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "scn_stdin_test"))
	first := filepath.Join(root, "a", "scn_stdin_test_debug")
	writeFile(t, first)

	got, err := Find(root, StdinTestPattern)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestFindIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scn_stdin_test.dir"), 0755))

	_, err := Find(root, StdinTestPattern)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindFollowsSymlinkedFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out", "bin-real")
	writeFile(t, target)
	link := filepath.Join(root, "tests", "scn_stdin_parameterized_test")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755))
	require.NoError(t, os.Symlink(target, link))

	got, err := Find(root, ParameterizedTestPattern)
	require.NoError(t, err)
	assert.Equal(t, link, got)
}

func TestFindSkipsSymlinksToNonFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "real-dir")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.Symlink(dir, filepath.Join(root, "scn_stdin_test_dir")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "scn_stdin_test_dangling")))

	_, err := Find(root, StdinTestPattern)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindNotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "unrelated"))

	_, err := Find(root, ParameterizedTestPattern)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, root, nf.Root)
	assert.Equal(t, ParameterizedTestPattern, nf.Pattern)
	assert.Contains(t, err.Error(), "scn_stdin_parameterized_test*")
}

func TestFindMissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing"), StdinTestPattern)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFindRootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file)

	_, err := Find(file, StdinTestPattern)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestFindInvalidPattern(t *testing.T) {
	_, err := Find(t.TempDir(), "scn_[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestExecutableSuffix(t *testing.T) {
	assert.Equal(t, ".exe", executableSuffix("windows"))
	assert.Equal(t, "", executableSuffix("linux"))
	assert.Equal(t, "", executableSuffix("darwin"))
}
