package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// faultyFS fails ReadDir or Open for chosen paths, standing in for
// permission errors and files vanishing mid-scan.
type faultyFS struct {
	billy.Filesystem
	readDirErrs map[string]error
	openErrs    map[string]error
}

func newFaultyFS(base billy.Filesystem) *faultyFS {
	return &faultyFS{
		Filesystem:  base,
		readDirErrs: map[string]error{},
		openErrs:    map[string]error{},
	}
}

func (fsys *faultyFS) ReadDir(path string) ([]os.FileInfo, error) {
	if err, ok := fsys.readDirErrs[path]; ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return fsys.Filesystem.ReadDir(path)
}

func (fsys *faultyFS) Open(path string) (billy.File, error) {
	if err, ok := fsys.openErrs[path]; ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return fsys.Filesystem.Open(path)
}

func newMemFS(t *testing.T, files map[string]string, dirs ...string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for _, dir := range dirs {
		require.NoError(t, fsys.MkdirAll(dir, 0o755))
	}
	for path, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func repeat(char byte, n int) string {
	buf := make([]byte, n)
	for index := range buf {
		buf[index] = char
	}
	return string(buf)
}
