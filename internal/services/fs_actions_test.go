package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteReportsEachPath(t *testing.T) {
	fsys := newMemFS(t, map[string]string{"/tmp/dup1": "copy"})
	actions := NewFSActions(fsys, zerolog.Nop())

	result, err := actions.Delete(context.Background(), DeleteRequest{Paths: []string{"/tmp/dup1", "/tmp/missing"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/dup1"}, result.Deleted)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "/tmp/missing", result.Errors[0].Path)
	assert.Equal(t, reasonNotAFile, result.Errors[0].Reason)

	_, err = fsys.Stat("/tmp/dup1")
	assert.Error(t, err)
}

func TestDeleteRejectsEmptyRequest(t *testing.T) {
	actions := NewFSActions(newMemFS(t, nil, "/tmp"), zerolog.Nop())

	_, err := actions.Delete(context.Background(), DeleteRequest{})
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = actions.Delete(context.Background(), DeleteRequest{Paths: []string{"", "  "}})
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestDeleteRefusesDirectoriesAndCriticalPaths(t *testing.T) {
	fsys := newMemFS(t, map[string]string{
		"/etc/hosts":      "127.0.0.1",
		"/work/keep/file": "x",
	})
	actions := NewFSActions(fsys, zerolog.Nop())

	result, err := actions.Delete(context.Background(), DeleteRequest{
		Paths:    []string{"/work/keep", "/etc/hosts", "/work/keep/file", "/work/keep/file"},
		SafeMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/work/keep/file"}, result.Deleted)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, reasonNotAFile, result.Errors[0].Reason)
	assert.Equal(t, reasonCritical, result.Errors[1].Reason)

	_, err = fsys.Stat("/etc/hosts")
	assert.NoError(t, err)
}

func TestDeleteRefusesSymlinkToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	result, err := NewFSActions(HostFS(), zerolog.Nop()).Delete(context.Background(), DeleteRequest{Paths: []string{link}})
	require.NoError(t, err)

	assert.Empty(t, result.Deleted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, link, result.Errors[0].Path)
	assert.Equal(t, reasonNotAFile, result.Errors[0].Reason)
	_, err = os.Lstat(link)
	assert.NoError(t, err)
	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestDeleteContinuesAfterCancellation(t *testing.T) {
	fsys := newMemFS(t, map[string]string{"/w/a": "a", "/w/b": "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewFSActions(fsys, zerolog.Nop()).Delete(ctx, DeleteRequest{Paths: []string{"/w/a", "/w/b"}})
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Len(t, result.Errors, 2)
}

func TestPreviewTotals(t *testing.T) {
	fsys := newMemFS(t, map[string]string{"/w/a": "aaa", "/w/b": "bb"})

	preview, err := NewFSActions(fsys, zerolog.Nop()).Preview(context.Background(), DeleteRequest{Paths: []string{"/w/a", "/w/b", "/w/gone"}})
	require.NoError(t, err)

	assert.Equal(t, 2, preview.TotalFiles)
	assert.EqualValues(t, 5, preview.TotalBytes)
	assert.Equal(t, []string{"/w/a", "/w/b"}, preview.Samples)
	assert.Len(t, preview.Warnings, 1)
}

func TestIsCriticalPath(t *testing.T) {
	assert.True(t, isCriticalPath("/"))
	assert.True(t, isCriticalPath("/usr/bin/env"))
	assert.False(t, isCriticalPath("/usrlocal/file"))
	assert.False(t, isCriticalPath("/tmp/dup1"))
}
