package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

const (
	DefaultMaxDepth = 256
	progressBuffer  = 64
	progressEvery   = 50
)

type Phase string

const (
	PhaseTree   Phase = "tree"
	PhaseSizes  Phase = "sizes"
	PhaseHashes Phase = "hashes"
)

type ScanProgress struct {
	Phase     Phase
	Path      string
	Scanned   int64
	Completed bool
	Current   string
}

type DeletePreview struct {
	Sources    []string
	TotalFiles int
	TotalBytes int64
	Samples    []string
	Warnings   []string
}

type ProgressProvider interface {
	Progress() <-chan ScanProgress
}

type DeletePreviewer interface {
	Preview(ctx context.Context, req DeleteRequest) (DeletePreview, error)
}

// HostFS returns a billy filesystem rooted at the host root, so absolute
// paths resolve unchanged.
func HostFS() billy.Filesystem {
	return osfs.New(string(filepath.Separator))
}

// FSValidator checks scan roots before any traversal starts.
type FSValidator struct {
	fs billy.Filesystem
}

func NewFSValidator(fsys billy.Filesystem) *FSValidator {
	if fsys == nil {
		fsys = HostFS()
	}
	return &FSValidator{fs: fsys}
}

func (validator *FSValidator) ValidateRoot(path string) (string, error) {
	return requireDirectory(validator.fs, path)
}

func requireDirectory(fsys billy.Filesystem, path string) (string, error) {
	root := cleanPath(path)
	if root == "" {
		return "", ErrPathNotFound
	}
	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return root, fmt.Errorf("%s: %w", root, ErrPathNotFound)
		}
		return root, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return root, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}
	return root, nil
}

type entryKind int

const (
	kindOther entryKind = iota
	kindFile
	kindDir
)

func kindOf(info os.FileInfo) entryKind {
	switch {
	case info.Mode().IsRegular():
		return kindFile
	case info.IsDir():
		return kindDir
	default:
		return kindOther
	}
}

func isSymlink(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}

func exclusionFor(path string, fallback domain.ExclusionReason, err error) domain.Exclusion {
	reason := fallback
	switch {
	case errors.Is(err, os.ErrPermission):
		reason = domain.ExcludedPermission
	case errors.Is(err, os.ErrNotExist):
		reason = domain.ExcludedVanished
	}
	exclusion := domain.Exclusion{Path: path, Reason: reason}
	if err != nil {
		exclusion.Err = err.Error()
	}
	return exclusion
}

func progressNonBlocking(ch chan<- ScanProgress, msg ScanProgress) {
	select {
	case ch <- msg:
	default:
	}
}

func displayName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return path
	}
	return name
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	clean := filepath.Clean(path)
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean
	}
	return abs
}

// extensionOf ignores leading dots, so ".bashrc" has no extension.
func extensionOf(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimLeft(name, ".")))
}

func isWithin(root, path string) bool {
	if root == path {
		return true
	}
	rootWithSep := root + string(filepath.Separator)
	return strings.HasPrefix(path, rootWithSep)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
