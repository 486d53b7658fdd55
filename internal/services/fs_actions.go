package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

const (
	reasonNotAFile    = "File not found or is not a file"
	reasonCritical    = "blocked critical path"
	reasonCancelled   = "delete cancelled"
	maxPreviewSamples = 5
)

// FSActions removes individual files. Each path is handled on its own; one
// failure never stops the rest of the batch.
type FSActions struct {
	fs     billy.Filesystem
	logger zerolog.Logger
}

func NewFSActions(fsys billy.Filesystem, logger zerolog.Logger) *FSActions {
	if fsys == nil {
		fsys = HostFS()
	}
	return &FSActions{fs: fsys, logger: logger}
}

func (actions *FSActions) Preview(ctx context.Context, req DeleteRequest) (DeletePreview, error) {
	paths := normalizePaths(req.Paths)
	if len(paths) == 0 {
		return DeletePreview{}, ErrNoPaths
	}

	preview := DeletePreview{Sources: paths, Samples: []string{}}
	for _, path := range paths {
		if ctx.Err() != nil {
			return DeletePreview{}, ctx.Err()
		}
		if reason := actions.refusal(path, req.SafeMode); reason != "" {
			preview.Warnings = append(preview.Warnings, path+": "+reason)
			continue
		}
		info, err := actions.fs.Lstat(path)
		if err != nil {
			preview.Warnings = append(preview.Warnings, err.Error())
			continue
		}
		preview.TotalFiles++
		preview.TotalBytes += info.Size()
		if len(preview.Samples) < maxPreviewSamples {
			preview.Samples = append(preview.Samples, path)
		}
	}
	return preview, nil
}

func (actions *FSActions) Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	start := time.Now()
	paths := normalizePaths(req.Paths)
	if len(paths) == 0 {
		return DeleteResult{}, ErrNoPaths
	}

	result := DeleteResult{Deleted: []string{}, Errors: []DeleteError{}}
	for _, path := range paths {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, DeleteError{Path: path, Reason: reasonCancelled})
			continue
		}
		if reason := actions.refusal(path, req.SafeMode); reason != "" {
			result.Errors = append(result.Errors, DeleteError{Path: path, Reason: reason})
			continue
		}
		if err := actions.fs.Remove(path); err != nil {
			actions.logger.Warn().Err(err).Str("path", path).Msg("delete failed")
			result.Errors = append(result.Errors, DeleteError{Path: path, Reason: err.Error()})
			continue
		}
		actions.logger.Info().Str("path", path).Msg("deleted")
		result.Deleted = append(result.Deleted, path)
	}
	result.Count = len(result.Deleted)
	result.Duration = time.Since(start)
	return result, nil
}

// refusal returns why path may not be deleted, or "" when it may. The check
// uses Lstat, so a symlink is refused even when it points at a regular file.
func (actions *FSActions) refusal(path string, safeMode bool) string {
	if safeMode && isCriticalPath(path) {
		return reasonCritical
	}
	info, err := actions.fs.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reasonNotAFile
		}
		return err.Error()
	}
	if !info.Mode().IsRegular() {
		return reasonNotAFile
	}
	return ""
}

func normalizePaths(paths []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		clean := cleanPath(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		result = append(result, clean)
	}
	return result
}

// isCriticalPath blocks system roots and anything directly holding them.
// Files below the home directory stay deletable; the home directory itself
// does not.
func isCriticalPath(path string) bool {
	path = filepath.Clean(path)
	for _, root := range []string{"/etc", "/usr", "/var", "/bin", "/sbin", "/boot"} {
		if isWithin(root, path) {
			return true
		}
	}
	if path == string(filepath.Separator) {
		return true
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == path {
		return true
	}
	return false
}
