package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

type ScanOptions struct {
	MaxDepth int
	Logger   zerolog.Logger
}

// FSScanner builds a DirectoryNode tree. It keeps going past unreadable
// entries and records them as exclusions instead.
type FSScanner struct {
	fs       billy.Filesystem
	maxDepth int
	logger   zerolog.Logger
	progress chan ScanProgress
}

type scanFrame struct {
	node  *domain.DirectoryNode
	depth int
}

func NewFSScanner(fsys billy.Filesystem, options ScanOptions) *FSScanner {
	if fsys == nil {
		fsys = HostFS()
	}
	maxDepth := options.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &FSScanner{
		fs:       fsys,
		maxDepth: maxDepth,
		logger:   options.Logger,
		progress: make(chan ScanProgress, progressBuffer),
	}
}

func (scanner *FSScanner) Progress() <-chan ScanProgress {
	return scanner.progress
}

func (scanner *FSScanner) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	start := time.Now()
	root, err := requireDirectory(scanner.fs, req.RootPath)
	if err != nil {
		return ScanResult{}, err
	}

	rootNode := &domain.DirectoryNode{Name: displayName(root), Path: root}
	stack := []scanFrame{{node: rootNode}}
	visited := make([]*domain.DirectoryNode, 0, 64)
	var skipped []domain.Exclusion
	var scannedCount int64

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return ScanResult{}, ctx.Err()
		}
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited = append(visited, frame.node)

		entries, err := scanner.fs.ReadDir(frame.node.Path)
		if err != nil {
			skipped = append(skipped, scanner.exclude(frame.node.Path, domain.ExcludedStat, err))
			continue
		}

		pending := make([]scanFrame, 0, len(entries))
		for _, entry := range entries {
			path := filepath.Join(frame.node.Path, entry.Name())
			info, kind, exclusion := scanner.resolve(path, entry)
			if exclusion != nil {
				skipped = append(skipped, *exclusion)
				continue
			}
			switch kind {
			case kindFile:
				frame.node.Children = append(frame.node.Children, &domain.FileEntry{
					Name:      entry.Name(),
					Path:      path,
					Size:      info.Size(),
					Extension: extensionOf(entry.Name()),
				})
			case kindDir:
				if frame.depth+1 > scanner.maxDepth {
					skipped = append(skipped, scanner.exclude(path, domain.ExcludedDepth, nil))
					continue
				}
				child := &domain.DirectoryNode{Name: entry.Name(), Path: path}
				frame.node.Children = append(frame.node.Children, child)
				pending = append(pending, scanFrame{node: child, depth: frame.depth + 1})
			}
			scannedCount++
			if scannedCount%progressEvery == 0 {
				progressNonBlocking(scanner.progress, ScanProgress{Phase: PhaseTree, Path: root, Scanned: scannedCount, Current: path})
			}
		}
		for index := len(pending) - 1; index >= 0; index-- {
			stack = append(stack, pending[index])
		}
	}

	applyAccumulation(visited)
	progressNonBlocking(scanner.progress, ScanProgress{Phase: PhaseTree, Path: root, Scanned: scannedCount, Completed: true})

	return ScanResult{Root: rootNode, Skipped: skipped, Duration: time.Since(start)}, nil
}

// resolve follows symlinks so a link counts as whatever it points to. Broken
// links, sockets and devices come back as exclusions.
func (scanner *FSScanner) resolve(path string, info os.FileInfo) (os.FileInfo, entryKind, *domain.Exclusion) {
	if isSymlink(info) {
		target, err := scanner.fs.Stat(path)
		if err != nil {
			// a dangling or looping link is unsupported, not vanished
			exclusion := domain.Exclusion{Path: path, Reason: domain.ExcludedUnsupported, Err: err.Error()}
			scanner.logExclusion(exclusion)
			return nil, kindOther, &exclusion
		}
		info = target
	}
	kind := kindOf(info)
	if kind == kindOther {
		exclusion := scanner.exclude(path, domain.ExcludedUnsupported, nil)
		return nil, kindOther, &exclusion
	}
	return info, kind, nil
}

func (scanner *FSScanner) exclude(path string, reason domain.ExclusionReason, err error) domain.Exclusion {
	exclusion := exclusionFor(path, reason, err)
	scanner.logExclusion(exclusion)
	return exclusion
}

func (scanner *FSScanner) logExclusion(exclusion domain.Exclusion) {
	scanner.logger.Debug().Str("path", exclusion.Path).Str("reason", string(exclusion.Reason)).Msg("entry excluded")
}

// applyAccumulation folds sizes bottom-up. visited is in pre-order, so walking
// it backwards reaches every child directory before its parent.
func applyAccumulation(visited []*domain.DirectoryNode) {
	for index := len(visited) - 1; index >= 0; index-- {
		node := visited[index]
		var total int64
		for _, child := range node.Children {
			total += child.NodeSize()
		}
		node.Size = total
	}
}
