package services

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

type DetectorOptions struct {
	MaxDepth int
	Workers  int
	Hash     HashOptions
	Logger   zerolog.Logger
}

// Detector groups files by size, then hashes only the files that share a
// size with at least one other file.
type Detector struct {
	fs       billy.Filesystem
	hasher   *Hasher
	maxDepth int
	workers  int
	logger   zerolog.Logger
	progress chan ScanProgress
}

type sizeBucket struct {
	size  int64
	paths []string
}

type hashJob struct {
	bucket int
	path   string
	digest string
	err    error
}

type walkFrame struct {
	path  string
	depth int
}

func NewDetector(fsys billy.Filesystem, options DetectorOptions) (*Detector, error) {
	hasher, err := NewHasher(options.Hash)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = HostFS()
	}
	maxDepth := options.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	workers := options.Workers
	if workers <= 0 {
		workers = maxInt(2, runtime.NumCPU())
	}
	return &Detector{
		fs:       fsys,
		hasher:   hasher,
		maxDepth: maxDepth,
		workers:  workers,
		logger:   options.Logger,
		progress: make(chan ScanProgress, progressBuffer),
	}, nil
}

func (detector *Detector) Progress() <-chan ScanProgress {
	return detector.progress
}

func (detector *Detector) Find(ctx context.Context, req DuplicateRequest) (DuplicateResult, error) {
	start := time.Now()
	root, err := requireDirectory(detector.fs, req.RootPath)
	if err != nil {
		return DuplicateResult{}, err
	}

	buckets, skipped, err := detector.partitionBySize(ctx, root)
	if err != nil {
		return DuplicateResult{}, err
	}

	jobs := make([]hashJob, 0)
	for index, bucket := range buckets {
		for _, path := range bucket.paths {
			jobs = append(jobs, hashJob{bucket: index, path: path})
		}
	}
	if err := detector.hashAll(ctx, root, jobs); err != nil {
		return DuplicateResult{}, err
	}

	groups, hashed, hashSkipped := detector.partitionByContent(buckets, jobs)
	skipped = append(skipped, hashSkipped...)

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Wasted > groups[j].Wasted
	})
	progressNonBlocking(detector.progress, ScanProgress{Phase: PhaseHashes, Path: root, Scanned: int64(len(jobs)), Completed: true})

	return DuplicateResult{
		Groups:     groups,
		Skipped:    skipped,
		Candidates: len(jobs),
		Hashed:     hashed,
		Duration:   time.Since(start),
	}, nil
}

// partitionBySize walks root without following directory links and returns
// the size buckets holding two or more non-empty files, in first-seen order.
// Symlinks, including links to regular files, are excluded and never grouped.
func (detector *Detector) partitionBySize(ctx context.Context, root string) ([]sizeBucket, []domain.Exclusion, error) {
	index := make(map[int64]int)
	all := make([]sizeBucket, 0)
	var skipped []domain.Exclusion
	var seen int64

	stack := []walkFrame{{path: root}}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := detector.fs.ReadDir(frame.path)
		if err != nil {
			skipped = append(skipped, detector.exclude(frame.path, domain.ExcludedStat, err))
			continue
		}
		pending := make([]walkFrame, 0)
		for _, entry := range entries {
			path := filepath.Join(frame.path, entry.Name())
			switch {
			case isSymlink(entry):
				skipped = append(skipped, detector.exclude(path, domain.ExcludedSymlink, nil))
			case entry.IsDir():
				if frame.depth+1 > detector.maxDepth {
					skipped = append(skipped, detector.exclude(path, domain.ExcludedDepth, nil))
					continue
				}
				pending = append(pending, walkFrame{path: path, depth: frame.depth + 1})
			case entry.Mode().IsRegular():
				size := entry.Size()
				if size == 0 {
					continue
				}
				position, ok := index[size]
				if !ok {
					position = len(all)
					index[size] = position
					all = append(all, sizeBucket{size: size})
				}
				all[position].paths = append(all[position].paths, path)
				seen++
				if seen%progressEvery == 0 {
					progressNonBlocking(detector.progress, ScanProgress{Phase: PhaseSizes, Path: root, Scanned: seen, Current: path})
				}
			default:
				skipped = append(skipped, detector.exclude(path, domain.ExcludedUnsupported, nil))
			}
		}
		for position := len(pending) - 1; position >= 0; position-- {
			stack = append(stack, pending[position])
		}
	}

	buckets := make([]sizeBucket, 0, len(all))
	for _, bucket := range all {
		if len(bucket.paths) > 1 {
			buckets = append(buckets, bucket)
		}
	}
	return buckets, skipped, nil
}

// hashAll fills in jobs[i].digest or jobs[i].err. Workers write only to their
// own slot, so the result order does not depend on scheduling.
func (detector *Detector) hashAll(ctx context.Context, root string, jobs []hashJob) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detector.workers)
	for index := range jobs {
		job := &jobs[index]
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			job.digest, job.err = detector.hasher.HashFile(detector.fs, job.path)
			return nil
		})
		if (index+1)%progressEvery == 0 {
			progressNonBlocking(detector.progress, ScanProgress{Phase: PhaseHashes, Path: root, Scanned: int64(index + 1), Current: job.path})
		}
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (detector *Detector) partitionByContent(buckets []sizeBucket, jobs []hashJob) ([]domain.DuplicateGroup, int, []domain.Exclusion) {
	groups := make([]domain.DuplicateGroup, 0)
	var skipped []domain.Exclusion
	hashed := 0

	cursor := 0
	for bucketIndex, bucket := range buckets {
		byDigest := make(map[string][]string)
		order := make([]string, 0)
		for ; cursor < len(jobs) && jobs[cursor].bucket == bucketIndex; cursor++ {
			job := jobs[cursor]
			if job.err != nil {
				skipped = append(skipped, detector.exclude(job.path, domain.ExcludedRead, job.err))
				continue
			}
			hashed++
			if _, ok := byDigest[job.digest]; !ok {
				order = append(order, job.digest)
			}
			byDigest[job.digest] = append(byDigest[job.digest], job.path)
		}
		for _, digest := range order {
			paths := byDigest[digest]
			if len(paths) < 2 {
				continue
			}
			groups = append(groups, domain.NewDuplicateGroup(digest, bucket.size, paths))
		}
	}
	return groups, hashed, skipped
}

func (detector *Detector) exclude(path string, reason domain.ExclusionReason, err error) domain.Exclusion {
	exclusion := exclusionFor(path, reason, err)
	detector.logger.Debug().Str("path", path).Str("reason", string(exclusion.Reason)).Msg("candidate excluded")
	return exclusion
}
