package services

import (
	"time"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

type ScanResult struct {
	Root     *domain.DirectoryNode
	Skipped  []domain.Exclusion
	Duration time.Duration
}

type DuplicateResult struct {
	Groups     []domain.DuplicateGroup
	Skipped    []domain.Exclusion
	Candidates int
	Hashed     int
	Duration   time.Duration
}

// TotalWasted sums the reclaimable bytes over all groups.
func (result DuplicateResult) TotalWasted() int64 {
	var total int64
	for _, group := range result.Groups {
		total += group.Wasted
	}
	return total
}

type DeleteError struct {
	Path   string
	Reason string
}

type DeleteResult struct {
	Deleted  []string
	Errors   []DeleteError
	Count    int
	Duration time.Duration
}

type ExplainResult struct {
	Groups []domain.ExplainedGroup
}
