package domain

type SortMode string

const (
	SortBySize SortMode = "size"
	SortByName SortMode = "name"
)

// DuplicateGroup is a set of files with identical size and content digest.
type DuplicateGroup struct {
	Hash   string   `json:"hash"`
	Size   int64    `json:"size"`
	Paths  []string `json:"paths"`
	Wasted int64    `json:"wasted"`
}

func NewDuplicateGroup(hash string, size int64, paths []string) DuplicateGroup {
	return DuplicateGroup{
		Hash:   hash,
		Size:   size,
		Paths:  paths,
		Wasted: WastedBytes(size, len(paths)),
	}
}

// WastedBytes is the space reclaimed by keeping exactly one of count copies.
func WastedBytes(size int64, count int) int64 {
	if count < 2 {
		return 0
	}
	return size * int64(count-1)
}

type ExplainedGroup struct {
	DuplicateGroup
	Explanation string `json:"explanation"`
}

type ExclusionReason string

const (
	ExcludedPermission  ExclusionReason = "permission"
	ExcludedVanished    ExclusionReason = "vanished"
	ExcludedStat        ExclusionReason = "stat"
	ExcludedRead        ExclusionReason = "read"
	ExcludedDepth       ExclusionReason = "depth"
	ExcludedUnsupported ExclusionReason = "unsupported"
	ExcludedSymlink     ExclusionReason = "symlink"
)

// Exclusion records an entry a best-effort traversal left out.
type Exclusion struct {
	Path   string          `json:"path"`
	Reason ExclusionReason `json:"reason"`
	Err    string          `json:"error,omitempty"`
}
