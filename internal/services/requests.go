package services

type ScanRequest struct {
	RootPath string
}

type DuplicateRequest struct {
	RootPath string
}

type DeleteRequest struct {
	Paths    []string
	SafeMode bool
}

type ExplainRequest struct {
	RootPath  string
	Lang      string
	MaxGroups int
}
