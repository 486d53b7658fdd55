package services

import "context"

type Scanner interface {
	Scan(ctx context.Context, req ScanRequest) (ScanResult, error)
}

type DuplicateFinder interface {
	Find(ctx context.Context, req DuplicateRequest) (DuplicateResult, error)
}

type Actions interface {
	Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error)
}

type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (ExplainResult, error)
}

// Generator turns a prompt into free text. Failures come back as text too.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

type RootValidator interface {
	ValidateRoot(path string) (string, error)
}
