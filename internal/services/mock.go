package services

import (
	"context"
	"sync"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

// MockFinder returns canned groups and counts calls.
type MockFinder struct {
	mu     sync.Mutex
	Groups []domain.DuplicateGroup
	Err    error
	Calls  int
}

func NewMockFinder(groups ...domain.DuplicateGroup) *MockFinder {
	return &MockFinder{Groups: groups}
}

func (finder *MockFinder) Find(ctx context.Context, req DuplicateRequest) (DuplicateResult, error) {
	finder.mu.Lock()
	finder.Calls++
	finder.mu.Unlock()
	if ctx.Err() != nil {
		return DuplicateResult{}, ctx.Err()
	}
	if finder.Err != nil {
		return DuplicateResult{}, finder.Err
	}
	groups := append([]domain.DuplicateGroup{}, finder.Groups...)
	return DuplicateResult{Groups: groups}, nil
}

// MockGenerator answers every prompt with Reply and remembers the prompts.
type MockGenerator struct {
	mu      sync.Mutex
	Reply   string
	Prompts []string
}

func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{Reply: reply}
}

func (generator *MockGenerator) Generate(ctx context.Context, prompt string) string {
	generator.mu.Lock()
	defer generator.mu.Unlock()
	generator.Prompts = append(generator.Prompts, prompt)
	return generator.Reply
}
