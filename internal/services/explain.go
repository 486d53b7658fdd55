package services

import (
	"context"

	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/llm"
)

const DefaultMaxGroups = 10

type ExplainOptions struct {
	Lang      string
	MaxGroups int
}

// GroupExplainer re-runs duplicate detection and attaches generated text to
// the groups wasting the most space.
type GroupExplainer struct {
	finder    DuplicateFinder
	generator Generator
	options   ExplainOptions
}

func NewGroupExplainer(finder DuplicateFinder, generator Generator, options ExplainOptions) *GroupExplainer {
	if options.Lang == "" {
		options.Lang = llm.LangJapanese
	}
	if options.MaxGroups <= 0 {
		options.MaxGroups = DefaultMaxGroups
	}
	return &GroupExplainer{finder: finder, generator: generator, options: options}
}

func (explainer *GroupExplainer) Explain(ctx context.Context, req ExplainRequest) (ExplainResult, error) {
	found, err := explainer.finder.Find(ctx, DuplicateRequest{RootPath: req.RootPath})
	if err != nil {
		return ExplainResult{}, err
	}
	lang := req.Lang
	if lang == "" {
		lang = explainer.options.Lang
	}
	limit := req.MaxGroups
	if limit <= 0 {
		limit = explainer.options.MaxGroups
	}

	top := found.Groups
	if len(top) > limit {
		top = top[:limit]
	}
	result := ExplainResult{Groups: make([]domain.ExplainedGroup, 0, len(top))}
	for _, group := range top {
		if ctx.Err() != nil {
			return ExplainResult{}, ctx.Err()
		}
		result.Groups = append(result.Groups, explainer.ExplainGroup(ctx, group, lang))
	}
	return result, nil
}

func (explainer *GroupExplainer) ExplainGroup(ctx context.Context, group domain.DuplicateGroup, lang string) domain.ExplainedGroup {
	if lang == "" {
		lang = explainer.options.Lang
	}
	prompt := llm.BuildExplainPrompt(group, lang)
	return domain.ExplainedGroup{
		DuplicateGroup: group,
		Explanation:    explainer.generator.Generate(ctx, prompt),
	}
}
