package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/core/ports/driving"
)

// Keyword count bounds.
const (
	DefaultKeywordCount = 15
	MaxKeywordCount     = 50
)

// Verify interface implementation.
var _ driving.KeywordService = (*KeywordService)(nil)

// KeywordService extracts key terms from a subject's notes.
type KeywordService struct {
	pipeline *Pipeline
	rules    []RepairRule
}

// NewKeywordService creates a new keyword service.
func NewKeywordService(pipeline *Pipeline) *KeywordService {
	return &KeywordService{
		pipeline: pipeline,
		rules:    DefaultRepairRules,
	}
}

var keywordSpec = RecordSpec[domain.Keyword]{
	Keys: []string{"term", "definition"},
	Normalize: func(k domain.Keyword) domain.Keyword {
		k.Term = strings.TrimSpace(k.Term)
		k.Definition = strings.TrimSpace(k.Definition)
		return k
	},
	Validate: func(k domain.Keyword) bool {
		return k.Term != ""
	},
}

// Generate produces up to opts.Count distinct keywords.
func (s *KeywordService) Generate(
	ctx context.Context,
	key domain.ConversationKey,
	opts driving.KeywordOptions,
) ([]domain.Keyword, error) {
	count := clampCount(opts.Count, DefaultKeywordCount, MaxKeywordCount)

	result, err := s.pipeline.Run(ctx, PipelineRequest{
		Key:      key,
		Task:     domain.TaskKeywords,
		Prompt:   driven.PromptKeywords,
		Count:    count,
		UserTurn: structuredRequest(fmt.Sprintf("List %d key terms", count), opts.Focus),
	})
	if err != nil {
		return nil, err
	}

	// Extract without a cap so duplicates do not crowd out distinct terms.
	keywords, err := ExtractRecords(StructuredText(result.Completion), 0, keywordSpec, s.rules)
	if err != nil {
		return nil, fmt.Errorf("extracting keywords: %w", err)
	}

	return dedupeRecords(keywords, count, func(k domain.Keyword) string { return k.Term }), nil
}

// dedupeRecords keeps the first record for each key, compared
// case-insensitively, and stops once limit records are kept.
func dedupeRecords[T any](records []T, limit int, key func(T) string) []T {
	seen := make(map[string]bool, len(records))
	out := make([]T, 0, min(len(records), limit))
	for _, r := range records {
		k := strings.ToLower(key(r))
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
