package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// Pipeline chains aggregation, budgeting, prompt assembly and invocation.
// It is shared by every generation feature.
type Pipeline struct {
	aggregator *NoteCorpusAggregator
	invoker    *ResilientInvoker
	prompts    driven.PromptStore
	settings   domain.AppSettings
}

// NewPipeline creates a new generation pipeline. A nil invoker makes every
// run fail with domain.ErrLLMUnavailable once material has been found.
func NewPipeline(
	aggregator *NoteCorpusAggregator,
	invoker *ResilientInvoker,
	prompts driven.PromptStore,
	settings domain.AppSettings,
) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		invoker:    invoker,
		prompts:    prompts,
		settings:   settings,
	}
}

// PipelineRequest describes one generation call.
type PipelineRequest struct {
	Key  domain.ConversationKey
	Task domain.Task

	// Prompt is the system prompt name. Its template receives the study
	// material, preceded by Count when Count is positive.
	Prompt string
	Count  int

	// History is replayed between the system prompt and UserTurn.
	History  []domain.ConversationTurn
	UserTurn string
}

// PipelineResult is the raw outcome of a successful run.
type PipelineResult struct {
	Completion *domain.Completion
	Bundle     domain.ContextBundle
	Corpus     domain.Corpus
}

// Run executes the pipeline. Missing material is reported as an error
// wrapping domain.ErrNoMaterial before the generation service is touched.
func (p *Pipeline) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	if err := req.Key.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Aggregate")
	corpus, err := p.aggregator.Aggregate(ctx, req.Key.UserID, req.Key.SubjectID)
	if err != nil {
		return nil, err
	}

	if p.invoker == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Budget")
	bundle := Budget(corpus, p.settings.Budget(req.Task))
	if bundle.WasTruncated {
		logger.Info("material for %s truncated from %d to %d chars", req.Key, corpus.TotalLength, len([]rune(bundle.Text)))
	}

	logger.Section("Assemble")
	system := p.systemPrompt(req.Prompt, req.Count, material(bundle))
	genReq := AssemblePrompt(system, req.History, req.UserTurn)
	logger.Debug("assembled %d messages (%d history turns)", len(genReq.Messages), len(req.History))

	logger.Section("Invoke")
	completion, err := p.invoker.Invoke(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", req.Task, err)
	}

	return &PipelineResult{
		Completion: completion,
		Bundle:     bundle,
		Corpus:     corpus,
	}, nil
}

// material is the text handed to the system prompt.
func material(bundle domain.ContextBundle) string {
	if !bundle.WasTruncated {
		return bundle.Text
	}
	return bundle.TruncationNote + "\n\n" + bundle.Text
}

func (p *Pipeline) systemPrompt(name string, count int, material string) string {
	template := p.loadPrompt(name)
	if count > 0 {
		return fmt.Sprintf(template, count, material)
	}
	return fmt.Sprintf(template, material)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (p *Pipeline) loadPrompt(name string) string {
	if p.prompts != nil {
		if prompt, err := p.prompts.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return driven.DefaultPrompts[name]
}
