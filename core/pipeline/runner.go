package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
	"golang.org/x/sync/semaphore"
)

// Runner processes documents in parallel with a bounded number of workers
type Runner struct {
	pipeline *Pipeline
	source   DocumentSource
	workers  int
	log      *slog.Logger
}

// NewRunner creates a runner
func NewRunner(p *Pipeline, source DocumentSource, workers int, logger *slog.Logger) (*Runner, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pipeline is nil", model.ErrInvalidConfig)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: document source is nil", model.ErrInvalidConfig)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", model.ErrInvalidConfig, workers)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pipeline: p,
		source:   source,
		workers:  workers,
		log:      logger,
	}, nil
}

// Run processes docs and returns their results in input order.
// A failing document becomes a result with Err set and no mentions, the other
// documents are not affected. Run only returns an error when ctx is done
// before all documents were started.
func (r *Runner) Run(ctx context.Context, docs []*model.Document) (*model.RunResult, error) {
	runID := uuid.New()
	cache := NewDocumentCache(r.source)
	sem := semaphore.NewWeighted(int64(r.workers))
	results := make([]*model.DocumentResult, len(docs))

	r.log.Info("Run started", slog.String("run", runID.String()), slog.Int("documents", len(docs)), slog.Int("workers", r.workers))

	var wg sync.WaitGroup
	var acquireErr error
	for i, doc := range docs {
		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = err
			break
		}
		wg.Add(1)
		go func(i int, doc *model.Document) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = r.processDocument(ctx, cache, doc)
		}(i, doc)
	}
	wg.Wait()

	if acquireErr != nil {
		return nil, helper.NewError("run documents", acquireErr)
	}

	result := &model.RunResult{
		RunID:     runID,
		Documents: results,
	}
	for _, documentResult := range results {
		result.Summary.Add(documentResult)
	}

	r.log.Info(
		"Run finished",
		slog.String("run", runID.String()),
		slog.Int("documents", result.Summary.Documents),
		slog.Int("documents_failed", result.Summary.DocumentsFailed),
		slog.Int("chunks", result.Summary.Chunks),
		slog.Int("chunks_failed", result.Summary.ChunksFailed),
		slog.Int("candidates", result.Summary.Candidates),
		slog.Int("mentions", result.Summary.Mentions),
	)

	return result, nil
}

func (r *Runner) processDocument(ctx context.Context, cache *DocumentCache, doc *model.Document) (result *model.DocumentResult) {
	if doc == nil {
		err := fmt.Errorf("%w: nil document", ErrDocumentNotFound)
		return &model.DocumentResult{
			Document:    &model.Document{},
			Mentions:    []*model.Mention{},
			Err:         err,
			Diagnostics: []model.Diagnostic{{Stage: model.StageLoad, Chunk: -1, Message: err.Error()}},
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("pipeline panic: %v", rec)
			r.log.Error("Document failed", slog.String("document", doc.Key()), slog.Any("error", err))
			result = &model.DocumentResult{
				Document:    doc,
				Mentions:    []*model.Mention{},
				Err:         err,
				Diagnostics: []model.Diagnostic{diagnostic(model.StageExtract, doc, -1, err)},
			}
		}
	}()

	text, err := cache.Load(ctx, doc)
	if err != nil {
		r.log.Warn("Document could not be loaded", slog.String("document", doc.Key()), slog.Any("error", err))
		return &model.DocumentResult{
			Document:    doc,
			Mentions:    []*model.Mention{},
			Err:         err,
			Diagnostics: []model.Diagnostic{diagnostic(model.StageLoad, doc, -1, err)},
		}
	}

	return r.pipeline.ProcessDocument(doc, text)
}
