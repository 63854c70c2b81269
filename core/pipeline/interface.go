package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// ChunkFunc splits text into chunks. Chunk paths are built from basePath
// (e.g. "folder.doc01.chunk3").
type ChunkFunc func(text string, basePath string) ([]model.Chunk, error)

// ExtractFunc runs the NER model on one chunk and returns candidates whose
// label is one of labels and whose score is at least floor.
// It is not required to be deterministic.
type ExtractFunc func(text string, labels []string, floor float64) ([]model.Candidate, error)

// Pipeline turns the text of one document into its deduplicated mentions:
// clean, chunk, extract, validate, filter, decompose and enrich, deduplicate.
type Pipeline struct {
	Config     model.PipelineConfig
	Chunker    ChunkFunc
	Extractor  ExtractFunc
	Filter     *ScoreFilter
	Enricher   *ContextEnricher // Optional
	Normalizer *Normalizer

	labels []string
	log    *slog.Logger
}

// NewPipeline validates config and creates a pipeline. Configuration errors
// are returned here and never during processing.
func NewPipeline(config model.PipelineConfig, extractor ExtractFunc, logger *slog.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if extractor == nil {
		return nil, fmt.Errorf("%w: extractor is nil", model.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	chunker, err := SentenceWindowChunker(config.MaxChunkWords, config.OverlapWords)
	if err != nil {
		return nil, err
	}
	thresholds, err := config.EntityThresholds()
	if err != nil {
		return nil, err
	}
	filter, err := NewScoreFilter(thresholds)
	if err != nil {
		return nil, err
	}

	labels := []string{}
	for _, t := range config.EntityTypes() {
		labels = append(labels, t.Label())
	}

	p := &Pipeline{
		Config:     config,
		Chunker:    chunker,
		Extractor:  extractor,
		Filter:     filter,
		Normalizer: NewNormalizer(config.PersonNameKeys),
		labels:     labels,
		log:        logger,
	}
	if config.EnrichContext {
		p.Enricher = NewContextEnricher(config.ContextWindow)
	}
	return p, nil
}

// SetChunker replaces the chunking function
func (p *Pipeline) SetChunker(chunker ChunkFunc) {
	p.Chunker = chunker
}

// Labels returns the labels requested from the extractor
func (p *Pipeline) Labels() []string {
	return p.labels
}

// ProcessDocument runs the pipeline on the text of doc. Failing chunks and
// malformed candidates are contained and reported as diagnostics. A chunking
// failure fails the document.
func (p *Pipeline) ProcessDocument(doc *model.Document, text string) *model.DocumentResult {
	result := &model.DocumentResult{
		Document: doc,
		Mentions: []*model.Mention{},
	}

	if p.Config.CleanMarkdown {
		text = CleanMarkdown(text)
	}

	chunks, err := p.Chunker(text, basePath(doc))
	if err != nil {
		result.Err = helper.NewError("chunk document", err)
		result.Diagnostics = append(result.Diagnostics, diagnostic(model.StageChunk, doc, -1, err))
		p.log.Warn("Chunking failed", slog.String("document", doc.Key()), slog.Any("error", err))
		return result
	}
	result.Stats.Chunks = len(chunks)

	mentions := []*model.Mention{}
	for _, chunk := range chunks {
		candidates, err := p.extract(chunk.Content)
		if err != nil {
			result.Stats.ChunksFailed++
			result.Diagnostics = append(result.Diagnostics, diagnostic(model.StageExtract, doc, chunk.Index, err))
			p.log.Warn("Extraction failed", slog.String("document", doc.Key()), slog.Int("chunk", chunk.Index), slog.Any("error", err))
			continue
		}
		result.Stats.Candidates += len(candidates)

		for _, candidate := range candidates {
			mention, err := model.NewMention(candidate, doc, chunk.Index)
			if err != nil {
				result.Stats.Malformed++
				result.Diagnostics = append(result.Diagnostics, diagnostic(model.StageCandidate, doc, chunk.Index, err))
				continue
			}
			mentions = append(mentions, mention)
		}
	}

	kept := p.Filter.Filter(mentions)
	result.Stats.BelowThreshold = len(mentions) - len(kept)

	for _, m := range kept {
		if m.Type != model.EntityTypePerson {
			continue
		}
		name := ParsePersonName(m.Text)
		m.Name = &name
		if p.Enricher != nil {
			m.Enrichment = p.Enricher.Enrich(m.Text, text)
		}
	}

	deduplicated, stats := p.Normalizer.Deduplicate(kept)
	result.Mentions = deduplicated
	result.Stats.TitleOnly = stats.TitleOnly
	result.Stats.Duplicates = stats.Duplicates
	result.Stats.Mentions = len(deduplicated)

	p.log.Debug(
		"Processed document",
		slog.String("document", doc.Key()),
		slog.Int("chunks", result.Stats.Chunks),
		slog.Int("candidates", result.Stats.Candidates),
		slog.Int("mentions", result.Stats.Mentions),
	)

	return result
}

// extract calls the extractor and turns a panic into an error
func (p *Pipeline) extract(text string) (candidates []model.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidates, err = nil, fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return p.Extractor(text, p.labels, p.Config.ExtractionFloor)
}

func diagnostic(stage string, doc *model.Document, chunk int, err error) model.Diagnostic {
	return model.Diagnostic{
		Stage:    stage,
		Folder:   doc.Folder,
		Document: doc.Name,
		Chunk:    chunk,
		Message:  err.Error(),
	}
}

// basePath builds a dotted chunk path prefix from folder and name
func basePath(doc *model.Document) string {
	replacer := strings.NewReplacer(".", "_", " ", "_", "/", "_")
	if doc.Folder == "" {
		return replacer.Replace(doc.Name)
	}
	return replacer.Replace(doc.Folder) + "." + replacer.Replace(doc.Name)
}
