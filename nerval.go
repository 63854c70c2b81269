package nerval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/database"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// Nerval wires the extraction pipeline, its document source and the evaluation
type Nerval struct {
	Config    model.PipelineConfig
	Source    pipeline.DocumentSource
	Pipeline  *pipeline.Pipeline           // Set by SetExtractor or UseDefaultExtractor
	DB        *helper.Database             // Optional
	Documents *database.DocumentsDBHandler // Optional, the source when a database is used

	extractor *pipeline.HugotExtractor
	log       *slog.Logger
}

// NewNerval creates an instance reading documents from source.
// The configuration is validated here.
func NewNerval(config model.PipelineConfig, source pipeline.DocumentSource) (*Nerval, error) {
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}
	if source == nil {
		return nil, helper.NewError("document source validation", fmt.Errorf("%w: document source is nil", model.ErrInvalidConfig))
	}

	return &Nerval{
		Config: config,
		Source: source,
		log:    helper.NewLogger(slog.LevelInfo),
	}, nil
}

// NewNervalWithDatabase creates an instance reading documents from the Postgres document store
func NewNervalWithDatabase(config model.PipelineConfig, dbConfig *helper.DatabaseConfiguration) (*Nerval, error) {
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("validate config", err)
	}

	logger := helper.NewLogger(slog.LevelInfo)
	db, err := helper.NewDatabase("nerval", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create documents handler", err)
	}

	return &Nerval{
		Config:    config,
		Source:    documents,
		DB:        db,
		Documents: documents,
		log:       logger,
	}, nil
}

// SetLogger replaces the logger. A pipeline created before keeps its logger.
func (n *Nerval) SetLogger(logger *slog.Logger) {
	if logger != nil {
		n.log = logger
	}
}

// SetExtractor builds the pipeline around extract
func (n *Nerval) SetExtractor(extract pipeline.ExtractFunc) error {
	p, err := pipeline.NewPipeline(n.Config, extract, n.log)
	if err != nil {
		return helper.NewError("create pipeline", err)
	}
	n.Pipeline = p
	return nil
}

// UseDefaultExtractor sets up the hugot NER model named in the configuration.
// The model is downloaded on first use.
func (n *Nerval) UseDefaultExtractor() error {
	extractor, err := pipeline.NewHugotExtractor(n.Config.ModelName, n.Config.OnnxFilePath)
	if err != nil {
		return helper.NewError("create default extractor", err)
	}
	if err := n.SetExtractor(extractor.Extract); err != nil {
		extractor.Destroy()
		return err
	}
	if n.extractor != nil {
		n.extractor.Destroy()
	}
	n.extractor = extractor
	return nil
}

// Discover lists the documents of folders in the source, all documents without folders.
// It works for file and database sources.
func (n *Nerval) Discover(folders ...string) ([]*model.Document, error) {
	switch source := n.Source.(type) {
	case *pipeline.FileDocumentSource:
		return source.Discover(folders...)
	case *database.DocumentsDBHandler:
		return source.SelectDocumentsByFolders(folders)
	default:
		return nil, helper.NewError("discover documents", fmt.Errorf("source %T cannot list documents", n.Source))
	}
}

// Extract runs the pipeline over docs with the configured number of workers
func (n *Nerval) Extract(ctx context.Context, docs []*model.Document) (*model.RunResult, error) {
	if n.Pipeline == nil {
		return nil, helper.NewError("extract", fmt.Errorf("pipeline not set, use SetExtractor() first"))
	}

	runner, err := pipeline.NewRunner(n.Pipeline, n.Source, n.Config.Workers, n.log)
	if err != nil {
		return nil, helper.NewError("create runner", err)
	}
	return runner.Run(ctx, docs)
}

// Evaluate compares predictions with the gold standard for the configured types
func (n *Nerval) Evaluate(gold []model.Annotation, pred []model.Annotation) *evaluation.Report {
	types := n.Config.EntityTypes()
	report := evaluation.Evaluate(gold, pred, types).Report(types, n.Config.ConfidenceLevel)
	n.log.Info(
		"Evaluation finished",
		slog.Int("gold", len(gold)),
		slog.Int("predictions", len(pred)),
		slog.Float64("micro_f1", report.Micro.F1),
	)
	return report
}

// Audit runs the quality audit on mentions against their source documents
func (n *Nerval) Audit(ctx context.Context, mentions []*model.Mention, config evaluation.AuditConfig) (*evaluation.QualityReport, error) {
	auditor, err := evaluation.NewAuditor(n.Source, config, n.log)
	if err != nil {
		return nil, helper.NewError("create auditor", err)
	}
	return auditor.Audit(ctx, evaluation.AggregateMentions(mentions), n.Config.EntityTypes())
}

// Close releases the model session and the database connection
func (n *Nerval) Close() error {
	var err error
	if n.extractor != nil {
		err = n.extractor.Destroy()
		n.extractor = nil
	}
	if n.DB != nil {
		if closeErr := n.DB.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
