package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// DefaultModelName is the token classification model used by default
const DefaultModelName = "KnightsAnalytics/distilbert-NER"

// HugotExtractor runs a token classification (NER) model through hugot.
// Extract is safe for concurrent use, calls into the model are serialized.
type HugotExtractor struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	mu       sync.Mutex
}

// NewHugotExtractor downloads the model if needed and creates the NER pipeline.
// An empty modelName uses DefaultModelName.
func NewHugotExtractor(modelName string, onnxFilePath string) (*HugotExtractor, error) {
	if modelName == "" {
		modelName = DefaultModelName
	}
	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, helper.NewError("prepare model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "nerval-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return &HugotExtractor{
		session:  session,
		pipeline: nerPipeline,
	}, nil
}

// Extract returns the entities of text whose label is one of labels and whose
// score is at least floor. Labels are compared after entity type resolution,
// so "person" matches the model's "B-PER".
func (e *HugotExtractor) Extract(text string, labels []string, floor float64) ([]model.Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return []model.Candidate{}, nil
	}

	e.mu.Lock()
	result, err := e.pipeline.RunPipeline([]string{text})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to run NER: %w", err)
	}

	candidates := []model.Candidate{}
	if len(result.Entities) == 0 {
		return candidates, nil
	}

	wanted := requestedTypes(labels)
	for _, entity := range result.Entities[0] {
		entityType, ok := model.ParseEntityType(entity.Entity)
		if !ok || !wanted[entityType] {
			continue
		}
		score := float64(entity.Score)
		if score < floor {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Text:  strings.TrimSpace(entity.Word),
			Label: entityType.Label(),
			Score: score,
			Start: int(entity.Start),
			End:   int(entity.End),
		})
	}

	return candidates, nil
}

// Destroy releases the hugot session
func (e *HugotExtractor) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

// requestedTypes resolves labels to entity types, unknown labels are ignored
func requestedTypes(labels []string) map[model.EntityType]bool {
	wanted := make(map[model.EntityType]bool, len(labels))
	for _, label := range labels {
		if t, ok := model.ParseEntityType(label); ok {
			wanted[t] = true
		}
	}
	return wanted
}
