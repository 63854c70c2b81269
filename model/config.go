package model

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by all configuration validation errors
var ErrInvalidConfig = errors.New("invalid configuration")

// PipelineConfig configures extraction, normalization and evaluation
type PipelineConfig struct {
	// Chunking
	MaxChunkWords int  `toml:"max_chunk_words" json:"max_chunk_words"`
	OverlapWords  int  `toml:"overlap_words" json:"overlap_words"`
	CleanMarkdown bool `toml:"clean_markdown" json:"clean_markdown"`

	// Extraction
	ModelName       string             `toml:"model_name" json:"model_name"`
	OnnxFilePath    string             `toml:"onnx_file_path" json:"onnx_file_path,omitempty"`
	ExtractionFloor float64            `toml:"extraction_floor" json:"extraction_floor"`
	Thresholds      map[string]float64 `toml:"thresholds" json:"thresholds"`
	Workers         int                `toml:"workers" json:"workers"`

	// Normalization
	PersonNameKeys bool `toml:"person_name_keys" json:"person_name_keys"`
	EnrichContext  bool `toml:"enrich_context" json:"enrich_context"`
	ContextWindow  int  `toml:"context_window" json:"context_window"`

	// Evaluation
	ConfidenceLevel float64 `toml:"confidence_level" json:"confidence_level"`
}

// DefaultPipelineConfig returns the default configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxChunkWords:   400,
		OverlapWords:    50,
		CleanMarkdown:   true,
		ModelName:       "KnightsAnalytics/distilbert-NER",
		ExtractionFloor: 0.35,
		Thresholds: map[string]float64{
			string(EntityTypePerson):       0.60,
			string(EntityTypeOrganization): 0.70,
			string(EntityTypeLocation):     0.65,
		},
		Workers:         4,
		PersonNameKeys:  false,
		EnrichContext:   true,
		ContextWindow:   150,
		ConfidenceLevel: 0.95,
	}
}

// LoadPipelineConfig reads a TOML file on top of the defaults and validates it
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	// Thresholds given in the file replace the default map
	var override struct {
		Thresholds map[string]float64 `toml:"thresholds"`
	}
	if err := toml.Unmarshal(data, &override); err != nil {
		return config, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if override.Thresholds != nil {
		config.Thresholds = nil
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, config.Validate()
}

// EntityThresholds resolves the threshold map to entity types.
// Unknown type names and aliases naming the same type twice are configuration errors.
func (c PipelineConfig) EntityThresholds() (map[EntityType]float64, error) {
	thresholds := make(map[EntityType]float64, len(c.Thresholds))
	names := make(map[EntityType]string, len(c.Thresholds))
	for name, threshold := range c.Thresholds {
		entityType, ok := ParseEntityType(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown entity type %q in thresholds", ErrInvalidConfig, name)
		}
		if other, ok := names[entityType]; ok {
			return nil, fmt.Errorf("%w: thresholds %q and %q both set %s", ErrInvalidConfig, other, name, entityType)
		}
		names[entityType] = name
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("%w: threshold for %s must be in [0,1], got %v", ErrInvalidConfig, name, threshold)
		}
		thresholds[entityType] = threshold
	}
	return thresholds, nil
}

// EntityTypes returns the configured types in default order followed by any extra types
func (c PipelineConfig) EntityTypes() []EntityType {
	thresholds, err := c.EntityThresholds()
	if err != nil {
		return nil
	}
	types := []EntityType{}
	for _, t := range DefaultEntityTypes {
		if _, ok := thresholds[t]; ok {
			types = append(types, t)
			delete(thresholds, t)
		}
	}
	extra := make([]EntityType, 0, len(thresholds))
	for t := range thresholds {
		extra = append(extra, t)
	}
	slices.Sort(extra)
	return append(types, extra...)
}

// Validate checks the configuration and fails fast on invalid values
func (c PipelineConfig) Validate() error {
	if c.MaxChunkWords <= 0 {
		return fmt.Errorf("%w: max_chunk_words must be positive, got %d", ErrInvalidConfig, c.MaxChunkWords)
	}
	if c.OverlapWords < 0 {
		return fmt.Errorf("%w: overlap_words must not be negative, got %d", ErrInvalidConfig, c.OverlapWords)
	}
	if c.OverlapWords >= c.MaxChunkWords {
		return fmt.Errorf("%w: overlap_words (%d) must be smaller than max_chunk_words (%d)", ErrInvalidConfig, c.OverlapWords, c.MaxChunkWords)
	}
	if c.ExtractionFloor < 0 || c.ExtractionFloor > 1 {
		return fmt.Errorf("%w: extraction_floor must be in [0,1], got %v", ErrInvalidConfig, c.ExtractionFloor)
	}
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("%w: at least one entity type threshold is required", ErrInvalidConfig)
	}
	if _, err := c.EntityThresholds(); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("%w: context_window must not be negative, got %d", ErrInvalidConfig, c.ContextWindow)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: confidence_level must be in (0,1), got %v", ErrInvalidConfig, c.ConfidenceLevel)
	}
	return nil
}
