package pipeline

import (
	"fmt"
	"math"

	"github.com/siherrmann/nerval/model"
)

// ScoreFilter keeps mentions whose score reaches the threshold of their type
type ScoreFilter struct {
	thresholds map[model.EntityType]float64
}

// NewScoreFilter validates the thresholds and creates a filter.
// Only types present in thresholds pass the filter.
func NewScoreFilter(thresholds map[model.EntityType]float64) (*ScoreFilter, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: no entity type thresholds", model.ErrInvalidConfig)
	}

	copied := make(map[model.EntityType]float64, len(thresholds))
	for entityType, threshold := range thresholds {
		if entityType == "" {
			return nil, fmt.Errorf("%w: empty entity type in thresholds", model.ErrInvalidConfig)
		}
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("%w: threshold for %s must be in [0,1], got %v", model.ErrInvalidConfig, entityType, threshold)
		}
		copied[entityType] = threshold
	}

	return &ScoreFilter{thresholds: copied}, nil
}

// Threshold returns the threshold of a type and whether the type is known
func (f *ScoreFilter) Threshold(entityType model.EntityType) (float64, bool) {
	threshold, ok := f.thresholds[entityType]
	return threshold, ok
}

// Filter returns the mentions with score >= threshold[type] in their input order.
// Mentions of unknown types are dropped. The input slice is not modified.
func (f *ScoreFilter) Filter(mentions []*model.Mention) []*model.Mention {
	kept := make([]*model.Mention, 0, len(mentions))
	for _, m := range mentions {
		if m == nil {
			continue
		}
		threshold, ok := f.thresholds[m.Type]
		if !ok || m.Score < threshold {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
