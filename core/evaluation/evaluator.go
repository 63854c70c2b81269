package evaluation

import (
	"slices"
	"sync"

	"github.com/siherrmann/nerval/model"
)

// Accumulator collects metrics per entity type and overall.
// It is safe for concurrent use.
type Accumulator struct {
	mu      sync.Mutex
	byType  map[model.EntityType]*Metrics
	overall Metrics
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		byType: map[model.EntityType]*Metrics{},
	}
}

// Add compares gold and pred for one entity type and adds the result
// to that type and to the overall metrics.
func (a *Accumulator) Add(entityType model.EntityType, gold *AnnotationSet, pred *AnnotationSet) {
	var m Metrics
	m.Update(gold, pred)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.metricsFor(entityType).Merge(m)
	a.overall.Merge(m)
}

// Merge adds all metrics of other
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other == a {
		return
	}
	other.mu.Lock()
	byType := make(map[model.EntityType]Metrics, len(other.byType))
	for t, m := range other.byType {
		byType[t] = m.clone()
	}
	overall := other.overall.clone()
	other.mu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	for t, m := range byType {
		a.metricsFor(t).Merge(m)
	}
	a.overall.Merge(overall)
}

// Metrics returns a copy of the metrics of one type
func (a *Accumulator) Metrics(entityType model.EntityType) Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.byType[entityType]; ok {
		return m.clone()
	}
	return Metrics{}
}

// Overall returns a copy of the metrics over all types
func (a *Accumulator) Overall() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overall.clone()
}

// Report builds the report rows for types at the given confidence level
func (a *Accumulator) Report(types []model.EntityType, confidence float64) *Report {
	report := &Report{
		Confidence: confidence,
		Rows:       make([]ReportRow, 0, len(types)),
		errors:     map[model.EntityType]Metrics{},
	}
	for _, t := range types {
		m := a.Metrics(t)
		report.Rows = append(report.Rows, newReportRow(string(t), m, confidence))
		report.errors[t] = m
	}
	report.Micro = newReportRow(MicroAverage, a.Overall(), confidence)
	report.Macro = macroAverage(report.Rows)
	return report
}

func (a *Accumulator) metricsFor(entityType model.EntityType) *Metrics {
	m, ok := a.byType[entityType]
	if !ok {
		m = &Metrics{}
		a.byType[entityType] = m
	}
	return m
}

// Evaluate compares predicted with gold annotations folder by folder over the
// union of both folder sets, restricted to each of types.
func Evaluate(gold []model.Annotation, pred []model.Annotation, types []model.EntityType) *Accumulator {
	goldSet := NewAnnotationSet(gold...)
	predSet := NewAnnotationSet(pred...)

	folders := goldSet.Folders()
	for _, folder := range predSet.Folders() {
		if !slices.Contains(folders, folder) {
			folders = append(folders, folder)
		}
	}
	slices.Sort(folders)

	acc := NewAccumulator()
	for _, folder := range folders {
		goldFolder := goldSet.OfFolder(folder)
		predFolder := predSet.OfFolder(folder)
		for _, t := range types {
			acc.Add(t, goldFolder.OfType(t), predFolder.OfType(t))
		}
	}
	return acc
}
