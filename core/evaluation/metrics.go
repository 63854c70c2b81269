package evaluation

import (
	"github.com/siherrmann/nerval/model"
)

// Metrics counts true positives, false positives and false negatives
// and keeps the erroneous annotations for the report.
type Metrics struct {
	TP             int                `json:"tp"`
	FP             int                `json:"fp"`
	FN             int                `json:"fn"`
	FalsePositives []model.Annotation `json:"false_positives"`
	FalseNegatives []model.Annotation `json:"false_negatives"`
}

// Update adds the comparison of one gold and one predicted set
func (m *Metrics) Update(gold *AnnotationSet, pred *AnnotationSet) {
	tp := gold.Intersect(pred)
	fp := pred.Difference(gold)
	fn := gold.Difference(pred)

	m.TP += tp.Len()
	m.FP += fp.Len()
	m.FN += fn.Len()
	m.FalsePositives = append(m.FalsePositives, fp.Items()...)
	m.FalseNegatives = append(m.FalseNegatives, fn.Items()...)
}

// Merge adds the counts and error lists of other
func (m *Metrics) Merge(other Metrics) {
	m.TP += other.TP
	m.FP += other.FP
	m.FN += other.FN
	m.FalsePositives = append(m.FalsePositives, other.FalsePositives...)
	m.FalseNegatives = append(m.FalseNegatives, other.FalseNegatives...)
}

// Precision is TP / (TP + FP), 0 without predictions
func (m Metrics) Precision() float64 {
	if m.TP+m.FP == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FP)
}

// Recall is TP / (TP + FN), 0 without gold annotations
func (m Metrics) Recall() float64 {
	if m.TP+m.FN == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FN)
}

// F1 is the harmonic mean of precision and recall, 0 if both are 0
func (m Metrics) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func (m Metrics) clone() Metrics {
	c := m
	c.FalsePositives = append([]model.Annotation{}, m.FalsePositives...)
	c.FalseNegatives = append([]model.Annotation{}, m.FalseNegatives...)
	return c
}
