package evaluation

import (
	"testing"

	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("Two hits, one false positive, one false negative", func(t *testing.T) {
		gold := NewAnnotationSet(
			ann("F1", "doc01", model.EntityTypePerson, "Curie"),
			ann("F1", "doc01", model.EntityTypePerson, "Einstein"),
			ann("F1", "doc01", model.EntityTypePerson, "Bergson"),
		)
		pred := NewAnnotationSet(
			ann("F1", "doc01", model.EntityTypePerson, "curie"),
			ann("F1", "doc01", model.EntityTypePerson, "Einstein "),
			ann("F1", "doc01", model.EntityTypePerson, "Lorentz"),
		)

		var m Metrics
		m.Update(gold, pred)

		assert.Equal(t, 2, m.TP)
		assert.Equal(t, 1, m.FP)
		assert.Equal(t, 1, m.FN)
		assert.InDelta(t, 0.667, m.Precision(), 0.001)
		assert.InDelta(t, 0.667, m.Recall(), 0.001)
		assert.InDelta(t, 0.667, m.F1(), 0.001)
		assert.Equal(t, "Lorentz", m.FalsePositives[0].EntityText)
		assert.Equal(t, "Bergson", m.FalseNegatives[0].EntityText)
	})

	t.Run("Empty sets give zero scores", func(t *testing.T) {
		var m Metrics
		m.Update(NewAnnotationSet(), NewAnnotationSet())

		assert.Equal(t, 0.0, m.Precision())
		assert.Equal(t, 0.0, m.Recall())
		assert.Equal(t, 0.0, m.F1())
	})

	t.Run("Only predictions", func(t *testing.T) {
		var m Metrics
		m.Update(NewAnnotationSet(), NewAnnotationSet(ann("F1", "doc01", model.EntityTypePerson, "Curie")))

		assert.Equal(t, 1, m.FP)
		assert.Equal(t, 0.0, m.Precision())
		assert.Equal(t, 0.0, m.Recall())
		assert.Equal(t, 0.0, m.F1())
	})

	t.Run("Merge adds counts and errors", func(t *testing.T) {
		a := Metrics{TP: 1, FP: 2, FN: 3, FalsePositives: []model.Annotation{ann("F1", "doc01", model.EntityTypePerson, "A")}}
		b := Metrics{TP: 4, FP: 5, FN: 6, FalseNegatives: []model.Annotation{ann("F1", "doc01", model.EntityTypePerson, "B")}}

		a.Merge(b)

		assert.Equal(t, 5, a.TP)
		assert.Equal(t, 7, a.FP)
		assert.Equal(t, 9, a.FN)
		assert.Len(t, a.FalsePositives, 1)
		assert.Len(t, a.FalseNegatives, 1)
	})
}
