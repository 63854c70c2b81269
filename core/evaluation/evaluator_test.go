package evaluation

import (
	"sync"
	"testing"

	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	gold := []model.Annotation{
		ann("F1", "doc01", model.EntityTypePerson, "Marie Curie"),
		ann("F1", "doc01", model.EntityTypeLocation, "Genève"),
		ann("F2", "doc01", model.EntityTypeOrganization, "Société des Nations"),
	}
	pred := []model.Annotation{
		ann("F1", "doc01", model.EntityTypePerson, "marie curie"),
		ann("F1", "doc01", model.EntityTypeLocation, "Paris"),
		ann("F3", "doc01", model.EntityTypePerson, "Einstein"),
	}

	acc := Evaluate(gold, pred, model.DefaultEntityTypes)

	t.Run("Per type metrics", func(t *testing.T) {
		person := acc.Metrics(model.EntityTypePerson)
		assert.Equal(t, 1, person.TP)
		assert.Equal(t, 1, person.FP)
		assert.Equal(t, 0, person.FN)

		org := acc.Metrics(model.EntityTypeOrganization)
		assert.Equal(t, 0, org.TP)
		assert.Equal(t, 1, org.FN)

		loc := acc.Metrics(model.EntityTypeLocation)
		assert.Equal(t, 1, loc.FP)
		assert.Equal(t, 1, loc.FN)
	})

	t.Run("Overall is the sum of the types", func(t *testing.T) {
		overall := acc.Overall()
		assert.Equal(t, 1, overall.TP)
		assert.Equal(t, 2, overall.FP)
		assert.Equal(t, 2, overall.FN)
	})

	t.Run("Types outside the list are ignored", func(t *testing.T) {
		only := Evaluate(gold, pred, []model.EntityType{model.EntityTypePerson})
		assert.Equal(t, 1, only.Overall().TP)
		assert.Equal(t, 1, only.Overall().FP)
		assert.Equal(t, 0, only.Overall().FN)
	})
}

func TestAccumulator(t *testing.T) {
	t.Run("Concurrent adds", func(t *testing.T) {
		acc := NewAccumulator()
		gold := NewAnnotationSet(ann("F1", "doc01", model.EntityTypePerson, "Curie"))
		pred := NewAnnotationSet(ann("F1", "doc01", model.EntityTypePerson, "Curie"))

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acc.Add(model.EntityTypePerson, gold, pred)
			}()
		}
		wg.Wait()

		assert.Equal(t, 20, acc.Metrics(model.EntityTypePerson).TP)
		assert.Equal(t, 20, acc.Overall().TP)
	})

	t.Run("Merge", func(t *testing.T) {
		a := NewAccumulator()
		b := NewAccumulator()
		a.Add(model.EntityTypePerson, NewAnnotationSet(ann("F1", "doc01", model.EntityTypePerson, "A")), NewAnnotationSet())
		b.Add(model.EntityTypeLocation, NewAnnotationSet(), NewAnnotationSet(ann("F1", "doc01", model.EntityTypeLocation, "B")))

		a.Merge(b)
		a.Merge(nil)

		assert.Equal(t, 1, a.Metrics(model.EntityTypePerson).FN)
		assert.Equal(t, 1, a.Metrics(model.EntityTypeLocation).FP)
		assert.Equal(t, 1, a.Overall().FN)
		assert.Equal(t, 1, a.Overall().FP)
	})

	t.Run("Metrics are copies", func(t *testing.T) {
		acc := NewAccumulator()
		acc.Add(model.EntityTypePerson, NewAnnotationSet(ann("F1", "doc01", model.EntityTypePerson, "A")), NewAnnotationSet())

		m := acc.Metrics(model.EntityTypePerson)
		require.Len(t, m.FalseNegatives, 1)
		m.FalseNegatives[0].EntityText = "changed"

		assert.Equal(t, "A", acc.Metrics(model.EntityTypePerson).FalseNegatives[0].EntityText)
	})
}
