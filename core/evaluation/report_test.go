package evaluation

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	gold := []model.Annotation{
		ann("F1", "doc02", model.EntityTypePerson, "Bergson"),
		ann("F1", "doc01", model.EntityTypePerson, "Curie"),
		ann("F1", "doc01", model.EntityTypePerson, "Einstein"),
		ann("F1", "doc01", model.EntityTypeLocation, "Genève"),
	}
	pred := []model.Annotation{
		ann("F1", "doc01", model.EntityTypePerson, "Curie"),
		ann("F1", "doc01", model.EntityTypePerson, "Einstein"),
		ann("F1", "doc01", model.EntityTypePerson, "Lorentz"),
		ann("F1", "doc01", model.EntityTypeLocation, "Genève"),
	}
	report := Evaluate(gold, pred, model.DefaultEntityTypes).Report(model.DefaultEntityTypes, 0.95)

	t.Run("Rows, micro and macro averages", func(t *testing.T) {
		require.Len(t, report.Rows, 3)

		person, ok := report.Row(model.EntityTypePerson)
		require.True(t, ok)
		assert.InDelta(t, 0.667, person.F1, 0.001)
		assert.Equal(t, 2, person.TP)
		assert.Greater(t, person.PrecisionMargin, 0.0)

		assert.Equal(t, MicroAverage, report.Micro.Type)
		assert.Equal(t, 3, report.Micro.TP)
		assert.Equal(t, 1, report.Micro.FP)
		assert.Equal(t, 1, report.Micro.FN)
		assert.InDelta(t, 0.75, report.Micro.F1, 0.001)

		assert.Equal(t, MacroAverage, report.Macro.Type)
		assert.InDelta(t, (0.667+0+1)/3, report.Macro.F1, 0.001)
	})

	t.Run("Errors are sorted", func(t *testing.T) {
		fps, fns := report.Errors(model.EntityTypePerson)
		assert.Equal(t, []model.Annotation{ann("F1", "doc01", model.EntityTypePerson, "Lorentz")}, fps)
		assert.Equal(t, []model.Annotation{ann("F1", "doc02", model.EntityTypePerson, "Bergson")}, fns)

		fps, fns = report.Errors(model.EntityTypeOrganization)
		assert.Empty(t, fps)
		assert.Empty(t, fns)
	})

	t.Run("Text layout", func(t *testing.T) {
		var buf bytes.Buffer
		err := report.WriteText(&buf, ReportHeader{
			GoldStandard: "gold.txt",
			Predictions:  "out",
			Generated:    time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		text := buf.String()
		assert.True(t, strings.HasPrefix(text, strings.Repeat("=", 80)+"\nNER EVALUATION REPORT\n"))
		assert.Contains(t, text, "Gold Standard: gold.txt\n")
		assert.Contains(t, text, "Generated:     2025-11-16 10:00:00\n")
		assert.Contains(t, text, "Type             Precision     Recall         F1     TP     FP     FN\n")
		assert.Contains(t, text, "PERSON               0.667      0.667      0.667      2      1      1\n")
		assert.Contains(t, text, "MICRO-AVG            0.750      0.750      0.750      3      1      1\n")
		assert.Contains(t, text, "ERRORS FOR TYPE: PERSON\n")
		assert.NotContains(t, text, "ERRORS FOR TYPE: ORGANIZATION")
		assert.NotContains(t, text, "ERRORS FOR TYPE: LOCATION")
		assert.Contains(t, text, "False Positives (1):\n")
		assert.Contains(t, text, "  F1 | doc01 | Lorentz\n")
		assert.Contains(t, text, "  F1 | doc02 | Bergson\n")
		assert.True(t, strings.HasSuffix(text, "END OF REPORT\n"+strings.Repeat("=", 80)+"\n"))
	})
}
