package evaluation

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStratumOf(t *testing.T) {
	assert.Equal(t, StratumRare, StratumOf(0))
	assert.Equal(t, StratumRare, StratumOf(1))
	assert.Equal(t, StratumMedium, StratumOf(2))
	assert.Equal(t, StratumMedium, StratumOf(5))
	assert.Equal(t, StratumFrequent, StratumOf(6))
}

func TestAggregateMentions(t *testing.T) {
	mentions := []*model.Mention{
		{Text: "Marie Curie", Type: model.EntityTypePerson, Folder: "F1", Document: "doc01", Occurrences: 2},
		{Text: "marie  curie", Type: model.EntityTypePerson, Folder: "F1", Document: "doc02", Occurrences: 1},
		{Text: "Marie Curie", Type: model.EntityTypePerson, Folder: "F1", Document: "doc01"},
		{Text: "Marie Curie", Type: model.EntityTypeOrganization, Folder: "F1", Document: "doc01"},
		nil,
	}

	entities := AggregateMentions(mentions)

	require.Len(t, entities, 2)
	assert.Equal(t, "Marie Curie", entities[0].Text)
	assert.Equal(t, 4, entities[0].Occurrences)
	require.Len(t, entities[0].Documents, 2)
	assert.Equal(t, "F1/doc01", entities[0].Documents[0].Key())
	assert.Equal(t, "F1/doc02", entities[0].Documents[1].Key())
	assert.Equal(t, model.EntityTypeOrganization, entities[1].Type)
}

func TestStratifiedSample(t *testing.T) {
	entities := []AuditEntity{}
	for i := range 10 {
		entities = append(entities, AuditEntity{Text: fmt.Sprintf("frequent %d", i), Occurrences: 7})
	}
	for i := range 3 {
		entities = append(entities, AuditEntity{Text: fmt.Sprintf("medium %d", i), Occurrences: 3})
	}
	entities = append(entities, AuditEntity{Text: "rare", Occurrences: 1})

	sample := StratifiedSample(entities, 2, 42)

	require.Len(t, sample, 5)
	assert.Equal(t, StratumFrequent, StratumOf(sample[0].Occurrences))
	assert.Equal(t, StratumFrequent, StratumOf(sample[1].Occurrences))
	assert.Equal(t, StratumMedium, StratumOf(sample[2].Occurrences))
	assert.Equal(t, StratumMedium, StratumOf(sample[3].Occurrences))
	assert.Equal(t, "rare", sample[4].Text)
	assert.Equal(t, sample, StratifiedSample(entities, 2, 42), "same seed gives the same sample")
	assert.Empty(t, StratifiedSample(nil, 2, 42))
}

func TestValidateType(t *testing.T) {
	assert.False(t, ValidateType("Université de Genève", model.EntityTypePerson).Passed)
	assert.True(t, ValidateType("Marie Curie", model.EntityTypePerson).Passed)
	assert.False(t, ValidateType("Monsieur Motta", model.EntityTypeOrganization).Passed)
	assert.True(t, ValidateType("Commission de coopération", model.EntityTypeOrganization).Passed)
	assert.True(t, ValidateType("Madame Curie", model.EntityTypeLocation).Passed)
}

func TestValidateNoOverExtraction(t *testing.T) {
	assert.True(t, ValidateNoOverExtraction("Nicolas Politis").Passed)
	assert.True(t, ValidateNoOverExtraction("Société des Nations").Passed)
	assert.False(t, ValidateNoOverExtraction("la Sorbonne").Passed)
	assert.False(t, ValidateNoOverExtraction("Le Professeur Einstein").Passed)
	assert.False(t, ValidateNoOverExtraction("L'Institut").Passed)
	assert.False(t, ValidateNoOverExtraction("Parents").Passed)
}

func TestValidateBoundaries(t *testing.T) {
	assert.True(t, ValidateBoundaries("Curie", []string{"madame marie curie enseigne."}).Passed)
	assert.False(t, ValidateBoundaries("Société des Nations", []string{"la societe des nations siege."}).Passed)
	assert.True(t, ValidateBoundaries("Curie", []string{"curie enseigne."}).Passed)
	assert.True(t, ValidateBoundaries("Curie", nil).Passed)
}

func TestFindContexts(t *testing.T) {
	text := "Marie Curie enseigne. Rien. MARIE CURIE parle! Curie encore? Marie Curie."
	contexts := FindContexts("Marie Curie", text, 2)
	assert.Equal(t, []string{"marie curie enseigne.", "marie curie parle!"}, contexts)
	assert.Empty(t, FindContexts(" ", text, 5))
}

func TestAuditorAudit(t *testing.T) {
	source := pipeline.MapDocumentSource{
		"F1/doc01": "# Rapport\n\nLe professeur Marie Curie enseigne à Paris. La Société des Nations siège à Genève.",
	}
	doc := &model.Document{Folder: "F1", Name: "doc01"}
	missing := &model.Document{Folder: "F1", Name: "missing"}
	entities := []AuditEntity{
		{Text: "Marie Curie", Type: model.EntityTypePerson, Occurrences: 1, Documents: []*model.Document{doc}},
		{Text: "Société des Nations", Type: model.EntityTypeOrganization, Occurrences: 1, Documents: []*model.Document{doc}},
		{Text: "Madame Dupont", Type: model.EntityTypeOrganization, Occurrences: 3, Documents: []*model.Document{doc}},
		{Text: "la Sorbonne", Type: model.EntityTypeLocation, Occurrences: 1, Documents: []*model.Document{missing}},
	}

	auditor, err := NewAuditor(source, DefaultAuditConfig(), nil)
	require.NoError(t, err)

	report, err := auditor.Audit(context.Background(), entities, model.DefaultEntityTypes)
	require.NoError(t, err)

	t.Run("Checks per entity", func(t *testing.T) {
		require.Len(t, report.Entities, 4)
		byText := map[string]EntityAudit{}
		for _, e := range report.Entities {
			byText[e.Entity.Text] = e
		}

		assert.True(t, byText["Marie Curie"].AllPassed)

		org := byText["Société des Nations"]
		assert.True(t, org.Results[CheckPresence].Passed)
		assert.False(t, org.Results[CheckBoundaries].Passed)

		dupont := byText["Madame Dupont"]
		assert.Equal(t, StratumMedium, dupont.Stratum)
		assert.False(t, dupont.Results[CheckPresence].Passed)
		assert.False(t, dupont.Results[CheckType].Passed)
		assert.True(t, dupont.Results[CheckBoundaries].Passed)

		sorbonne := byText["la Sorbonne"]
		assert.False(t, sorbonne.Results[CheckPresence].Passed)
		assert.True(t, sorbonne.Results[CheckBoundaries].Passed)
		assert.False(t, sorbonne.Results[CheckNoOverExtraction].Passed)
	})

	t.Run("Summaries", func(t *testing.T) {
		overall := report.Overall
		assert.Equal(t, 4, overall.N)
		assert.Equal(t, 2, overall.Checks[CheckPresence].Count)
		assert.Equal(t, 3, overall.Checks[CheckType].Count)
		assert.Equal(t, 3, overall.Checks[CheckBoundaries].Count)
		assert.Equal(t, 3, overall.Checks[CheckNoOverExtraction].Count)
		assert.Equal(t, 1, overall.AllPassed.Count)
		assert.InDelta(t, 0.65625, overall.GlobalScore, 1e-9)
		assert.InDelta(t, ConfidenceInterval(0.65625, 4, 0.95), overall.GlobalMargin, 1e-9)
		assert.Equal(t, "FAIR", Grade(overall.GlobalScore))

		assert.Equal(t, 2, report.ByType[model.EntityTypeOrganization].N)
		assert.Equal(t, 1, report.ByType[model.EntityTypePerson].AllPassed.Count)
	})

	t.Run("Text report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.WriteText(&buf, time.Date(2025, 11, 16, 0, 0, 0, 0, time.UTC)))

		text := buf.String()
		assert.Contains(t, text, "NER QUALITY AUDIT")
		assert.Contains(t, text, "Sample:     4 entities")
		assert.Contains(t, text, "global_score          65.6%")
		assert.Contains(t, text, "la Sorbonne (LOCATION)")
		assert.Contains(t, text, "END OF AUDIT")
	})

	t.Run("Canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := auditor.Audit(ctx, entities, model.DefaultEntityTypes)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewAuditor(t *testing.T) {
	_, err := NewAuditor(nil, DefaultAuditConfig(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	config := DefaultAuditConfig()
	config.SampleSize = 0
	_, err = NewAuditor(pipeline.MapDocumentSource{}, config, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	config = DefaultAuditConfig()
	config.Confidence = 1
	_, err = NewAuditor(pipeline.MapDocumentSource{}, config, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
