package pipeline

import (
	"strings"
	"testing"

	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
)

func TestContextEnricherContext(t *testing.T) {
	enricher := NewContextEnricher(10)

	t.Run("Window around the first case-insensitive occurrence", func(t *testing.T) {
		text := "0123456789abcdefghij CURIE klmnopqrstuvwxyz"

		context := enricher.Context("Curie", text)

		assert.Equal(t, "bcdefghij CURIE klmnopqrs", context)
	})

	t.Run("Window is counted in characters", func(t *testing.T) {
		text := strings.Repeat("é", 20) + "Curie" + strings.Repeat("è", 20)

		context := enricher.Context("curie", text)

		assert.Equal(t, strings.Repeat("é", 10)+"Curie"+strings.Repeat("è", 10), context)
	})

	t.Run("Window is clamped at the text boundaries", func(t *testing.T) {
		assert.Equal(t, "Curie est là", enricher.Context("Curie", "Curie est là"))
	})

	t.Run("Missing mention gives no context", func(t *testing.T) {
		assert.Empty(t, enricher.Context("Einstein", "Curie est là"))
		assert.Empty(t, enricher.Context("  ", "Curie est là"))
	})
}

func TestContextEnricherEnrich(t *testing.T) {
	enricher := NewContextEnricher(150)

	t.Run("All fields are found", func(t *testing.T) {
		text := "Lors de la séance à Genève, M. Painlevé, président de la Commission internationale, représentant la France, a pris la parole."

		enrichment := enricher.Enrich("Painlevé", text)

		assert.Equal(t, model.Enrichment{
			Organization: "Commission internationale",
			City:         "Genève",
			Country:      "France",
			Role:         "Président de la commission internationale",
		}, enrichment)
	})

	t.Run("Lists are searched in order", func(t *testing.T) {
		text := "Einstein, membre de la Société astronomique, voyage de Berlin à Paris."

		enrichment := enricher.Enrich("Einstein", text)

		assert.Equal(t, "Paris", enrichment.City, "Paris comes before Berlin in the city list")
		assert.Equal(t, "Société astronomique", enrichment.Organization)
		assert.Equal(t, "Membre de la société astronomique", enrichment.Role)
		assert.Empty(t, enrichment.Country)
	})

	t.Run("Hints outside the window are ignored", func(t *testing.T) {
		text := "Paris. " + strings.Repeat("x ", 200) + "Curie parle."

		enrichment := enricher.Enrich("Curie", text)

		assert.True(t, enrichment.IsEmpty())
	})

	t.Run("Mention not in text", func(t *testing.T) {
		assert.True(t, enricher.Enrich("Einstein", "Paris, France").IsEmpty())
	})
}
