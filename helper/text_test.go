package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Run("Accents, case and whitespace are normalized", func(t *testing.T) {
		assert.Equal(t, "geneve universite", NormalizeText("  Genève   Université "))
		assert.Equal(t, "etats-unis", NormalizeText("États-Unis"))
	})

	t.Run("Empty text stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeText("   "))
	})
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "Societe des Nations", StripAccents("Société des Nations"))
	assert.Equal(t, "Norvege", StripAccents("Norvège"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "marie curie", FoldText("  Marie Curie\t"))
	assert.Equal(t, FoldText("GENÈVE"), FoldText("genève"))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("one  two\nthree"))
}
