package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotationKey(t *testing.T) {
	t.Run("Text is compared trimmed and lowercased", func(t *testing.T) {
		a := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypePerson, EntityText: "Marie Curie"}
		b := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypePerson, EntityText: " marie CURIE "}

		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("Different documents are different annotations", func(t *testing.T) {
		a := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypePerson, EntityText: "Curie"}
		b := Annotation{Folder: "F1", Document: "doc02", EntityType: EntityTypePerson, EntityText: "Curie"}

		assert.NotEqual(t, a.Key(), b.Key())
	})

	t.Run("Different types are different annotations", func(t *testing.T) {
		a := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypeLocation, EntityText: "Paris"}
		b := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypeOrganization, EntityText: "Paris"}

		assert.NotEqual(t, a.Key(), b.Key())
	})

	t.Run("String is the pipe record", func(t *testing.T) {
		a := Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypeLocation, EntityText: "Paris"}
		assert.Equal(t, "F1|doc01|LOCATION|Paris", a.String())
	})
}

func TestNormalizeDocumentName(t *testing.T) {
	assert.Equal(t, "doc01", NormalizeDocumentName("R1048-13C-23516-23516_doc01"))
	assert.Equal(t, "doc12", NormalizeDocumentName(" F2_doc12 "))
	assert.Equal(t, "doc03", NormalizeDocumentName("doc03"))
	assert.Equal(t, "letter", NormalizeDocumentName("letter"))
}

func TestMentionAnnotation(t *testing.T) {
	m := &Mention{Folder: "F1", Document: "doc01", Type: EntityTypePerson, Text: "Curie"}
	assert.Equal(t, Annotation{Folder: "F1", Document: "doc01", EntityType: EntityTypePerson, EntityText: "Curie"}, m.Annotation())

	exported := &Mention{Folder: "R1048-13C", Document: "R1048-13C_doc01", Type: EntityTypePerson, Text: "Curie"}
	assert.Equal(t, "doc01", exported.Annotation().Document)
	assert.Equal(t, m.Annotation().Key(), (&Mention{Folder: "F1", Document: "F1_doc01", Type: EntityTypePerson, Text: "Curie"}).Annotation().Key())
}
