package model

import (
	"strings"
)

// Annotation is a (folder, document, type, text) tuple, gold or predicted.
// Two annotations are equal when their keys are equal.
type Annotation struct {
	Folder     string     `json:"folder"`
	Document   string     `json:"document"`
	EntityType EntityType `json:"entity_type"`
	EntityText string     `json:"entity_text"`
}

// AnnotationKey is the comparable identity of an annotation
type AnnotationKey struct {
	Folder     string
	Document   string
	EntityType EntityType
	EntityText string
}

// Key returns the identity with the entity text trimmed and lowercased
func (a Annotation) Key() AnnotationKey {
	return AnnotationKey{
		Folder:     a.Folder,
		Document:   a.Document,
		EntityType: a.EntityType,
		EntityText: strings.ToLower(strings.TrimSpace(a.EntityText)),
	}
}

// String returns the pipe separated record form
func (a Annotation) String() string {
	return a.Folder + "|" + a.Document + "|" + string(a.EntityType) + "|" + a.EntityText
}

// NormalizeDocumentName maps exported names like "R1048-13C_doc03" to "doc03".
// Other names are returned unchanged.
func NormalizeDocumentName(name string) string {
	name = strings.TrimSpace(name)
	_, suffix, found := strings.Cut(name, "_doc")
	if !found {
		return name
	}
	suffix, _, _ = strings.Cut(suffix, "_doc")
	return "doc" + suffix
}
