package evaluation

import (
	"slices"

	"github.com/siherrmann/nerval/model"
)

// AnnotationSet is a set of annotations compared by their normalized key.
// It remembers the first added annotation for each key and keeps insertion order.
type AnnotationSet struct {
	items map[model.AnnotationKey]model.Annotation
	order []model.AnnotationKey
}

// NewAnnotationSet creates a set containing annotations
func NewAnnotationSet(annotations ...model.Annotation) *AnnotationSet {
	s := &AnnotationSet{
		items: map[model.AnnotationKey]model.Annotation{},
		order: []model.AnnotationKey{},
	}
	for _, a := range annotations {
		s.Add(a)
	}
	return s
}

// Add inserts a and reports whether it was not yet contained
func (s *AnnotationSet) Add(a model.Annotation) bool {
	key := a.Key()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = a
	s.order = append(s.order, key)
	return true
}

// Len returns the number of distinct annotations
func (s *AnnotationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Contains reports whether an annotation with the same key is in the set
func (s *AnnotationSet) Contains(a model.Annotation) bool {
	if s == nil {
		return false
	}
	_, ok := s.items[a.Key()]
	return ok
}

// Intersect returns the annotations of s that are also in other
func (s *AnnotationSet) Intersect(other *AnnotationSet) *AnnotationSet {
	return s.filter(func(a model.Annotation) bool { return other.Contains(a) })
}

// Difference returns the annotations of s that are not in other
func (s *AnnotationSet) Difference(other *AnnotationSet) *AnnotationSet {
	return s.filter(func(a model.Annotation) bool { return !other.Contains(a) })
}

// OfType returns the annotations of the given entity type
func (s *AnnotationSet) OfType(entityType model.EntityType) *AnnotationSet {
	return s.filter(func(a model.Annotation) bool { return a.EntityType == entityType })
}

// OfFolder returns the annotations of the given folder
func (s *AnnotationSet) OfFolder(folder string) *AnnotationSet {
	return s.filter(func(a model.Annotation) bool { return a.Folder == folder })
}

// Folders returns the sorted distinct folders of the set
func (s *AnnotationSet) Folders() []string {
	folders := []string{}
	for _, a := range s.Items() {
		if !slices.Contains(folders, a.Folder) {
			folders = append(folders, a.Folder)
		}
	}
	slices.Sort(folders)
	return folders
}

// Items returns the annotations in insertion order
func (s *AnnotationSet) Items() []model.Annotation {
	if s == nil {
		return []model.Annotation{}
	}
	items := make([]model.Annotation, 0, len(s.order))
	for _, key := range s.order {
		items = append(items, s.items[key])
	}
	return items
}

func (s *AnnotationSet) filter(keep func(model.Annotation) bool) *AnnotationSet {
	out := NewAnnotationSet()
	for _, a := range s.Items() {
		if keep(a) {
			out.Add(a)
		}
	}
	return out
}
