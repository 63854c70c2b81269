package model

import (
	"strings"
)

// EntityType is the category of a named entity
type EntityType string

const (
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypeLocation     EntityType = "LOCATION"
)

// DefaultEntityTypes are the types extracted and evaluated by default, in report order
var DefaultEntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeLocation,
}

// EntityTypeAliases maps lowercase model and gold-standard labels to entity types.
// Add entries before starting a run to support further types.
var EntityTypeAliases = map[string]EntityType{
	"per":          EntityTypePerson,
	"person":       EntityTypePerson,
	"org":          EntityTypeOrganization,
	"organization": EntityTypeOrganization,
	"organisation": EntityTypeOrganization,
	"loc":          EntityTypeLocation,
	"location":     EntityTypeLocation,
	"gpe":          EntityTypeLocation,
}

// ParseEntityType resolves a label like "B-PER", "person" or "GPE" to its entity type.
// The second return value is false for unrecognized labels.
func ParseEntityType(label string) (EntityType, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) > 2 && (strings.HasPrefix(l, "b-") || strings.HasPrefix(l, "i-")) {
		l = l[2:]
	}
	if l == "" {
		return "", false
	}
	t, ok := EntityTypeAliases[l]
	return t, ok
}

// Label returns the lowercase label requested from the extraction model
func (t EntityType) Label() string {
	return strings.ToLower(string(t))
}

func (t EntityType) String() string {
	return string(t)
}
