package pipeline

import (
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// NormalizedKey identifies the entity a mention refers to within one document
type NormalizedKey struct {
	Type model.EntityType
	Text string
}

// Normalizer groups duplicate mentions of a document into one record per key.
// With PersonNameKeys, PERSON mentions are keyed by "last first" of their
// decomposed name instead of their normalized text.
type Normalizer struct {
	PersonNameKeys bool
}

// DedupStats counts what deduplication removed
type DedupStats struct {
	TitleOnly  int
	Duplicates int
}

// NewNormalizer creates a normalizer
func NewNormalizer(personNameKeys bool) *Normalizer {
	return &Normalizer{PersonNameKeys: personNameKeys}
}

// Key returns the normalized key of a mention
func (n *Normalizer) Key(m *model.Mention) NormalizedKey {
	if n.PersonNameKeys && m.Type == model.EntityTypePerson {
		name := m.Name
		if name == nil {
			parsed := ParsePersonName(m.Text)
			name = &parsed
		}
		if name.LastName != "" {
			return NormalizedKey{
				Type: m.Type,
				Text: helper.NormalizeText(name.LastName + " " + name.FirstName),
			}
		}
	}
	return NormalizedKey{Type: m.Type, Text: helper.NormalizeText(m.Text)}
}

type groupKey struct {
	Folder   string
	Document string
	Key      NormalizedKey
}

type mentionGroup struct {
	members []*model.Mention
	best    *model.Mention
}

// Deduplicate returns one mention per (folder, document, key) in order of first
// appearance. The representative is a copy of the highest scored member, the
// earliest member wins ties. Empty enrichment fields are backfilled from the
// other members in order and Occurrences is the sum over the group.
// Bare titles are dropped before grouping. The input mentions are not modified.
func (n *Normalizer) Deduplicate(mentions []*model.Mention) ([]*model.Mention, DedupStats) {
	stats := DedupStats{}
	groups := map[groupKey]*mentionGroup{}
	order := []groupKey{}

	for _, m := range mentions {
		if m == nil {
			continue
		}
		if IsTitleOnly(m.Text) {
			stats.TitleOnly++
			continue
		}

		key := groupKey{Folder: m.Folder, Document: m.Document, Key: n.Key(m)}
		group, ok := groups[key]
		if !ok {
			group = &mentionGroup{best: m}
			groups[key] = group
			order = append(order, key)
		} else {
			stats.Duplicates++
			if m.Score > group.best.Score {
				group.best = m
			}
		}
		group.members = append(group.members, m)
	}

	result := make([]*model.Mention, 0, len(order))
	for _, key := range order {
		group := groups[key]

		representative := *group.best
		if group.best.Name != nil {
			name := *group.best.Name
			representative.Name = &name
		}
		representative.Occurrences = 0
		for _, member := range group.members {
			representative.Enrichment.Backfill(member.Enrichment)
			representative.Occurrences += member.Count()
		}

		result = append(result, &representative)
	}

	return result, stats
}
