package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedCandidate is returned for extractor output that can't become a mention
var ErrMalformedCandidate = errors.New("malformed candidate")

// Candidate is a raw detection returned by the extraction model for one chunk.
// Start and End are byte offsets into the chunk and are informational only.
type Candidate struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Start int     `json:"start,omitempty"`
	End   int     `json:"end,omitempty"`
}

// Mention is a validated entity detection within a document
type Mention struct {
	ID          uuid.UUID   `json:"id"`
	Text        string      `json:"text"`
	Type        EntityType  `json:"entity_type"`
	Score       float64     `json:"score"`
	Folder      string      `json:"folder"`
	Document    string      `json:"document"`
	Chunk       int         `json:"chunk"`
	Occurrences int         `json:"occurrences"`
	Name        *PersonName `json:"name,omitempty"`
	Enrichment  Enrichment  `json:"enrichment"`
}

// PersonName is the informational decomposition of a PERSON mention
type PersonName struct {
	Civility  string `json:"civility,omitempty"`
	Title     string `json:"title,omitempty"`
	FullTitle string `json:"full_title,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Enrichment holds context fields found around a mention
type Enrichment struct {
	Organization string `json:"organization,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Role         string `json:"role,omitempty"`
}

// IsEmpty reports whether no enrichment field is set
func (e Enrichment) IsEmpty() bool {
	return e == Enrichment{}
}

// Backfill fills empty fields from other. Non-empty fields are never overwritten.
func (e *Enrichment) Backfill(other Enrichment) {
	if e.Organization == "" {
		e.Organization = other.Organization
	}
	if e.City == "" {
		e.City = other.City
	}
	if e.Country == "" {
		e.Country = other.Country
	}
	if e.Role == "" {
		e.Role = other.Role
	}
}

// NewMention validates a candidate and turns it into a mention of doc.
func NewMention(c Candidate, doc *Document, chunk int) (*Mention, error) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrMalformedCandidate)
	}
	entityType, ok := ParseEntityType(c.Label)
	if !ok {
		return nil, fmt.Errorf("%w: unknown label %q", ErrMalformedCandidate, c.Label)
	}
	if math.IsNaN(c.Score) || c.Score < 0 || c.Score > 1 {
		return nil, fmt.Errorf("%w: score %v out of range", ErrMalformedCandidate, c.Score)
	}

	m := &Mention{
		ID:          uuid.New(),
		Text:        text,
		Type:        entityType,
		Score:       c.Score,
		Chunk:       chunk,
		Occurrences: 1,
	}
	if doc != nil {
		m.Folder = doc.Folder
		m.Document = doc.Name
	}
	return m, nil
}

// Count returns the number of raw detections merged into the mention
func (m *Mention) Count() int {
	if m.Occurrences < 1 {
		return 1
	}
	return m.Occurrences
}

// Annotation converts the mention to its evaluation form.
// The document name goes through NormalizeDocumentName so that in-memory
// results and exported tables score against the gold standard alike.
func (m *Mention) Annotation() Annotation {
	return Annotation{
		Folder:     m.Folder,
		Document:   NormalizeDocumentName(m.Document),
		EntityType: m.Type,
		EntityText: m.Text,
	}
}
