package model

import (
	"github.com/google/uuid"
)

// Diagnostic stages
const (
	StageLoad      = "load"
	StageChunk     = "chunk"
	StageExtract   = "extract"
	StageCandidate = "candidate"
)

// Diagnostic records a contained failure of one document or chunk.
// Chunk is -1 for document level failures.
type Diagnostic struct {
	Stage    string `json:"stage"`
	Folder   string `json:"folder"`
	Document string `json:"document"`
	Chunk    int    `json:"chunk"`
	Message  string `json:"message"`
}

// DocumentStats counts what happened to one document
type DocumentStats struct {
	Chunks         int `json:"chunks"`
	ChunksFailed   int `json:"chunks_failed"`
	Candidates     int `json:"candidates"`
	Malformed      int `json:"malformed"`
	BelowThreshold int `json:"below_threshold"`
	TitleOnly      int `json:"title_only"`
	Duplicates     int `json:"duplicates"`
	Mentions       int `json:"mentions"`
}

// DocumentResult is the deduplicated mention set of one document
type DocumentResult struct {
	Document    *Document     `json:"document"`
	Mentions    []*Mention    `json:"mentions"`
	Stats       DocumentStats `json:"stats"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
	Err         error         `json:"-"`
}

// RunSummary aggregates the counts of a run
type RunSummary struct {
	Documents       int `json:"documents"`
	DocumentsFailed int `json:"documents_failed"`
	DocumentStats
}

// Add counts a document result. Failed documents only increment DocumentsFailed.
func (s *RunSummary) Add(result *DocumentResult) {
	if result == nil {
		return
	}
	if result.Err != nil {
		s.DocumentsFailed++
		return
	}
	s.Documents++
	s.Chunks += result.Stats.Chunks
	s.ChunksFailed += result.Stats.ChunksFailed
	s.Candidates += result.Stats.Candidates
	s.Malformed += result.Stats.Malformed
	s.BelowThreshold += result.Stats.BelowThreshold
	s.TitleOnly += result.Stats.TitleOnly
	s.Duplicates += result.Stats.Duplicates
	s.Mentions += result.Stats.Mentions
}

// RunResult holds the results of a run in input order
type RunResult struct {
	RunID     uuid.UUID         `json:"run_id"`
	Documents []*DocumentResult `json:"documents"`
	Summary   RunSummary        `json:"summary"`
}

// Mentions returns all mentions of the run in document order
func (r *RunResult) Mentions() []*Mention {
	mentions := []*Mention{}
	for _, doc := range r.Documents {
		mentions = append(mentions, doc.Mentions...)
	}
	return mentions
}

// Annotations returns the predicted annotations of the run
func (r *RunResult) Annotations() []Annotation {
	mentions := r.Mentions()
	annotations := make([]Annotation, 0, len(mentions))
	for _, m := range mentions {
		annotations = append(annotations, m.Annotation())
	}
	return annotations
}

// Diagnostics returns the diagnostics of all documents
func (r *RunResult) Diagnostics() []Diagnostic {
	diagnostics := []Diagnostic{}
	for _, doc := range r.Documents {
		diagnostics = append(diagnostics, doc.Diagnostics...)
	}
	return diagnostics
}
