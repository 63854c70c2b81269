package model

// Chunk is a sentence aligned window of a document.
// SentenceStart and SentenceEnd index the document's sentences, End is exclusive.
// The first OverlapSentences sentences repeat the end of the previous chunk.
type Chunk struct {
	Index            int      `json:"index"`
	Path             string   `json:"path"`
	Content          string   `json:"content"`
	SentenceStart    int      `json:"sentence_start"`
	SentenceEnd      int      `json:"sentence_end"`
	OverlapSentences int      `json:"overlap_sentences"`
	Words            int      `json:"words"`
	Metadata         Metadata `json:"metadata,omitempty"`
}
