package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// SplitSentences splits text after '.', '!' or '?' followed by whitespace.
// Sentences are trimmed and empty ones are dropped.
func SplitSentences(text string) []string {
	sentences := []string{}
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// SentenceWindowChunker creates a chunker producing sentence aligned windows of
// at most maxLength words. Every chunk after the first starts with the longest
// suffix of the previous chunk's sentences that fits into overlap words and
// leaves room for the next sentence. A single sentence longer than maxLength
// becomes its own chunk.
func SentenceWindowChunker(maxLength int, overlap int) (ChunkFunc, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: max chunk length must be positive, got %d", model.ErrInvalidConfig, maxLength)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", model.ErrInvalidConfig, overlap)
	}
	if overlap >= maxLength {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than max chunk length (%d)", model.ErrInvalidConfig, overlap, maxLength)
	}

	return func(text string, basePath string) ([]model.Chunk, error) {
		sentences := SplitSentences(text)
		chunks := []model.Chunk{}
		if len(sentences) == 0 {
			return chunks, nil
		}

		words := make([]int, len(sentences))
		for i, s := range sentences {
			words[i] = helper.CountWords(s)
		}

		emit := func(start, end, overlapped, length int) {
			index := len(chunks)
			chunks = append(chunks, model.Chunk{
				Index:            index,
				Path:             fmt.Sprintf("%s.chunk%d", basePath, index),
				Content:          strings.Join(sentences[start:end], " "),
				SentenceStart:    start,
				SentenceEnd:      end,
				OverlapSentences: overlapped,
				Words:            length,
				Metadata: model.Metadata{
					"chunking_method": "sentence_window",
					"num_sentences":   end - start,
				},
			})
		}

		start, overlapped, length := 0, 0, 0
		for i := range sentences {
			if length+words[i] > maxLength && i > start {
				emit(start, i, overlapped, length)

				budget := min(overlap, maxLength-words[i])
				seedStart, seedLength := i, 0
				for j := i - 1; j >= start; j-- {
					if seedLength+words[j] > budget {
						break
					}
					seedLength += words[j]
					seedStart = j
				}
				start, overlapped, length = seedStart, i-seedStart, seedLength
			}
			length += words[i]
		}
		emit(start, len(sentences), overlapped, length)

		return chunks, nil
	}, nil
}

// ParagraphChunker creates a chunker that splits by blank lines
func ParagraphChunker() ChunkFunc {
	return func(text string, basePath string) ([]model.Chunk, error) {
		chunks := []model.Chunk{}
		sentence := 0

		for _, para := range strings.Split(text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}

			index := len(chunks)
			count := len(SplitSentences(para))
			chunks = append(chunks, model.Chunk{
				Index:         index,
				Path:          fmt.Sprintf("%s.para%d", basePath, index),
				Content:       para,
				SentenceStart: sentence,
				SentenceEnd:   sentence + count,
				Words:         helper.CountWords(para),
				Metadata: model.Metadata{
					"chunking_method": "paragraph",
				},
			})
			sentence += count
		}

		return chunks, nil
	}
}

var (
	markdownTable   = regexp.MustCompile(`(?is)<table>.*?</table>`)
	markdownHeader  = regexp.MustCompile(`(?m)^#+\s+`)
	markdownRule    = regexp.MustCompile(`(?m)^---+$`)
	repeatedNewline = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips OCR markdown artifacts: html tables, header markers,
// horizontal rules and runs of blank lines.
func CleanMarkdown(text string) string {
	text = markdownTable.ReplaceAllString(text, "")
	text = markdownHeader.ReplaceAllString(text, "")
	text = markdownRule.ReplaceAllString(text, "")
	text = repeatedNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
