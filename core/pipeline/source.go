package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

// ErrDocumentNotFound is returned by sources for unknown documents
var ErrDocumentNotFound = errors.New("document not found")

// DocumentSource maps a document to its UTF-8 text
type DocumentSource interface {
	LoadDocument(ctx context.Context, doc *model.Document) (string, error)
}

// FileDocumentSource reads documents laid out as <root>/<folder>/<name><extension>
type FileDocumentSource struct {
	Root      string
	Extension string
}

// NewFileDocumentSource creates a source for markdown files below root
func NewFileDocumentSource(root string) *FileDocumentSource {
	return &FileDocumentSource{Root: root, Extension: ".md"}
}

// Path returns the file of a document. An explicit Source path wins.
func (s *FileDocumentSource) Path(doc *model.Document) string {
	if doc.Source != "" {
		return doc.Source
	}
	return filepath.Join(s.Root, doc.Folder, doc.Name+s.Extension)
}

// LoadDocument reads the document file
func (s *FileDocumentSource) LoadDocument(ctx context.Context, doc *model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := s.Path(doc)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return "", helper.NewError("read document", err)
	}
	if !utf8.Valid(content) {
		return "", helper.NewError("read document", fmt.Errorf("%s is not valid UTF-8", path))
	}
	return string(content), nil
}

// Discover lists the documents of the given folders, or of every folder below
// Root when none are given, sorted by folder and name.
func (s *FileDocumentSource) Discover(folders ...string) ([]*model.Document, error) {
	if len(folders) == 0 {
		entries, err := os.ReadDir(s.Root)
		if err != nil {
			return nil, helper.NewError("read root directory", err)
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				folders = append(folders, entry.Name())
			}
		}
	}
	folders = slices.Clone(folders)
	slices.Sort(folders)

	docs := []*model.Document{}
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(s.Root, folder))
		if err != nil {
			return nil, helper.NewError("read folder "+folder, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != s.Extension {
				continue
			}
			docs = append(docs, &model.Document{
				Folder: folder,
				Name:   strings.TrimSuffix(entry.Name(), s.Extension),
				Source: filepath.Join(s.Root, folder, entry.Name()),
			})
		}
	}
	return docs, nil
}

// MapDocumentSource is an in-memory source keyed by Document.Key()
type MapDocumentSource map[string]string

// LoadDocument returns the stored text. Documents with inline Content are
// served directly.
func (s MapDocumentSource) LoadDocument(ctx context.Context, doc *model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text, ok := s[doc.Key()]; ok {
		return text, nil
	}
	if doc.Content != "" {
		return doc.Content, nil
	}
	return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, doc.Key())
}
