package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a source document of a folder (a batch of related documents)
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Folder    string    `json:"folder"`
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	Content   string    `json:"content,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key identifies the document within a run
func (d *Document) Key() string {
	return d.Folder + "/" + d.Name
}

// NewDocumentFromFile reads a file and creates a Document with the file content.
// The name defaults to the filename without extension and the folder to the
// name of the parent directory.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if name == "" {
		name = filename
	}

	return &Document{
		Folder:   filepath.Base(filepath.Dir(filePath)),
		Name:     name,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}
