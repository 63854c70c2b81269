package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentFromFile(t *testing.T) {
	t.Run("Folder and name are derived from the path", func(t *testing.T) {
		folder := filepath.Join(t.TempDir(), "R1048-13C")
		require.NoError(t, os.MkdirAll(folder, 0750))
		filePath := filepath.Join(folder, "doc01.md")
		require.NoError(t, os.WriteFile(filePath, []byte("Monsieur Curie est à Paris."), 0600))

		doc, err := NewDocumentFromFile(filePath, Metadata{"ocr": "v1"})

		require.NoError(t, err)
		assert.Equal(t, "R1048-13C", doc.Folder)
		assert.Equal(t, "doc01", doc.Name)
		assert.Equal(t, filePath, doc.Source)
		assert.Equal(t, "Monsieur Curie est à Paris.", doc.Content)
		assert.Equal(t, "v1", doc.Metadata.String("ocr"))
		assert.Equal(t, "R1048-13C/doc01", doc.Key())
	})

	t.Run("Returns error for non-existent file", func(t *testing.T) {
		doc, err := NewDocumentFromFile("/non/existent/doc.md", nil)

		require.Error(t, err)
		assert.Nil(t, doc)
	})

	t.Run("File without extension keeps its name", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "README")
		require.NoError(t, os.WriteFile(filePath, []byte(""), 0600))

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, "README", doc.Name)
		assert.Equal(t, "", doc.Content)
	})

	t.Run("Dot file keeps its full name", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), ".hidden")
		require.NoError(t, os.WriteFile(filePath, []byte("x"), 0600))

		doc, err := NewDocumentFromFile(filePath, nil)

		require.NoError(t, err)
		assert.Equal(t, ".hidden", doc.Name)
	})
}
