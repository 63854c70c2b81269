package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/siherrmann/nerval/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0600))
	}
	return root
}

func TestFileDocumentSource(t *testing.T) {
	ctx := context.Background()
	root := writeCorpus(t, map[string]string{
		"F2/doc01.md":    "Texte deux.",
		"F1/doc02.md":    "Texte un b.",
		"F1/doc01.md":    "Texte un a.",
		"F1/notes.txt":   "ignored",
		".git/doc.md":    "ignored",
		"F3/broken.md":   string([]byte{0xff, 0xfe}),
		"F1/sub/doc9.md": "nested folders are not walked",
	})
	source := NewFileDocumentSource(root)

	t.Run("Discover all folders", func(t *testing.T) {
		docs, err := source.Discover()
		require.NoError(t, err)

		keys := []string{}
		for _, doc := range docs {
			keys = append(keys, doc.Key())
		}
		assert.Equal(t, []string{"F1/doc01", "F1/doc02", "F2/doc01", "F3/broken"}, keys)
	})

	t.Run("Discover selected folders", func(t *testing.T) {
		docs, err := source.Discover("F2")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, filepath.Join(root, "F2", "doc01.md"), docs[0].Source)
	})

	t.Run("Discover unknown folder fails", func(t *testing.T) {
		_, err := source.Discover("F9")
		assert.Error(t, err)
	})

	t.Run("Load by folder and name", func(t *testing.T) {
		text, err := source.LoadDocument(ctx, &model.Document{Folder: "F1", Name: "doc02"})
		require.NoError(t, err)
		assert.Equal(t, "Texte un b.", text)
	})

	t.Run("Missing document", func(t *testing.T) {
		_, err := source.LoadDocument(ctx, &model.Document{Folder: "F1", Name: "doc99"})
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Invalid UTF-8 is an error", func(t *testing.T) {
		_, err := source.LoadDocument(ctx, &model.Document{Folder: "F3", Name: "broken"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UTF-8")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := source.LoadDocument(cancelled, &model.Document{Folder: "F1", Name: "doc01"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMapDocumentSource(t *testing.T) {
	ctx := context.Background()
	source := MapDocumentSource{"F1/doc01": "Stored text."}

	t.Run("Stored text", func(t *testing.T) {
		text, err := source.LoadDocument(ctx, &model.Document{Folder: "F1", Name: "doc01"})
		require.NoError(t, err)
		assert.Equal(t, "Stored text.", text)
	})

	t.Run("Inline content", func(t *testing.T) {
		text, err := source.LoadDocument(ctx, &model.Document{Folder: "F1", Name: "doc02", Content: "Inline."})
		require.NoError(t, err)
		assert.Equal(t, "Inline.", text)
	})

	t.Run("Unknown document", func(t *testing.T) {
		_, err := source.LoadDocument(ctx, &model.Document{Folder: "F1", Name: "doc03"})
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}
