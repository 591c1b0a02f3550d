package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestForAnalysisText(t *testing.T) {
	path := writeFile(t, "report.txt", "Revenue grew 40% in Q2.")

	content, err := ForAnalysis(path, "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 40% in Q2.", content)
}

func TestForAnalysisJSON(t *testing.T) {
	path := writeFile(t, "metrics.json", `{"arr": 1200000, "churn": 0.02}`)

	content, err := ForAnalysis(path, "metrics.json")
	require.NoError(t, err)
	assert.Contains(t, content, "JSON Dataset: metrics.json")
	assert.Contains(t, content, `"arr": 1200000`)
}

func TestForAnalysisMalformedJSON(t *testing.T) {
	path := writeFile(t, "bad.json", "{nope")
	_, err := ForAnalysis(path, "bad.json")

	var unreadable *UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, "Invalid JSON file format", unreadable.Detail)
}

func TestForAnalysisDocumentFormats(t *testing.T) {
	for _, name := range []string{"deck.pdf", "memo.docx", "old.doc"} {
		path := writeFile(t, name, "binary")
		_, err := ForAnalysis(path, name)

		var unsupported *UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported, name)
		assert.Contains(t, unsupported.Hint, "convert to .txt")
	}
}

func TestForAnalysisUnknownExtension(t *testing.T) {
	path := writeFile(t, "image.png", "\x89PNG")
	_, err := ForAnalysis(path, "image.png")

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "png", unsupported.Extension)
}

func TestForAnalysisBinaryContent(t *testing.T) {
	path := writeFile(t, "notes.txt", "\xff\xfe\x00binary")
	_, err := ForAnalysis(path, "notes.txt")

	var unreadable *UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Contains(t, unreadable.Detail, "binary or corrupted")
}

func TestSource(t *testing.T) {
	t.Run("known text type", func(t *testing.T) {
		path := writeFile(t, "data.csv", "a,b\n1,2\n")
		doc, err := Source(path, "data.csv")
		require.NoError(t, err)
		assert.Equal(t, "text_file", doc.FileType)
		assert.Equal(t, "a,b\n1,2\n", doc.Content)
		assert.Equal(t, int64(8), doc.Size)
	})

	t.Run("unknown extension read as text", func(t *testing.T) {
		path := writeFile(t, "notes.log", "log line")
		doc, err := Source(path, "notes.log")
		require.NoError(t, err)
		assert.Equal(t, "unknown_text", doc.FileType)
	})

	t.Run("non-utf8 content read byte for byte", func(t *testing.T) {
		path := writeFile(t, "legacy.txt", "caf\xe9 revenue")
		doc, err := Source(path, "legacy.txt")
		require.NoError(t, err)
		assert.Equal(t, "café revenue", doc.Content)
	})

	t.Run("document formats rejected", func(t *testing.T) {
		path := writeFile(t, "deck.pdf", "binary")
		_, err := Source(path, "deck.pdf")
		var unsupported *UnsupportedTypeError
		assert.ErrorAs(t, err, &unsupported)
	})
}
