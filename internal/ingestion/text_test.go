package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   \n  \n  ", want: ""},
		{name: "headings lose indentation", input: "  # Title\n## Subtitle\nContent here", want: "# Title\n## Subtitle\nContent here"},
		{name: "bullets kept", input: "- Item 1\n-  Item 2\n* Item 3", want: "- Item 1\n- Item 2\n* Item 3"},
		{name: "inner spaces collapsed", input: "Line    with \t multiple    spaces   ", want: "Line with multiple spaces"},
		{name: "blank line runs collapsed", input: "Line 1\n\n\n\n\nLine 2", want: "Line 1\n\nLine 2"},
		{name: "line endings normalized", input: "Line 1\r\nLine 2\rLine 3\nLine 4", want: "Line 1\nLine 2\nLine 3\nLine 4"},
		{name: "indentation kept", input: "Skills\n    Go\n  Python", want: "Skills\n    Go\n  Python"},
		{name: "unicode untouched", input: "Test with émojis 🚀 and spéciàl chàracters", want: "Test with émojis 🚀 and spéciàl chàracters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}

func TestFromFile_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Jane Doe\r\n\r\n\r\n\r\nBackend   engineer"), 0o644))

	doc, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "# Jane Doe\n\nBackend engineer", doc.Text)
	assert.Equal(t, path, doc.Source)
	assert.Len(t, doc.Hash, 64)
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestFromFile_NotFound(t *testing.T) {
	doc, err := FromFile("/nonexistent/file.txt")
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.txt")
	require.NoError(t, os.WriteFile(path, []byte(" \n\t\n"), 0o644))

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestFromReader_HashTracksContent(t *testing.T) {
	a1, err := FromReader(strings.NewReader("Content 1"), "a")
	require.NoError(t, err)
	a2, err := FromReader(strings.NewReader("Content 1"), "a")
	require.NoError(t, err)
	b, err := FromReader(strings.NewReader("Content 2"), "b")
	require.NoError(t, err)

	assert.Equal(t, a1.Hash, a2.Hash)
	assert.NotEqual(t, a1.Hash, b.Hash)
}
