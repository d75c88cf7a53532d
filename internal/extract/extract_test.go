package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFilePlainText(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "Variables store values.\nLoops repeat work.")

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Variables store values.\nLoops repeat work.", text)
}

func TestFromFileMarkdown(t *testing.T) {
	path := writeTempFile(t, "week1.md", "# Week 1\n\nIntroduction to programming.")

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Introduction to programming.")
}

func TestFromFileUnsupported(t *testing.T) {
	path := writeTempFile(t, "image.png", "not really an image")

	_, err := FromFile(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFromFileDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lecture.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	part, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Functions group reusable logic.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Recursion calls itself.</w:t></w:r></w:p>
  </w:body>
</w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Functions group reusable logic.")
	assert.Contains(t, text, "Recursion calls itself.")
}

func TestWordCount(t *testing.T) {
	assert.Zero(t, WordCount(""))
	assert.Zero(t, WordCount("   \n\t"))
	assert.Equal(t, 4, WordCount("one two  three\nfour"))
}

func TestTruncateSmartShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "short text", TruncateSmart("short text", 100))
}

func TestTruncateSmartSentenceBoundary(t *testing.T) {
	text := strings.Repeat("a", 90) + ". " + strings.Repeat("b", 50)
	out := TruncateSmart(text, 100)
	assert.Equal(t, strings.Repeat("a", 90)+".", out)
}

func TestTruncateSmartHardCut(t *testing.T) {
	text := strings.Repeat("a", 200)
	out := TruncateSmart(text, 100)
	assert.Len(t, out, 100)
}

func TestTruncateSmartZeroBudget(t *testing.T) {
	assert.Equal(t, "text", TruncateSmart("text", 0))
}
