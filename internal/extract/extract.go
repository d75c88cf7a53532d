package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxTextLength caps extraction per file to keep prompts bounded.
const MaxTextLength = 50000

// ErrUnsupportedFormat is returned for file types we cannot extract text from.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// FromFile extracts plain text from a stored material by extension.
func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return fromPDF(path)
	case ".docx":
		return fromOOXML(path, "word/document.xml")
	case ".pptx":
		return fromOOXML(path, "ppt/slides/")
	case ".txt", ".md":
		return fromPlain(path)
	default:
		return "", ErrUnsupportedFormat
	}
}

func fromPlain(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open text file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(f, MaxTextLength))
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(raw), nil
}

func fromPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close() //nolint:errcheck

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(body, MaxTextLength)); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// fromOOXML scans the XML parts of a docx/pptx archive and collects the text
// runs (<w:t> / <a:t> elements). Both formats are zip archives of XML parts,
// so one scanner covers them.
func fromOOXML(path, partPrefix string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open document archive: %w", err)
	}
	defer archive.Close() //nolint:errcheck

	var sb strings.Builder
	for _, part := range archive.File {
		if !strings.HasPrefix(part.Name, partPrefix) || !strings.HasSuffix(part.Name, ".xml") {
			continue
		}
		if err := scanXMLPart(part, &sb); err != nil {
			return "", err
		}
		if sb.Len() >= MaxTextLength {
			break
		}
	}

	text := sb.String()
	if len(text) > MaxTextLength {
		text = text[:MaxTextLength]
	}
	return text, nil
}

func scanXMLPart(part *zip.File, sb *strings.Builder) error {
	rc, err := part.Open()
	if err != nil {
		return fmt.Errorf("open document part %s: %w", part.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse document part %s: %w", part.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
		if sb.Len() >= MaxTextLength {
			return nil
		}
	}
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TruncateSmart trims text to maxLen, preferring a sentence boundary when one
// falls within the last fifth of the budget.
func TruncateSmart(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	truncated := text[:maxLen]
	for _, sep := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if idx := strings.LastIndex(truncated, sep); idx > maxLen*4/5 {
			return text[:idx+1]
		}
	}
	return truncated
}
