package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// extractStrategy is one way of pulling text out of an uploaded document.
// Strategies are tried in order; the driver advances past a failed strategy
// and errors only when every one has failed.
type extractStrategy interface {
	name() string
	extract(data []byte) (string, error)
}

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// ExtractText extracts clean text from an uploaded document. The file
// extension picks the preferred strategy order; unknown extensions try every
// strategy before giving up.
func (s *FileExtractService) ExtractText(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Message: "uploaded file is empty"}
	}

	strategies := strategiesFor(strings.ToLower(filepath.Ext(filename)))

	var lastErr error
	for _, st := range strategies {
		raw, err := st.extract(data)
		if err != nil {
			log.Printf("extraction strategy %s failed for %s: %v", st.name(), filename, err)
			lastErr = err
			continue
		}
		if text := normalizeExtractedText(raw); text != "" {
			return text, nil
		}
		lastErr = fmt.Errorf("strategy %s produced no text", st.name())
	}

	return "", &ExtractionError{
		Message: fmt.Sprintf("could not extract text from %s: %v", filename, lastErr),
	}
}

func strategiesFor(ext string) []extractStrategy {
	switch ext {
	case ".pdf":
		return []extractStrategy{pdfStrategy{}, plainStrategy{}}
	case ".docx":
		return []extractStrategy{docxStrategy{}, plainStrategy{}}
	case ".txt", ".md", ".py", ".cpp", ".java":
		return []extractStrategy{plainStrategy{}}
	default:
		return []extractStrategy{pdfStrategy{}, docxStrategy{}, plainStrategy{}}
	}
}

// ── PDF ──

type pdfStrategy struct{}

func (pdfStrategy) name() string { return "pdf" }

func (pdfStrategy) extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

// ── DOCX ──

type docxStrategy struct{}

func (docxStrategy) name() string { return "docx" }

func (docxStrategy) extract(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			documentXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", err
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return "", fmt.Errorf("docx document.xml not found")
	}
	return stripDOCXML(documentXML), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}

// ── Plain text ──

type plainStrategy struct{}

func (plainStrategy) name() string { return "plain" }

func (plainStrategy) extract(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("binary content is not plain text")
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	// Latin-1 fallback for legacy encodings
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	var buf strings.Builder

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
