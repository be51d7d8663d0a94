// Package docx extracts plain text from WordprocessingML documents.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/agrireview/agrireview/internal/domain"
)

// documentEntry is the main document part inside the OOXML container.
const documentEntry = "word/document.xml"

// Extractor converts an uploaded .docx into plain text for review.
type Extractor struct {
	logger *log.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the concatenated paragraph text of the document. Text runs
// are joined in document order, paragraph breaks become newlines, and all
// formatting markup is dropped. The input buffer is never written to.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	if err := checkExtension(filename); err != nil {
		return "", err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.KindExtraction,
			fmt.Sprintf("%s is not a valid .docx container", filepath.Base(filename)), err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == documentEntry {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", domain.NewError(domain.KindExtraction,
			fmt.Sprintf("%s has no %s entry", filepath.Base(filename), documentEntry))
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", domain.WrapError(domain.KindExtraction, "opening document body", err)
	}
	defer rc.Close()

	text, err := extractText(rc)
	if err != nil {
		return "", domain.WrapError(domain.KindExtraction, "malformed document XML", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewError(domain.KindExtraction,
			fmt.Sprintf("%s contains no extractable text", filepath.Base(filename)))
	}

	return text, nil
}

// checkExtension rejects unsupported formats before any binary parsing.
func checkExtension(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return nil
	case ".doc":
		return domain.NewError(domain.KindExtraction,
			"legacy .doc files are not supported; please convert to .docx")
	default:
		return domain.NewError(domain.KindExtraction,
			fmt.Sprintf("unsupported file type %q: expected .docx", filepath.Ext(filename)))
	}
}

// extractText walks the WordprocessingML token stream, collecting w:t runs
// and translating structural elements (w:p, w:br, w:cr, w:tab) into plain
// text whitespace.
func extractText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inRun := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
