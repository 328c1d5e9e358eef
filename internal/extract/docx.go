package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

const (
	docxDefaultPart  = "word/document.xml"
	docxContentTypes = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// <w:t>text</w:t>, with or without attributes such as xml:space.
	docxTextRun = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	docxParaEnd = regexp.MustCompile(`</w:p>`)
	// An Override element for the main document part; attribute order varies between writers.
	docxOverride = regexp.MustCompile(`<Override\s[^>]*>`)
	docxPartName = regexp.MustCompile(`PartName="([^"]+)"`)
)

// extractDOCX returns the text runs of a .docx document, one line per paragraph.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	part := docxDefaultPart
	if ct, err := readZipFile(zr, docxContentTypes); err == nil {
		if p := mainDocumentPart(string(ct)); p != "" {
			part = p
		}
	}
	body, err := readZipFile(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}

	var paragraphs []string
	for _, para := range docxParaEnd.Split(string(body), -1) {
		var line strings.Builder
		for _, m := range docxTextRun.FindAllStringSubmatch(para, -1) {
			line.WriteString(m[1])
		}
		if text := strings.TrimSpace(html.UnescapeString(line.String())); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func mainDocumentPart(contentTypes string) string {
	for _, el := range docxOverride.FindAllString(contentTypes, -1) {
		if !strings.Contains(el, `ContentType="`+docxMainType+`"`) {
			continue
		}
		if m := docxPartName.FindStringSubmatch(el); m != nil {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
