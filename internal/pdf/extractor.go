// Package pdfutil inspects rendered PDF reports.
package pdfutil

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

func open(data []byte) (*pdf.Reader, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("new pdf reader: %w", err)
	}
	return doc, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	doc, err := open(data)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// ExtractText reads PDF bytes and returns plain text, one line break per page.
func ExtractText(data []byte) (string, error) {
	doc, err := open(data)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	total := doc.NumPage()
	for page := 1; page <= total; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
