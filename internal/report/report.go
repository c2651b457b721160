// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report reads PDF blood-test reports and extracts their text layer.
// Only embedded text is extracted; scanned (image-only) PDFs yield no text
// and are reported as an error.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Report holds the extracted text of one PDF report.
type Report struct {
	// Path is the source file as given by the caller.
	Path string

	// Pages holds the cleaned text of each non-empty page.
	Pages []string

	// PageCount is the total number of pages in the document, including
	// pages that yielded no text.
	PageCount int

	// Text is the cleaned text of all pages joined by newlines.
	Text string
}

// unitPattern re-spaces numeric values against their units so marker
// patterns can rely on a single separating space ("12.5mg/dL" -> "12.5 mg/dL").
var unitPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(mg/dL|g/dL|mmol/L|meq/L|µg/dL|ng/mL|mL/min|%)`)

// whitespacePattern collapses runs of spaces and tabs.
var whitespacePattern = regexp.MustCompile(`[ \t]+`)

// newlinePattern collapses runs of blank lines.
var newlinePattern = regexp.MustCompile(`\n{2,}`)

// Validate checks that path names a readable, non-empty PDF file.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("report file not found: %s", path)
		}
		return fmt.Errorf("checking report file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("report path is a directory: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("report file is not a PDF: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("report file is empty: %s", path)
	}
	return nil
}

// Read validates path and extracts the text layer of every page.
// Pages that fail to decode are skipped; if no page yields text the
// document is unusable and an error is returned.
func Read(path string) (*Report, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages: %s", path)
	}

	fonts := make(map[string]*pdf.Font)
	rep := &Report{Path: path, PageCount: numPages}

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			// A single damaged page should not sink the whole report.
			continue
		}

		cleaned := Clean(text)
		if cleaned != "" {
			rep.Pages = append(rep.Pages, cleaned)
		}
	}

	if len(rep.Pages) == 0 {
		return nil, fmt.Errorf("no text extracted from %s: the PDF may be image-based, password-protected, or corrupted", path)
	}

	rep.Text = strings.Join(rep.Pages, "\n")
	return rep, nil
}

// Clean normalizes extracted page text: runs of spaces collapse to one,
// blank-line runs collapse to a single newline, and numeric values are
// re-spaced against their units.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = newlinePattern.ReplaceAllString(text, "\n")
	text = unitPattern.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}

// Preview returns up to n bytes of the report text with newlines
// flattened, for terminal display and report headers. The cut backs up
// to a rune boundary.
func (r *Report) Preview(n int) string {
	text := strings.ReplaceAll(r.Text, "\n", " ")
	text = strings.TrimSpace(text)
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}
