// Package extract produces page elements from PDF bytes using MuPDF
// (go-fitz). It is the upstream collaborator of the decomposition
// engine: every element carries a best-effort 1-based page number and
// a coarse type derived from line heuristics.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/elements"
)

// headerRegex matches label-style lines common in legal and
// correspondence documents (FROM:, CASE NO:, DATE: ...).
var headerRegex = regexp.MustCompile(`^(FROM|TO|CC|SUBJECT|RE|DATE|CASE\s*(NO|NUMBER)|INCIDENT\s*(NO|NUMBER)|REPORT\s*(NO|NUMBER))\s*[:#]`)

// Elements extracts typed page elements from a PDF held in memory.
// Pages whose text extraction fails are logged and skipped; the caller
// sees them as pages without elements.
func Elements(src []byte) ([]elements.PageElement, error) {
	doc, err := fitz.NewFromMemory(src)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var els []elements.PageElement
	for i := 0; i < doc.NumPage(); i++ {
		text, terr := doc.Text(i)
		if terr != nil {
			log.Warn().Err(terr).Int("page", i+1).Msg("page text extraction failed")
			continue
		}
		els = append(els, classifyPage(text, i+1)...)
	}
	return els, nil
}

// classifyPage turns raw page text into typed elements. Short
// all-caps lines near the top become titles, label-style lines become
// headers, runs of ordinary lines merge into narrative blocks.
func classifyPage(text string, page int) []elements.PageElement {
	var els []elements.PageElement
	var narrative []string

	flush := func() {
		if len(narrative) == 0 {
			return
		}
		els = append(els, elements.PageElement{
			Type:       elements.TypeNarrativeText,
			Text:       strings.Join(narrative, " "),
			PageNumber: page,
		})
		narrative = narrative[:0]
	}

	seen := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if isNoise(trimmed, page) {
			continue
		}
		seen++

		switch {
		case headerRegex.MatchString(strings.ToUpper(trimmed)):
			flush()
			els = append(els, elements.PageElement{Type: elements.TypeHeader, Text: trimmed, PageNumber: page})
		case seen <= 4 && isTitleLine(trimmed):
			flush()
			els = append(els, elements.PageElement{Type: elements.TypeTitle, Text: trimmed, PageNumber: page})
		case strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") || listItemRegex.MatchString(trimmed):
			flush()
			els = append(els, elements.PageElement{Type: elements.TypeListItem, Text: trimmed, PageNumber: page})
		default:
			narrative = append(narrative, trimmed)
		}
	}
	flush()
	return els
}

var listItemRegex = regexp.MustCompile(`^\(?\d{1,2}[.)]\s`)

// isTitleLine flags short, mostly-uppercase lines as titles.
func isTitleLine(line string) bool {
	if len(line) < 3 || len(line) > 80 {
		return false
	}
	letters, upper := 0, 0
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters == 0 {
		return false
	}
	return upper*10 >= letters*7 // >=70% uppercase
}

// isNoise drops bare page numbers, standalone numbers, and lines made
// only of punctuation.
func isNoise(line string, page int) bool {
	if _, err := strconv.Atoi(line); err == nil {
		return true
	}
	for _, pattern := range []string{
		fmt.Sprintf("Page %d", page),
		fmt.Sprintf("- %d -", page),
		fmt.Sprintf("[%d]", page),
	} {
		if strings.EqualFold(line, pattern) {
			return true
		}
	}
	for _, r := range line {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}
