package classifier

import (
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/elements"
)

// previewBudget caps the narrative preview carried into the oracle
// prompt for each page.
const previewBudget = 200

// PageSynopsis is a compact per-page summary used only as classifier
// input. Pages with no elements get no synopsis; they are never
// fabricated.
type PageSynopsis struct {
	PageNumber int      `json:"page_number"`
	Titles     []string `json:"titles,omitempty"`
	Headers    []string `json:"headers,omitempty"`
	Preview    string   `json:"preview,omitempty"`
}

// BuildSynopses derives one synopsis per populated page, in ascending
// page order: all title texts, all header texts, and the first
// narrative excerpt truncated to the preview budget.
func BuildSynopses(idx elements.PageIndex) []PageSynopsis {
	out := make([]PageSynopsis, 0, len(idx.Pages))
	for _, page := range idx.PageNumbers() {
		syn := PageSynopsis{PageNumber: page}
		for _, el := range idx.Pages[page] {
			switch el.Type {
			case elements.TypeTitle:
				syn.Titles = append(syn.Titles, el.Text)
			case elements.TypeHeader:
				syn.Headers = append(syn.Headers, el.Text)
			case elements.TypeNarrativeText:
				if syn.Preview == "" && el.Text != "" {
					syn.Preview = truncate(el.Text, previewBudget)
				}
			}
		}
		out = append(out, syn)
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
