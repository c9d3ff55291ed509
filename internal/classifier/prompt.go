package classifier

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a document boundary detector for scanned legal and investigative PDF bundles. A bundle is a single PDF holding several unrelated documents concatenated together (police reports, emails, SMS logs, photos, memos, court filings, medical records).

Given a page-by-page synopsis, decide where one document ends and the next begins. Look for discontinuities in topic, document type, case identifier, date, or formatting.

Rules:
- Prefer under-splitting: keep ambiguous material together rather than splitting it apart.
- A multi-page email thread, a multi-page report, or an email with its attachments is ONE document unless a clear case or identity change occurs mid-range.
- Every page must belong to exactly one document: no gaps, no overlaps.

Respond with ONLY a JSON array, no prose and no markdown fences. Each entry:
{
  "start_page": <int, 1-based inclusive>,
  "end_page": <int, 1-based inclusive>,
  "document_type": one of "police-report","email","sms","photo","memo","court-filing","medical-record","other",
  "title": "<short human-readable title>",
  "description": "<one-sentence summary>",
  "confidence": <float 0..1>,
  "case_number": "<optional>",
  "incident_date": "<optional ISO date>",
  "subjects": ["<optional person names>"]
}`

// buildUserPrompt renders the ordered synopsis list plus optional
// source context into the oracle's user message.
func buildUserPrompt(synopses []PageSynopsis, totalPages int, sourceDescription string) string {
	var sb strings.Builder
	if sourceDescription != "" {
		fmt.Fprintf(&sb, "Source: %s\n\n", sourceDescription)
	}
	fmt.Fprintf(&sb, "The bundle has %d pages. Page synopses follow.\n\n", totalPages)
	for _, syn := range synopses {
		fmt.Fprintf(&sb, "--- Page %d ---\n", syn.PageNumber)
		if len(syn.Titles) > 0 {
			fmt.Fprintf(&sb, "Titles: %s\n", strings.Join(syn.Titles, " | "))
		}
		if len(syn.Headers) > 0 {
			fmt.Fprintf(&sb, "Headers: %s\n", strings.Join(syn.Headers, " | "))
		}
		if syn.Preview != "" {
			fmt.Fprintf(&sb, "Preview: %s\n", syn.Preview)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Return the boundary JSON array covering pages 1 through ")
	fmt.Fprintf(&sb, "%d.", totalPages)
	return sb.String()
}
