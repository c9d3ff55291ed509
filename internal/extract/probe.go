package extract

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"time"

	fitz "github.com/gen2brain/go-fitz"
)

// DefaultThreshold is the minimum sampled character count for a PDF to
// count as text-extractable.
const DefaultThreshold = 300

// PageProbe captures the result of probing a single PDF page.
type PageProbe struct {
	PageIndex int    `json:"page_index"`
	CharCount int    `json:"char_count"`
	Err       string `json:"err,omitempty"`
}

// Diagnostics describes one extractability check.
type Diagnostics struct {
	TotalPages         int         `json:"total_pages"`
	SampledPages       []int       `json:"sampled_pages"`
	TotalCharsInSample int         `json:"total_chars_in_sample"`
	Threshold          int         `json:"threshold"`
	Probes             []PageProbe `json:"probes"`
	HasExtractableText bool        `json:"has_extractable_text"`
	DurationMs         int64       `json:"duration_ms"`
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// HasExtractableText samples up to five pages of a PDF and reports
// whether enough text comes back to treat the bundle as extractable.
// Scanned-image bundles fail this probe and should be routed to OCR
// before decomposition. If threshold <= 0, DefaultThreshold is used.
func HasExtractableText(src []byte, threshold int) (bool, *Diagnostics, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	start := time.Now()
	doc, err := fitz.NewFromMemory(src)
	if err != nil {
		return false, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	sampleIdx := sampleIndices(total)

	probes := make([]PageProbe, 0, len(sampleIdx))
	totalChars := 0
	for _, idx := range sampleIdx {
		probe := PageProbe{PageIndex: idx}
		text, terr := doc.Text(idx)
		if terr != nil {
			probe.Err = terr.Error()
			probes = append(probes, probe)
			continue
		}
		count := len([]rune(whitespaceRegex.ReplaceAllString(text, "")))
		probe.CharCount = count
		totalChars += count
		probes = append(probes, probe)
		if totalChars >= threshold {
			// Early exit for speed
			break
		}
	}

	diag := &Diagnostics{
		TotalPages:         total,
		SampledPages:       sampleIdx,
		TotalCharsInSample: totalChars,
		Threshold:          threshold,
		Probes:             probes,
		HasExtractableText: totalChars >= threshold,
		DurationMs:         time.Since(start).Milliseconds(),
	}
	return diag.HasExtractableText, diag, nil
}

// sampleIndices picks up to five 0-based pages: all pages for small
// documents, otherwise first, middle, last plus random distinct fills.
func sampleIndices(total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 5 {
		idx := make([]int, total)
		for i := 0; i < total; i++ {
			idx[i] = i
		}
		return idx
	}

	base := map[int]struct{}{0: {}, total / 2: {}, total - 1: {}}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for len(base) < 5 {
		cand := rnd.Intn(total)
		if _, ok := base[cand]; ok {
			continue
		}
		base[cand] = struct{}{}
	}

	out := make([]int, 0, 5)
	for i := range base {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
