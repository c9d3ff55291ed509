package boundary

import (
	"fmt"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
)

// ValidationReport is the full result of validating a boundary list.
// All checks run; nothing short-circuits, so the report names every
// structural problem found.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate checks a candidate boundary list against the declared total
// page count: per-boundary range sanity, then gap/overlap coverage over
// the list sorted by start page. Gaps and overlaps are reported, never
// repaired — auto-correcting page ranges could silently merge unrelated
// documents, so any ambiguity must surface to the caller.
func Validate(bounds []Boundary, totalPages int) ValidationReport {
	report := ValidationReport{Valid: true}

	fail := func(kind, format string, args ...any) {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf(format, args...))
		metrics.IncValidationFailure(kind)
	}

	if len(bounds) == 0 {
		fail("range", "no boundaries cover pages 1-%d", totalPages)
		return report
	}

	for _, b := range bounds {
		if b.StartPage < 1 {
			fail("range", "boundary %d-%d: start page must be >= 1", b.StartPage, b.EndPage)
		}
		if b.EndPage > totalPages {
			fail("range", "boundary %d-%d: end page exceeds total pages (%d)", b.StartPage, b.EndPage, totalPages)
		}
		if b.StartPage > b.EndPage {
			fail("range", "boundary %d-%d: start page after end page", b.StartPage, b.EndPage)
		}
	}

	sorted := make([]Boundary, len(bounds))
	copy(sorted, bounds)
	SortByStartPage(sorted)

	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		switch {
		case cur.EndPage+1 < next.StartPage:
			fail("gap", "pages %d-%d unassigned between boundary %d-%d and boundary %d-%d",
				cur.EndPage+1, next.StartPage-1, cur.StartPage, cur.EndPage, next.StartPage, next.EndPage)
		case cur.EndPage >= next.StartPage:
			fail("overlap", "boundary %d-%d overlaps boundary %d-%d",
				cur.StartPage, cur.EndPage, next.StartPage, next.EndPage)
		}
	}

	if len(sorted) > 0 {
		if sorted[0].StartPage > 1 {
			fail("gap", "pages 1-%d unassigned before first boundary %d-%d",
				sorted[0].StartPage-1, sorted[0].StartPage, sorted[0].EndPage)
		}
		last := sorted[len(sorted)-1]
		if last.EndPage < totalPages {
			fail("gap", "pages %d-%d unassigned after last boundary %d-%d",
				last.EndPage+1, totalPages, last.StartPage, last.EndPage)
		}
	}

	return report
}
