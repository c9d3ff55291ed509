package splitter

import (
	"fmt"
	"strings"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
)

// maxNameLen caps artifact names to satisfy common object-store key
// limits.
const maxNameLen = 200

// Name derives a deterministic, storage-safe file name for a boundary:
// {documentType}_{titleSlug}_p{start}-{end}.pdf. Page ranges are
// non-overlapping after validation, so the p{start}-{end} suffix keeps
// names unique within a run even when titles collide.
func Name(b boundary.Boundary) string {
	slug := slugify(b.Title)
	if slug == "" {
		slug = "document"
	}
	suffix := fmt.Sprintf("_p%d-%d.pdf", b.StartPage, b.EndPage)
	prefix := string(b.DocumentType) + "_"
	if over := len(prefix) + len(slug) + len(suffix) - maxNameLen; over > 0 && over < len(slug) {
		slug = strings.TrimRight(slug[:len(slug)-over], "-")
	}
	return prefix + slug + suffix
}

// slugify lowercases the input and collapses every run of characters
// outside [a-z0-9._-] into a single hyphen, trimming leading and
// trailing hyphens.
func slugify(s string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			sb.WriteRune(r)
			lastDash = false
		case r == '-':
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}
