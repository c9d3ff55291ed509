// Package filetype verifies incoming uploads by content, not by
// extension or declared Content-Type.
package filetype

import (
	"github.com/gabriel-vasile/mimetype"
)

// Info describes a detected payload type.
type Info struct {
	MIME      string
	Extension string
}

// Detect sniffs the payload's magic bytes.
func Detect(data []byte) Info {
	m := mimetype.Detect(data)
	return Info{MIME: m.String(), Extension: m.Extension()}
}

// IsPDF reports whether the payload is a PDF document.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is("application/pdf")
}
