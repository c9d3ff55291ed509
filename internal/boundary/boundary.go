// Package boundary defines the unit of bundle decomposition: a
// contiguous page range classified as one logical document, and the
// structural validation rules a boundary list must satisfy before it
// is safe to split on.
package boundary

import (
	"encoding/json"
	"sort"
	"strings"
)

// DocumentType classifies a detected logical document. The enum is
// closed; unrecognized values from the classifier decode to TypeOther.
type DocumentType string

const (
	TypePoliceReport  DocumentType = "police-report"
	TypeEmail         DocumentType = "email"
	TypeSMS           DocumentType = "sms"
	TypePhoto         DocumentType = "photo"
	TypeMemo          DocumentType = "memo"
	TypeCourtFiling   DocumentType = "court-filing"
	TypeMedicalRecord DocumentType = "medical-record"
	TypeOther         DocumentType = "other"
)

var knownTypes = map[DocumentType]struct{}{
	TypePoliceReport:  {},
	TypeEmail:         {},
	TypeSMS:           {},
	TypePhoto:         {},
	TypeMemo:          {},
	TypeCourtFiling:   {},
	TypeMedicalRecord: {},
	TypeOther:         {},
}

// ParseDocumentType maps a free-form string onto the closed enum,
// falling back to TypeOther for anything unrecognized.
func ParseDocumentType(s string) DocumentType {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownTypes[t]; ok {
		return t
	}
	return TypeOther
}

// UnmarshalJSON decodes a document type with the TypeOther fallback so
// a loosely-typed classifier response never fails decoding on the type.
func (t *DocumentType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseDocumentType(s)
	return nil
}

// Boundary describes one logical document's extent within a bundle.
// Pages are 1-based and inclusive.
type Boundary struct {
	StartPage    int          `json:"start_page"`
	EndPage      int          `json:"end_page"`
	DocumentType DocumentType `json:"document_type"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Confidence   float64      `json:"confidence"`
	CaseNumber   string       `json:"case_number,omitempty"`
	IncidentDate string       `json:"incident_date,omitempty"` // ISO calendar date
	Subjects     []string     `json:"subjects,omitempty"`
}

// PageCount returns the number of pages the boundary spans.
func (b Boundary) PageCount() int { return b.EndPage - b.StartPage + 1 }

// SortByStartPage orders boundaries ascending by start page (stable).
func SortByStartPage(bounds []Boundary) {
	sort.SliceStable(bounds, func(i, j int) bool {
		return bounds[i].StartPage < bounds[j].StartPage
	})
}
