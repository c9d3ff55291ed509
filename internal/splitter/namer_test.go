package splitter

import (
	"strings"
	"testing"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		b    boundary.Boundary
		want string
	}{
		{
			"punctuation collapsed",
			boundary.Boundary{DocumentType: boundary.TypeEmail, Title: "Maria & Cowie!!", StartPage: 19, EndPage: 27},
			"email_maria-cowie_p19-27.pdf",
		},
		{
			"plain title",
			boundary.Boundary{DocumentType: boundary.TypePoliceReport, Title: "Incident Report", StartPage: 1, EndPage: 5},
			"police-report_incident-report_p1-5.pdf",
		},
		{
			"empty title",
			boundary.Boundary{DocumentType: boundary.TypeOther, Title: "", StartPage: 3, EndPage: 3},
			"other_document_p3-3.pdf",
		},
		{
			"symbols only title",
			boundary.Boundary{DocumentType: boundary.TypeMemo, Title: "!!! ***", StartPage: 2, EndPage: 4},
			"memo_document_p2-4.pdf",
		},
		{
			"dots and underscores kept",
			boundary.Boundary{DocumentType: boundary.TypeCourtFiling, Title: "Case_22.4417 v2", StartPage: 8, EndPage: 12},
			"court-filing_case_22.4417-v2_p8-12.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.b); got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNameLengthCap(t *testing.T) {
	b := boundary.Boundary{
		DocumentType: boundary.TypeMedicalRecord,
		Title:        strings.Repeat("discharge summary ", 30),
		StartPage:    100,
		EndPage:      250,
	}
	got := Name(b)
	if len(got) > 200 {
		t.Errorf("name length = %d, want <= 200", len(got))
	}
	if !strings.HasPrefix(got, "medical-record_") {
		t.Errorf("prefix lost: %q", got)
	}
	if !strings.HasSuffix(got, "_p100-250.pdf") {
		t.Errorf("page suffix lost: %q", got)
	}
	if strings.Contains(got, "-_") {
		t.Errorf("truncation left a trailing dash: %q", got)
	}
}

func TestNameDeterministic(t *testing.T) {
	b := boundary.Boundary{DocumentType: boundary.TypeSMS, Title: "Texts with J. Doe", StartPage: 40, EndPage: 44}
	if Name(b) != Name(b) {
		t.Error("Name is not deterministic")
	}
}
