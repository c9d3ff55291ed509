package boundary

import (
	"strings"
	"testing"
)

func TestValidateOK(t *testing.T) {
	bounds := []Boundary{
		{StartPage: 1, EndPage: 5, DocumentType: TypePoliceReport, Title: "Report"},
		{StartPage: 6, EndPage: 10, DocumentType: TypeEmail, Title: "Thread"},
	}
	report := Validate(bounds, 10)
	if !report.Valid {
		t.Fatalf("report invalid: %v", report.Errors)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
}

func TestValidateGap(t *testing.T) {
	bounds := []Boundary{
		{StartPage: 1, EndPage: 5},
		{StartPage: 7, EndPage: 10},
	}
	report := Validate(bounds, 10)
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", report.Errors)
	}
	if !strings.Contains(report.Errors[0], "6-6") {
		t.Errorf("gap error should name page 6: %q", report.Errors[0])
	}
}

func TestValidateOverlap(t *testing.T) {
	bounds := []Boundary{
		{StartPage: 1, EndPage: 6},
		{StartPage: 5, EndPage: 10},
	}
	report := Validate(bounds, 10)
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", report.Errors)
	}
	e := report.Errors[0]
	if !strings.Contains(e, "1-6") || !strings.Contains(e, "5-10") {
		t.Errorf("overlap error should name both ranges: %q", e)
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name  string
		b     Boundary
		total int
		want  string
	}{
		{"start below one", Boundary{StartPage: 0, EndPage: 3}, 3, "start page must be >= 1"},
		{"end beyond total", Boundary{StartPage: 1, EndPage: 12}, 10, "exceeds total pages"},
		{"inverted", Boundary{StartPage: 5, EndPage: 2}, 10, "start page after end page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate([]Boundary{tt.b}, tt.total)
			if report.Valid {
				t.Fatal("expected invalid report")
			}
			found := false
			for _, e := range report.Errors {
				if strings.Contains(e, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", report.Errors, tt.want)
			}
		})
	}
}

func TestValidateAllChecksRun(t *testing.T) {
	// A single list exhibiting a range error, a gap, and an overlap must
	// report all of them, not just the first.
	bounds := []Boundary{
		{StartPage: 0, EndPage: 2},
		{StartPage: 2, EndPage: 4},
		{StartPage: 7, EndPage: 10},
	}
	report := Validate(bounds, 10)
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if len(report.Errors) < 3 {
		t.Errorf("errors = %v, want range + overlap + gap all reported", report.Errors)
	}
}

func TestValidateEmpty(t *testing.T) {
	report := Validate(nil, 10)
	if report.Valid {
		t.Fatal("expected invalid report for empty boundary list")
	}
}

func TestValidateUncoveredEdges(t *testing.T) {
	report := Validate([]Boundary{{StartPage: 3, EndPage: 8}}, 10)
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %v, want leading and trailing gaps", report.Errors)
	}
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		in   string
		want DocumentType
	}{
		{"email", TypeEmail},
		{"Police-Report", TypePoliceReport},
		{"  sms ", TypeSMS},
		{"invoice", TypeOther},
		{"", TypeOther},
	}
	for _, tt := range tests {
		if got := ParseDocumentType(tt.in); got != tt.want {
			t.Errorf("ParseDocumentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortByStartPageStable(t *testing.T) {
	bounds := []Boundary{
		{StartPage: 6, EndPage: 10, Title: "b"},
		{StartPage: 1, EndPage: 5, Title: "a"},
		{StartPage: 6, EndPage: 8, Title: "c"},
	}
	SortByStartPage(bounds)
	if bounds[0].Title != "a" {
		t.Errorf("first boundary = %q, want a", bounds[0].Title)
	}
	// equal start pages keep their relative order
	if bounds[1].Title != "b" || bounds[2].Title != "c" {
		t.Errorf("stable order broken: %q, %q", bounds[1].Title, bounds[2].Title)
	}
}
