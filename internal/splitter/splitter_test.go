package splitter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
)

// makePDF builds a minimal but structurally valid n-page PDF with one
// line of text per page, with a correct xref table.
func makePDF(n int) []byte {
	var buf bytes.Buffer
	var offsets []int
	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	var kids []string
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n))

	fontNum := 3 + 2*n
	for i := 0; i < n; i++ {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			3+i, 3+n+i, fontNum))
	}
	for i := 0; i < n; i++ {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (Page %d) Tj ET", i+1)
		addObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			3+n+i, len(stream), stream))
	}
	addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontNum))

	xrefPos := buf.Len()
	total := fontNum + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", total)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xrefPos)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(makePDF(5))
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 5 {
		t.Errorf("PageCount = %d, want 5", n)
	}
}

func TestPageCountUnreadable(t *testing.T) {
	if _, err := PageCount([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for unreadable source")
	}
}

func TestSplitRoundTrip(t *testing.T) {
	src := makePDF(10)
	bounds := []boundary.Boundary{
		{StartPage: 1, EndPage: 4, DocumentType: boundary.TypePoliceReport, Title: "Report"},
		{StartPage: 5, EndPage: 7, DocumentType: boundary.TypeEmail, Title: "Thread"},
		{StartPage: 8, EndPage: 10, DocumentType: boundary.TypeMemo, Title: "Memo"},
	}

	res, err := Split(src, bounds)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(res.Artifacts) != 3 {
		t.Fatalf("artifacts = %d, want 3", len(res.Artifacts))
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %v, want none", res.Skipped)
	}

	total := 0
	for i, art := range res.Artifacts {
		total += art.PageCount
		got, err := PageCount(art.Bytes)
		if err != nil {
			t.Fatalf("artifact %d unreadable: %v", i, err)
		}
		if got != art.PageCount {
			t.Errorf("artifact %d: actual pages %d, recorded %d", i, got, art.PageCount)
		}
		if art.SuggestedName != Name(art.Boundary) {
			t.Errorf("artifact %d: name %q does not match boundary", i, art.SuggestedName)
		}
	}
	// every source page lands in exactly one artifact
	if total != 10 {
		t.Errorf("total artifact pages = %d, want 10", total)
	}
}

func TestSplitClampsRanges(t *testing.T) {
	src := makePDF(6)
	bounds := []boundary.Boundary{
		{StartPage: 0, EndPage: 3, DocumentType: boundary.TypeOther, Title: "head"},
		{StartPage: 4, EndPage: 9, DocumentType: boundary.TypeOther, Title: "tail"},
	}

	res, err := Split(src, bounds)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(res.Artifacts))
	}
	if b := res.Artifacts[0].Boundary; b.StartPage != 1 || b.EndPage != 3 {
		t.Errorf("first boundary clamped to %d-%d, want 1-3", b.StartPage, b.EndPage)
	}
	if b := res.Artifacts[1].Boundary; b.StartPage != 4 || b.EndPage != 6 {
		t.Errorf("second boundary clamped to %d-%d, want 4-6", b.StartPage, b.EndPage)
	}
}

func TestSplitSkipsEmptyRange(t *testing.T) {
	src := makePDF(4)
	bounds := []boundary.Boundary{
		{StartPage: 1, EndPage: 4, DocumentType: boundary.TypeOther, Title: "whole"},
		{StartPage: 7, EndPage: 9, DocumentType: boundary.TypeOther, Title: "beyond"},
	}

	res, err := Split(src, bounds)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	// the out-of-range boundary is skipped, not fatal
	if len(res.Artifacts) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(res.Artifacts))
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(res.Skipped))
	}
	if res.Skipped[0].Boundary.StartPage != 7 {
		t.Errorf("skipped boundary = %+v", res.Skipped[0].Boundary)
	}
	if res.Skipped[0].Reason == "" {
		t.Error("skip reason missing")
	}
}

func TestSplitUnreadableSource(t *testing.T) {
	if _, err := Split([]byte("garbage"), []boundary.Boundary{{StartPage: 1, EndPage: 1}}); err == nil {
		t.Fatal("expected error for unreadable source")
	}
}
