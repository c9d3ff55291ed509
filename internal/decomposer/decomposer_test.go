package decomposer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/ai"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/classifier"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/elements"
)

type fakeClient struct {
	text string
	err  error
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Do(_ context.Context, _ ai.Request) (ai.Response, error) {
	if f.err != nil {
		return ai.Response{}, f.err
	}
	return ai.Response{Text: f.text, TokensIn: 100, TokensOut: 40}, nil
}

func engineWith(client ai.Client) *Engine {
	return New(classifier.New(client, classifier.Options{Model: "test-model"}))
}

func elementsFor(total int) []elements.PageElement {
	var els []elements.PageElement
	for p := 1; p <= total; p++ {
		els = append(els, elements.PageElement{
			Type: elements.TypeNarrativeText, Text: "body text", PageNumber: p,
		})
	}
	return els
}

// testPDF builds a minimal valid n-page PDF.
func testPDF(n int) []byte {
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

func TestDecomposeDetectOnly(t *testing.T) {
	client := &fakeClient{text: `[
		{"start_page": 1, "end_page": 2, "document_type": "memo", "title": "Memo", "confidence": 0.9},
		{"start_page": 3, "end_page": 4, "document_type": "email", "title": "Thread", "confidence": 0.8}
	]`}
	eng := engineWith(client)

	res, err := eng.Decompose(context.Background(), Request{
		SourceID: "bundle-1",
		Elements: elementsFor(4),
		Mode:     ModeDetectOnly,
	})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(res.Boundaries) != 2 {
		t.Fatalf("boundaries = %d, want 2", len(res.Boundaries))
	}
	if !res.Validation.Valid {
		t.Errorf("validation failed: %v", res.Validation.Errors)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("detect-only run produced %d artifacts", len(res.Artifacts))
	}
	if res.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", res.TotalPages)
	}
	if res.Diagnostics.TokensIn != 100 || res.Diagnostics.TokensOut != 40 {
		t.Errorf("tokens = %d/%d", res.Diagnostics.TokensIn, res.Diagnostics.TokensOut)
	}
}

func TestDecomposeSplit(t *testing.T) {
	client := &fakeClient{text: `[
		{"start_page": 1, "end_page": 4, "document_type": "police-report", "title": "Report", "confidence": 0.9},
		{"start_page": 5, "end_page": 6, "document_type": "photo", "title": "Scene Photos", "confidence": 0.7}
	]`}
	eng := engineWith(client)

	res, err := eng.Decompose(context.Background(), Request{
		SourceID:    "bundle-2",
		SourceBytes: testPDF(6),
		Elements:    elementsFor(6),
		Mode:        ModeSplit,
	})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(res.Artifacts))
	}
	if res.Artifacts[0].PageCount != 4 || res.Artifacts[1].PageCount != 2 {
		t.Errorf("page counts = %d, %d, want 4, 2", res.Artifacts[0].PageCount, res.Artifacts[1].PageCount)
	}
}

func TestDecomposeInvalidReportSkipsSplit(t *testing.T) {
	// Gap between page 2 and page 4.
	client := &fakeClient{text: `[
		{"start_page": 1, "end_page": 2, "document_type": "memo", "title": "A", "confidence": 0.9},
		{"start_page": 4, "end_page": 6, "document_type": "memo", "title": "B", "confidence": 0.9}
	]`}
	eng := engineWith(client)
	req := Request{
		SourceID:    "bundle-3",
		SourceBytes: testPDF(6),
		Elements:    elementsFor(6),
		Mode:        ModeSplit,
	}

	res, err := eng.Decompose(context.Background(), req)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if res.Validation.Valid {
		t.Fatal("expected invalid validation report")
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("invalid report must suppress artifacts, got %d", len(res.Artifacts))
	}
	// boundaries still reported for review
	if len(res.Boundaries) != 2 {
		t.Errorf("boundaries = %d, want 2", len(res.Boundaries))
	}

	// The caller can override and split anyway.
	req.SplitInvalid = true
	res, err = eng.Decompose(context.Background(), req)
	if err != nil {
		t.Fatalf("Decompose with SplitInvalid: %v", err)
	}
	if len(res.Artifacts) != 2 {
		t.Errorf("forced split produced %d artifacts, want 2", len(res.Artifacts))
	}
}

func TestDecomposeFallbackManifest(t *testing.T) {
	client := &fakeClient{err: errors.New("oracle down")}
	eng := engineWith(client)

	res, err := eng.Decompose(context.Background(), Request{
		SourceID: "bundle-4",
		Elements: elementsFor(9),
		Mode:     ModeDetectOnly,
	})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if !res.Diagnostics.Fallback {
		t.Fatal("expected fallback diagnostics")
	}
	if len(res.Boundaries) != 1 {
		t.Fatalf("boundaries = %d, want 1", len(res.Boundaries))
	}
	b := res.Boundaries[0]
	if b.StartPage != 1 || b.EndPage != 9 || b.DocumentType != boundary.TypeOther {
		t.Errorf("fallback boundary = %+v", b)
	}
	// the whole-bundle fallback always validates cleanly
	if !res.Validation.Valid {
		t.Errorf("fallback validation failed: %v", res.Validation.Errors)
	}
}

func TestDecomposeEmptyElements(t *testing.T) {
	eng := engineWith(&fakeClient{})
	_, err := eng.Decompose(context.Background(), Request{SourceID: "bundle-5", Mode: ModeDetectOnly})
	if !errors.Is(err, elements.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestDecomposeCancelledContext(t *testing.T) {
	eng := engineWith(&fakeClient{text: `[{"start_page":1,"end_page":2,"document_type":"memo","title":"A"}]`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Decompose(ctx, Request{
		SourceID: "bundle-6",
		Elements: elementsFor(2),
		Mode:     ModeDetectOnly,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDecomposePDFPageCountAuthoritative(t *testing.T) {
	// Elements only reach page 2 but the PDF has 4 pages; the trailing
	// pages must still be accounted for when splitting.
	client := &fakeClient{err: errors.New("oracle down")}
	eng := engineWith(client)

	res, err := eng.Decompose(context.Background(), Request{
		SourceID:    "bundle-7",
		SourceBytes: testPDF(4),
		Elements:    elementsFor(2),
		Mode:        ModeSplit,
	})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if res.TotalPages != 4 {
		t.Fatalf("TotalPages = %d, want 4 (PDF is authoritative)", res.TotalPages)
	}
	// fallback boundary spans the reconciled count and splits cleanly
	if len(res.Artifacts) != 1 || res.Artifacts[0].PageCount != 4 {
		t.Errorf("artifacts = %+v", res.Artifacts)
	}
}

func TestDecomposeUnreadableSource(t *testing.T) {
	eng := engineWith(&fakeClient{})
	_, err := eng.Decompose(context.Background(), Request{
		SourceID:    "bundle-8",
		SourceBytes: []byte("not a pdf"),
		Elements:    elementsFor(2),
		Mode:        ModeSplit,
	})
	if err == nil {
		t.Fatal("expected error for unreadable source PDF")
	}
}
