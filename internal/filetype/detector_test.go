package filetype

import "testing"

func TestIsPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n%%EOF")
	if !IsPDF(pdf) {
		t.Error("PDF header not detected")
	}
	if IsPDF([]byte("just some text")) {
		t.Error("plain text detected as PDF")
	}
	if IsPDF(nil) {
		t.Error("empty payload detected as PDF")
	}
}

func TestDetect(t *testing.T) {
	info := Detect([]byte("%PDF-1.7\n"))
	if info.MIME != "application/pdf" {
		t.Errorf("MIME = %q", info.MIME)
	}
	if info.Extension != ".pdf" {
		t.Errorf("Extension = %q", info.Extension)
	}
}
