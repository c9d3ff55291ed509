package storage

import (
	"bytes"
	"testing"
)

func TestCryptorRoundTrip(t *testing.T) {
	c := NewCryptor("correct horse battery staple")
	plain := []byte("%PDF-1.4 fake artifact body")

	sealed, err := c.Seal(plain)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !isSealed(sealed) {
		t.Fatal("sealed blob not recognized")
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("plaintext leaked into sealed blob")
	}

	got, err := c.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("round trip mismatch")
	}
}

func TestCryptorFreshNoncePerSeal(t *testing.T) {
	c := NewCryptor("pw")
	a, _ := c.Seal([]byte("same input"))
	b, _ := c.Seal([]byte("same input"))
	if bytes.Equal(a, b) {
		t.Error("two seals of the same input produced identical blobs")
	}
}

func TestCryptorWrongPassphrase(t *testing.T) {
	sealed, err := NewCryptor("right").Seal([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCryptor("wrong").Open(sealed); err == nil {
		t.Fatal("expected auth failure with wrong passphrase")
	}
}

func TestOpenRejectsUnsealed(t *testing.T) {
	if _, err := NewCryptor("pw").Open([]byte("plain bytes")); err == nil {
		t.Fatal("expected error for unsealed input")
	}
	if isSealed([]byte("short")) {
		t.Error("short input misdetected as sealed")
	}
}
