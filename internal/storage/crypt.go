package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Sealed layout: magic(8) + salt(16) + nonce(12) + ciphertext||tag.
const sealedMagic = "GCM3NCR0"

const (
	saltLen       = 16
	nonceLen      = 12
	pbkdf2Rounds  = 100000
	pbkdf2KeyLen  = 32
	sealedMinSize = len(sealedMagic) + saltLen + nonceLen + 16
)

// Cryptor seals and opens blobs with AES-GCM under a passphrase-derived
// key. Each Seal call draws a fresh salt and nonce.
type Cryptor struct {
	passphrase string
}

func NewCryptor(passphrase string) *Cryptor { return &Cryptor{passphrase: passphrase} }

func isSealed(data []byte) bool {
	return len(data) >= sealedMinSize && string(data[:len(sealedMagic)]) == sealedMagic
}

func (c *Cryptor) Seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, nonce, plain, nil)

	out := make([]byte, 0, len(sealedMagic)+saltLen+nonceLen+len(sealed))
	out = append(out, sealedMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

func (c *Cryptor) Open(data []byte) ([]byte, error) {
	if !isSealed(data) {
		return nil, fmt.Errorf("not a sealed blob")
	}
	salt := data[len(sealedMagic) : len(sealedMagic)+saltLen]
	nonce := data[len(sealedMagic)+saltLen : len(sealedMagic)+saltLen+nonceLen]
	body := data[len(sealedMagic)+saltLen+nonceLen:]

	gcm, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm open: %w", err)
	}
	return plain, nil
}

func (c *Cryptor) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(c.passphrase), salt, pbkdf2Rounds, pbkdf2KeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
