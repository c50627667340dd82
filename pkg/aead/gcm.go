package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// GCMNonceSize is the nonce length prepended to AES-256-GCM blobs.
	GCMNonceSize = 12
	// GCMTagSize is the tag length appended by AES-256-GCM.
	GCMTagSize = 16
)

// ErrBadKeySize indicates a key that is not exactly 32 bytes. Unlike the
// secretbox scheme there is no leniency here: an AES-256 key of any other
// length is a caller bug.
var ErrBadKeySize = errors.New("aead: AES-256 key must be 32 bytes")

// SealGCM encrypts plaintext with AES-256-GCM under a random nonce and
// returns nonce||ciphertext||tag.
func SealGCM(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, GCMNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenGCM decrypts a blob produced by SealGCM. Truncation and
// authentication failure report ok=false.
func OpenGCM(key, blob []byte) ([]byte, bool) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, false
	}
	if len(blob) < GCMNonceSize+GCMTagSize {
		return nil, false
	}
	plaintext, err := gcm.Open(nil, blob[:GCMNonceSize], blob[GCMNonceSize:], nil)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrBadKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
