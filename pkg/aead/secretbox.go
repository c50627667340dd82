package aead

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// SecretBoxNonceSize is the nonce length prepended to secretbox blobs.
	SecretBoxNonceSize = 24
	// SecretBoxOverhead is the Poly1305 tag length appended by secretbox.
	SecretBoxOverhead = secretbox.Overhead
)

// SealSecretBox encrypts plaintext with NaCl secretbox under a random nonce
// and returns nonce||ciphertext||tag.
//
// Keys shorter than 32 bytes are right-padded with zeros and longer keys are
// truncated. The companion client behaves this way, so a strict length check
// here would break decryption of its output.
func SealSecretBox(key, plaintext []byte) ([]byte, error) {
	boxKey := secretBoxKey(key)

	var nonce [SecretBoxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &boxKey), nil
}

// OpenSecretBox decrypts a blob produced by SealSecretBox. It reports
// ok=false for truncated input and for any authentication failure.
func OpenSecretBox(key, blob []byte) ([]byte, bool) {
	if len(blob) < SecretBoxNonceSize+SecretBoxOverhead {
		return nil, false
	}
	boxKey := secretBoxKey(key)

	var nonce [SecretBoxNonceSize]byte
	copy(nonce[:], blob[:SecretBoxNonceSize])
	return secretbox.Open(nil, blob[SecretBoxNonceSize:], &nonce, &boxKey)
}

func secretBoxKey(key []byte) [KeySize]byte {
	var out [KeySize]byte
	copy(out[:], key)
	return out
}
