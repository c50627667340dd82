package aead

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

const (
	// BoxNonceSize is the nonce length used by the public-key scheme.
	BoxNonceSize = 24
	// BoxOverhead is the tag length appended by box.
	BoxOverhead = box.Overhead

	boxMinSize = KeySize + BoxNonceSize + BoxOverhead
)

// ErrBadPublicKey indicates a recipient public key that is not exactly 32
// bytes.
var ErrBadPublicKey = errors.New("aead: public key must be 32 bytes")

// SealBox encrypts plaintext to the recipient's X25519 public key. A fresh
// ephemeral keypair is generated per call and its public half travels with
// the blob: ephemeralPub(32)||nonce(24)||ciphertext||tag. Only the recipient
// private key can open the result.
func SealBox(recipientPub, plaintext []byte) ([]byte, error) {
	if len(recipientPub) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrBadPublicKey, len(recipientPub))
	}
	var peer [KeySize]byte
	copy(peer[:], recipientPub)

	ephemeralPub, ephemeralPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	var nonce [BoxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	out := make([]byte, 0, boxMinSize+len(plaintext))
	out = append(out, ephemeralPub[:]...)
	out = append(out, nonce[:]...)
	return box.Seal(out, plaintext, &nonce, &peer, ephemeralPriv), nil
}

// OpenBox decrypts a blob produced by SealBox using the recipient private
// key. The sender's ephemeral public key is read from the blob itself. It
// reports ok=false for truncated input and for any authentication failure.
func OpenBox(recipientPriv, blob []byte) ([]byte, bool) {
	if len(recipientPriv) != KeySize || len(blob) < boxMinSize {
		return nil, false
	}
	var (
		priv      [KeySize]byte
		ephemeral [KeySize]byte
		nonce     [BoxNonceSize]byte
	)
	copy(priv[:], recipientPriv)
	copy(ephemeral[:], blob[:KeySize])
	copy(nonce[:], blob[KeySize:KeySize+BoxNonceSize])

	return box.Open(nil, blob[KeySize+BoxNonceSize:], &nonce, &ephemeral, &priv)
}
