package aead

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
)

// KeySize is the key length shared by all three schemes.
const KeySize = 32

// GenerateKey returns a fresh random 32-byte symmetric key, suitable as a
// per-entity data encryption key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// KeyPairFromSeed deterministically expands a 32-byte seed into an X25519
// keypair usable with SealBox/OpenBox. The seed is used directly as the
// private scalar; clamping happens inside the curve operations.
func KeyPairFromSeed(seed [KeySize]byte) (pub, priv [KeySize]byte) {
	priv = seed
	p, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		// Basepoint multiplication only fails for a low-order result, which
		// a clamped scalar cannot produce.
		panic("aead: keypair from seed: " + err.Error())
	}
	copy(pub[:], p)
	return pub, priv
}

// Zero overwrites key material in place. Callers that derive short-lived
// keys should zero them once the last Seal/Open using them returns.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
