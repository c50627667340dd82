package envelope

import (
	"fmt"

	"github.com/happycoder/e2ee/pkg/aead"
)

// Encryptor encrypts a batch of payloads. All items share one scheme and one
// key; the returned slice is positionally aligned with the input.
type Encryptor interface {
	Encrypt(items [][]byte) ([][]byte, error)
}

// Decryptor decrypts a batch of blobs. Each item is handled independently:
// element i of the result is nil when item i could not be authenticated, and
// a failed item never aborts its siblings.
type Decryptor interface {
	Decrypt(items [][]byte) [][]byte
}

// SecretBoxEncryption is the legacy symmetric scheme for entities without
// their own data encryption key. Blobs carry no version byte.
type SecretBoxEncryption struct {
	key []byte
}

// NewSecretBoxEncryption builds a secretbox encryptor/decryptor pair around
// a shared key. The key is used as-is, including the companion client's
// pad/truncate leniency for non-32-byte keys.
func NewSecretBoxEncryption(key []byte) *SecretBoxEncryption {
	return &SecretBoxEncryption{key: key}
}

func (s *SecretBoxEncryption) Encrypt(items [][]byte) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, item := range items {
		blob, err := aead.SealSecretBox(s.key, item)
		if err != nil {
			return nil, err
		}
		out[i] = blob
	}
	return out, nil
}

func (s *SecretBoxEncryption) Decrypt(items [][]byte) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		if plaintext, ok := aead.OpenSecretBox(s.key, item); ok {
			out[i] = plaintext
		}
	}
	return out
}

// BoxEncryption is the public-key scheme. Encrypt seals to the peer's public
// key; Decrypt opens with the own private key.
type BoxEncryption struct {
	peerPub [aead.KeySize]byte
	ownPriv [aead.KeySize]byte
}

// NewBoxEncryption builds a box encryptor/decryptor pair. Sealing to one's
// own public key is the supported way to wrap keys to self.
func NewBoxEncryption(peerPub, ownPriv [aead.KeySize]byte) *BoxEncryption {
	return &BoxEncryption{peerPub: peerPub, ownPriv: ownPriv}
}

func (b *BoxEncryption) Encrypt(items [][]byte) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, item := range items {
		blob, err := aead.SealBox(b.peerPub[:], item)
		if err != nil {
			return nil, err
		}
		out[i] = blob
	}
	return out, nil
}

func (b *BoxEncryption) Decrypt(items [][]byte) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		if plaintext, ok := aead.OpenBox(b.ownPriv[:], item); ok {
			out[i] = plaintext
		}
	}
	return out
}

// Version is the format version prefixed to every AES256Encryption blob.
// Decrypt refuses blobs carrying any other value.
const Version = 0x00

// AES256Encryption is the DEK-backed scheme: AES-256-GCM with a one-byte
// version prefix on every blob.
type AES256Encryption struct {
	key []byte
}

// NewAES256Encryption builds the AEAD encryptor/decryptor pair for a
// 32-byte data encryption key. A key of any other length is a caller bug.
func NewAES256Encryption(key []byte) (*AES256Encryption, error) {
	if len(key) != aead.KeySize {
		return nil, fmt.Errorf("%w: got %d", aead.ErrBadKeySize, len(key))
	}
	return &AES256Encryption{key: key}, nil
}

func (a *AES256Encryption) Encrypt(items [][]byte) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, item := range items {
		blob, err := aead.SealGCM(a.key, item)
		if err != nil {
			return nil, err
		}
		out[i] = append([]byte{Version}, blob...)
	}
	return out, nil
}

// Decrypt checks each item's version byte before touching the cipher. An
// unknown version yields nil for that item, same as an authentication
// failure.
func (a *AES256Encryption) Decrypt(items [][]byte) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		if len(item) == 0 || item[0] != Version {
			continue
		}
		if plaintext, ok := aead.OpenGCM(a.key, item[1:]); ok {
			out[i] = plaintext
		}
	}
	return out
}
