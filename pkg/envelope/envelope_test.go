package envelope

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycoder/e2ee/pkg/aead"
)

func batch(items ...string) [][]byte {
	out := make([][]byte, len(items))
	for i, s := range items {
		out[i] = []byte(s)
	}
	return out
}

func TestSecretBoxEncryptionRoundTrip(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)
	enc := NewSecretBoxEncryption(key)

	items := batch("one", "two", "three")
	blobs, err := enc.Encrypt(items)
	require.NoError(t, err)
	require.Len(t, blobs, 3)

	opened := enc.Decrypt(blobs)
	require.Len(t, opened, 3)
	assert.Equal(t, items, opened)
}

func TestSecretBoxEncryptionPartialBatch(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)
	enc := NewSecretBoxEncryption(key)

	blobs, err := enc.Encrypt(batch("good", "bad", "also good"))
	require.NoError(t, err)
	blobs[1][len(blobs[1])-1] ^= 0x01

	opened := enc.Decrypt(blobs)
	require.Len(t, opened, 3)
	assert.Equal(t, []byte("good"), opened[0])
	assert.Nil(t, opened[1])
	assert.Equal(t, []byte("also good"), opened[2])
}

func TestBoxEncryptionWrapToSelf(t *testing.T) {
	var seed [aead.KeySize]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	pub, priv := aead.KeyPairFromSeed(seed)

	enc := NewBoxEncryption(pub, priv)
	items := batch("data encryption key bytes")
	blobs, err := enc.Encrypt(items)
	require.NoError(t, err)

	opened := enc.Decrypt(blobs)
	require.Len(t, opened, 1)
	assert.Equal(t, items[0], opened[0])
}

func TestBoxEncryptionWrongRecipient(t *testing.T) {
	var seedA, seedB [aead.KeySize]byte
	_, err := rand.Read(seedA[:])
	require.NoError(t, err)
	_, err = rand.Read(seedB[:])
	require.NoError(t, err)
	pubA, privA := aead.KeyPairFromSeed(seedA)
	_, privB := aead.KeyPairFromSeed(seedB)

	blobs, err := NewBoxEncryption(pubA, privA).Encrypt(batch("secret"))
	require.NoError(t, err)

	opened := NewBoxEncryption(pubA, privB).Decrypt(blobs)
	assert.Nil(t, opened[0])
}

func TestAES256EncryptionRoundTrip(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)
	enc, err := NewAES256Encryption(key)
	require.NoError(t, err)

	items := batch("alpha", "beta")
	blobs, err := enc.Encrypt(items)
	require.NoError(t, err)
	for _, blob := range blobs {
		assert.Equal(t, byte(Version), blob[0])
	}

	opened := enc.Decrypt(blobs)
	assert.Equal(t, items, opened)
}

func TestAES256EncryptionUnknownVersion(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)
	enc, err := NewAES256Encryption(key)
	require.NoError(t, err)

	blobs, err := enc.Encrypt(batch("payload"))
	require.NoError(t, err)
	blobs[0][0] = 1

	opened := enc.Decrypt(blobs)
	require.Len(t, opened, 1)
	assert.Nil(t, opened[0])
}

func TestAES256EncryptionEmptyAndTruncatedItems(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)
	enc, err := NewAES256Encryption(key)
	require.NoError(t, err)

	opened := enc.Decrypt([][]byte{nil, {}, {Version}, {Version, 1, 2, 3}})
	require.Len(t, opened, 4)
	for i, item := range opened {
		assert.Nil(t, item, "item %d", i)
	}
}

func TestAES256EncryptionRejectsBadKey(t *testing.T) {
	_, err := NewAES256Encryption([]byte("short"))
	assert.ErrorIs(t, err, aead.ErrBadKeySize)
}

func TestEmptyBatches(t *testing.T) {
	key, err := aead.GenerateKey()
	require.NoError(t, err)

	enc := NewSecretBoxEncryption(key)
	blobs, err := enc.Encrypt(nil)
	require.NoError(t, err)
	assert.Empty(t, blobs)
	assert.Empty(t, enc.Decrypt(nil))
}
