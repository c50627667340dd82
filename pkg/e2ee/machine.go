package e2ee

import (
	"encoding/base64"
	"log/slog"

	"github.com/happycoder/e2ee/pkg/envelope"
)

// MachineEncryption is the per-machine facade. It mirrors SessionEncryption
// but works against the machine-metadata and daemon-state cache partitions,
// and caches daemon-state decrypt failures so known-bad ciphertext is not
// retried on every poll.
type MachineEncryption struct {
	id    string
	enc   envelope.Encryptor
	dec   envelope.Decryptor
	cache *Cache
	log   *slog.Logger
}

// ID returns the machine id this facade serves.
func (m *MachineEncryption) ID() string {
	return m.id
}

// DecryptMetadata resolves one machine metadata blob, via the
// machine-metadata cache partition. Missing or unauthenticatable input
// yields an empty result, never an error.
func (m *MachineEncryption) DecryptMetadata(version int, blob string) []byte {
	return m.decryptCached(PartitionMachineMetadata, version, blob, false)
}

// DecryptDaemonState resolves one daemon-state blob. Failures are cached as
// negatives: daemon state is re-fetched frequently, and a blob that failed
// authentication once will keep failing until its version moves.
func (m *MachineEncryption) DecryptDaemonState(version int, blob string) []byte {
	return m.decryptCached(PartitionDaemonState, version, blob, true)
}

// EncryptMetadata encrypts a machine metadata payload and returns it
// base64-encoded for storage.
func (m *MachineEncryption) EncryptMetadata(value []byte) (string, error) {
	return m.encryptOne(value)
}

// EncryptDaemonState encrypts a daemon-state payload and returns it
// base64-encoded for storage.
func (m *MachineEncryption) EncryptDaemonState(value []byte) (string, error) {
	return m.encryptOne(value)
}

// EncryptRaw encrypts an arbitrary payload with the machine's scheme and
// returns it base64-encoded.
func (m *MachineEncryption) EncryptRaw(value []byte) (string, error) {
	return m.encryptOne(value)
}

func (m *MachineEncryption) encryptOne(value []byte) (string, error) {
	blobs, err := m.enc.Encrypt([][]byte{value})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blobs[0]), nil
}

func (m *MachineEncryption) decryptCached(partition string, version int, blob string, cacheNegative bool) []byte {
	if blob == "" {
		return nil
	}
	if payload, found := m.cache.Get(partition, m.id, version); found {
		return payload
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		m.log.Debug("blob is not valid base64", "machine", m.id, "partition", partition)
		if cacheNegative {
			m.cache.Set(partition, m.id, version, nil)
		}
		return nil
	}
	payload := m.dec.Decrypt([][]byte{raw})[0]
	if payload == nil {
		m.log.Debug("blob failed to decrypt", "machine", m.id, "partition", partition)
		if cacheNegative {
			m.cache.Set(partition, m.id, version, nil)
		}
		return nil
	}
	m.cache.Set(partition, m.id, version, payload)
	return payload
}
