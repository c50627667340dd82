package e2ee

import (
	"encoding/base64"
	"log/slog"

	"github.com/happycoder/e2ee/pkg/envelope"
)

// SessionEncryption is the per-session facade over one encryptor/decryptor
// pair and the shared payload cache. Instances are created and owned by the
// Manager; a single instance is not meant for concurrent mutation, though
// distinct sessions may run in parallel.
type SessionEncryption struct {
	id    string
	enc   envelope.Encryptor
	dec   envelope.Decryptor
	cache *Cache
	log   *slog.Logger
}

// ID returns the session id this facade serves.
func (s *SessionEncryption) ID() string {
	return s.id
}

// DecryptMessages resolves a batch of inbound messages to plaintext.
// Cached payloads are served without touching the cipher; the remaining
// encrypted items go to the decryptor as one batch. A message that fails
// decryption is returned contentless rather than dropped; the failure is
// not cached, so a later call with fresh data can still succeed.
func (s *SessionEncryption) DecryptMessages(batch []Message) []DecryptedMessage {
	out := make([]DecryptedMessage, len(batch))

	var (
		pending    [][]byte
		pendingIdx []int
	)
	for i, msg := range batch {
		out[i] = DecryptedMessage{ID: msg.ID, Version: msg.Version}

		if msg.Content.Type != ContentTypeEncrypted {
			out[i].Payload = []byte(msg.Content.Data)
			out[i].Decrypted = true
			continue
		}
		if payload, found := s.cache.Get(PartitionMessage, msg.ID, msg.Version); found {
			out[i].Payload = payload
			out[i].Decrypted = payload != nil
			continue
		}
		blob, err := base64.StdEncoding.DecodeString(msg.Content.Data)
		if err != nil {
			s.log.Debug("message ciphertext is not valid base64", "session", s.id, "message", msg.ID)
			continue
		}
		pending = append(pending, blob)
		pendingIdx = append(pendingIdx, i)
	}

	if len(pending) == 0 {
		return out
	}
	for j, payload := range s.dec.Decrypt(pending) {
		i := pendingIdx[j]
		if payload == nil {
			s.log.Debug("message failed to decrypt", "session", s.id, "message", batch[i].ID)
			continue
		}
		out[i].Payload = payload
		out[i].Decrypted = true
		s.cache.Set(PartitionMessage, batch[i].ID, batch[i].Version, payload)
	}
	return out
}

// DecryptMetadata resolves one metadata blob for the session, via the
// metadata cache partition. Missing or unauthenticatable input yields an
// empty result, never an error.
func (s *SessionEncryption) DecryptMetadata(version int, blob string) []byte {
	return s.decryptCached(PartitionMetadata, version, blob, false)
}

// DecryptAgentState resolves one agent-state blob for the session, via the
// agent-state cache partition. Failure semantics match DecryptMetadata.
func (s *SessionEncryption) DecryptAgentState(version int, blob string) []byte {
	return s.decryptCached(PartitionAgentState, version, blob, false)
}

// EncryptMetadata encrypts a metadata payload and returns it base64-encoded
// for storage.
func (s *SessionEncryption) EncryptMetadata(value []byte) (string, error) {
	return s.encryptOne(value)
}

// EncryptAgentState encrypts an agent-state payload and returns it
// base64-encoded for storage.
func (s *SessionEncryption) EncryptAgentState(value []byte) (string, error) {
	return s.encryptOne(value)
}

// EncryptRaw encrypts an arbitrary payload with the session's scheme and
// returns it base64-encoded. The payload bytes are passed through untouched;
// any structured encoding happens at the caller.
func (s *SessionEncryption) EncryptRaw(value []byte) (string, error) {
	return s.encryptOne(value)
}

func (s *SessionEncryption) encryptOne(value []byte) (string, error) {
	blobs, err := s.enc.Encrypt([][]byte{value})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blobs[0]), nil
}

// decryptCached is the shared cache-checked single-item decrypt. When
// cacheNegative is set, a failed decrypt is recorded so the same bad blob
// is not retried.
func (s *SessionEncryption) decryptCached(partition string, version int, blob string, cacheNegative bool) []byte {
	if blob == "" {
		return nil
	}
	if payload, found := s.cache.Get(partition, s.id, version); found {
		return payload
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		s.log.Debug("blob is not valid base64", "session", s.id, "partition", partition)
		if cacheNegative {
			s.cache.Set(partition, s.id, version, nil)
		}
		return nil
	}
	payload := s.dec.Decrypt([][]byte{raw})[0]
	if payload == nil {
		s.log.Debug("blob failed to decrypt", "session", s.id, "partition", partition)
		if cacheNegative {
			s.cache.Set(partition, s.id, version, nil)
		}
		return nil
	}
	s.cache.Set(partition, s.id, version, payload)
	return payload
}
