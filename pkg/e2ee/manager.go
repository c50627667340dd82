package e2ee

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/happycoder/e2ee/pkg/aead"
	"github.com/happycoder/e2ee/pkg/envelope"
	"github.com/happycoder/e2ee/pkg/keytree"
)

// usageLabel roots every derivation this subsystem performs. It must match
// the companion client byte for byte.
const usageLabel = "Happy Coder"

// keyWrapVersion prefixes every wrapped data encryption key.
const keyWrapVersion = 0x00

// MasterSecretSize is the required master secret length.
const MasterSecretSize = 32

// ErrBadMasterSecret indicates a master secret that is not exactly 32 bytes.
var ErrBadMasterSecret = errors.New("e2ee: master secret must be 32 bytes")

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger sets the logger used for facade-level diagnostics. Without it
// the manager stays silent.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithCacheCapacity overrides the per-partition payload cache capacity.
func WithCacheCapacity(capacity int) Option {
	return func(m *Manager) {
		m.cacheCapacity = capacity
	}
}

// Manager is the top-level owner of all derived key material. It derives
// the content keypair and anonymous id from the master secret once, hands
// out per-session and per-machine facades, and wraps data encryption keys
// to its own content key.
type Manager struct {
	mu            sync.Mutex
	contentPub    [aead.KeySize]byte
	contentPriv   [aead.KeySize]byte
	anonID        string
	cacheCapacity int

	cache    *Cache
	log      *slog.Logger
	legacy   *envelope.SecretBoxEncryption
	keyWrap  *envelope.BoxEncryption
	sessions map[string]*SessionEncryption
	machines map[string]*MachineEncryption
}

// New derives the content keypair and anonymous id from a 32-byte master
// secret and returns a ready Manager. The master secret itself is retained
// only inside the legacy secretbox scheme; it is never persisted.
func New(masterSecret []byte, opts ...Option) (*Manager, error) {
	if len(masterSecret) != MasterSecretSize {
		return nil, fmt.Errorf("%w: got %d", ErrBadMasterSecret, len(masterSecret))
	}

	m := &Manager{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: make(map[string]*SessionEncryption),
		machines: make(map[string]*MachineEncryption),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewCache(m.cacheCapacity)

	contentSeed := keytree.Derive(masterSecret, usageLabel, []string{"content"})
	m.contentPub, m.contentPriv = aead.KeyPairFromSeed(contentSeed)
	aead.Zero(contentSeed[:])

	anonKey := keytree.Derive(masterSecret, usageLabel, []string{"analytics", "id"})
	m.anonID = hex.EncodeToString(anonKey[:16])
	aead.Zero(anonKey[:])

	m.legacy = envelope.NewSecretBoxEncryption(masterSecret)
	m.keyWrap = envelope.NewBoxEncryption(m.contentPub, m.contentPriv)
	return m, nil
}

// AnonID returns the stable anonymous identifier for this master secret:
// lowercase hex of the first 16 bytes of its analytics derivation.
func (m *Manager) AnonID() string {
	return m.anonID
}

// ContentPublicKey returns the derived content public key.
func (m *Manager) ContentPublicKey() []byte {
	out := make([]byte, aead.KeySize)
	copy(out, m.contentPub[:])
	return out
}

// CacheStats reports the payload cache state per partition.
func (m *Manager) CacheStats() map[string]PartitionStats {
	return m.cache.Stats()
}

// InitializeSessions registers a facade per session id. Sessions already
// registered are left untouched, so repeated initialization with overlapping
// maps is safe. A nil or empty key selects the legacy master-secret
// secretbox scheme; a 32-byte data encryption key selects AES-256-GCM.
func (m *Manager) InitializeSessions(keys map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, dek := range keys {
		if _, ok := m.sessions[id]; ok {
			continue
		}
		enc, dec, err := m.schemeFor(dek)
		if err != nil {
			return fmt.Errorf("session %s: %w", id, err)
		}
		m.sessions[id] = &SessionEncryption{id: id, enc: enc, dec: dec, cache: m.cache, log: m.log}
		m.log.Debug("session encryption initialized", "session", id, "dek", dek != nil)
	}
	return nil
}

// InitializeMachines registers a facade per machine id, with the same
// idempotency and scheme selection as InitializeSessions.
func (m *Manager) InitializeMachines(keys map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, dek := range keys {
		if _, ok := m.machines[id]; ok {
			continue
		}
		enc, dec, err := m.schemeFor(dek)
		if err != nil {
			return fmt.Errorf("machine %s: %w", id, err)
		}
		m.machines[id] = &MachineEncryption{id: id, enc: enc, dec: dec, cache: m.cache, log: m.log}
		m.log.Debug("machine encryption initialized", "machine", id, "dek", dek != nil)
	}
	return nil
}

func (m *Manager) schemeFor(dek []byte) (envelope.Encryptor, envelope.Decryptor, error) {
	if len(dek) == 0 {
		return m.legacy, m.legacy, nil
	}
	aes, err := envelope.NewAES256Encryption(dek)
	if err != nil {
		return nil, nil, err
	}
	return aes, aes, nil
}

// SessionEncryption returns the facade for a session id, or nil when the id
// was never initialized.
func (m *Manager) SessionEncryption(id string) *SessionEncryption {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// MachineEncryption returns the facade for a machine id, or nil when the id
// was never initialized.
func (m *Manager) MachineEncryption(id string) *MachineEncryption {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machines[id]
}

// RemoveSessionEncryption tears down a session facade and drops its cached
// payloads.
func (m *Manager) RemoveSessionEncryption(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.cache.ClearEntity(id)
}

// RemoveMachineEncryption tears down a machine facade and drops its cached
// payloads.
func (m *Manager) RemoveMachineEncryption(id string) {
	m.mu.Lock()
	delete(m.machines, id)
	m.mu.Unlock()
	m.cache.ClearEntity(id)
}

// EncryptEncryptionKey wraps a data encryption key to this manager's own
// content key: a version byte followed by a box blob sealed to the content
// public key. Only the holder of the matching private key can unwrap it.
func (m *Manager) EncryptEncryptionKey(dek []byte) ([]byte, error) {
	blobs, err := m.keyWrap.Encrypt([][]byte{dek})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(blobs[0]))
	out = append(out, keyWrapVersion)
	return append(out, blobs[0]...), nil
}

// DecryptEncryptionKey unwraps a blob produced by EncryptEncryptionKey. Any
// version mismatch, truncation, or corruption yields nil.
func (m *Manager) DecryptEncryptionKey(blob []byte) []byte {
	if len(blob) < 1 || blob[0] != keyWrapVersion {
		return nil
	}
	return m.keyWrap.Decrypt([][]byte{blob[1:]})[0]
}

// EncryptRaw encrypts a payload with the legacy master-secret scheme and
// returns it base64-encoded. Kept for payloads that predate per-entity data
// encryption keys.
func (m *Manager) EncryptRaw(value []byte) (string, error) {
	blobs, err := m.legacy.Encrypt([][]byte{value})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blobs[0]), nil
}

// DecryptRaw decrypts a base64 blob produced by EncryptRaw or by an older
// client. Any failure yields nil.
func (m *Manager) DecryptRaw(blob string) []byte {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil
	}
	return m.legacy.Decrypt([][]byte{raw})[0]
}
