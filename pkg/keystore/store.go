package keystore

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the id has no stored key.
var ErrNotFound = errors.New("keystore: key not found")

// Store persists wrapped data encryption keys by entity id. Keys are stored
// exactly as produced by the manager's key wrapping, so a compromised store
// yields nothing without the content private key.
type Store interface {
	// Put stores a wrapped key under an id, replacing any previous value.
	Put(id string, wrapped []byte) error
	// Get returns the wrapped key for an id, or ErrNotFound.
	Get(id string) ([]byte, error)
	// All returns every stored (id, wrapped key) pair, in the shape the
	// encryption manager's initializers consume.
	All() (map[string][]byte, error)
	// Delete removes an id. Deleting an absent id is not an error.
	Delete(id string) error
	// Close releases any underlying resources.
	Close() error
}

// Register stores a wrapped key under a newly minted id and returns the id.
func Register(s Store, wrapped []byte) (string, error) {
	id := uuid.NewString()
	if err := s.Put(id, wrapped); err != nil {
		return "", err
	}
	return id, nil
}
