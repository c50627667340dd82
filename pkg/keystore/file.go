package keystore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	bin "github.com/saylorsolutions/binmap"
)

const (
	fileMagic        uint16 = 0x1e2e
	fileMagicInverse uint16 = 0x2e1e
	fileVersion      uint8  = 1

	maxIDLen   = 1 << 10
	maxBlobLen = 1 << 16
)

// ErrInvalidFile indicates a key file with a bad header or record layout.
var ErrInvalidFile = errors.New("keystore: invalid key file")

// FileStore keeps wrapped keys in a single binary file. The whole map is
// loaded on open and rewritten on every mutation; key counts stay small
// enough that this is cheaper than being clever.
type FileStore struct {
	mu   sync.Mutex
	path string
	keys map[string][]byte
}

type fileHeader struct {
	version uint8
	count   uint64
}

func (h *fileHeader) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Byte(&h.version),
		bin.Int(&h.count),
	)
}

// OpenFileStore loads the key file at path, creating an empty store when
// the file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, keys: make(map[string][]byte)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: reading %s: %w", path, err)
	}
	if err := s.unmarshal(data); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Put(id string, wrapped []byte) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidFile)
	}
	if len(id) > maxIDLen || len(wrapped) > maxBlobLen {
		return fmt.Errorf("%w: record too large", ErrInvalidFile)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[id] = append([]byte(nil), wrapped...)
	return s.flush()
}

func (s *FileStore) Get(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wrapped, ok := s.keys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), wrapped...), nil
}

func (s *FileStore) All() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.keys))
	for id, wrapped := range s.keys {
		out[id] = append([]byte(nil), wrapped...)
	}
	return out, nil
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return nil
	}
	delete(s.keys, id)
	return s.flush()
}

func (s *FileStore) Close() error {
	return nil
}

// flush rewrites the whole file. Caller holds the lock.
func (s *FileStore) flush() error {
	var buf bytes.Buffer
	endian := binary.ByteOrder(binary.BigEndian)

	if err := binary.Write(&buf, endian, fileMagic); err != nil {
		return err
	}
	header := fileHeader{version: fileVersion, count: uint64(len(s.keys))}
	if err := header.mapper().Write(&buf, endian); err != nil {
		return err
	}

	// Records are sorted so the same map always produces the same bytes.
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := binary.Write(&buf, endian, uint16(len(id))); err != nil {
			return err
		}
		if _, err := buf.WriteString(id); err != nil {
			return err
		}
		if err := binary.Write(&buf, endian, uint32(len(s.keys[id]))); err != nil {
			return err
		}
		if _, err := buf.Write(s.keys[id]); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, buf.Bytes(), 0600)
}

func (s *FileStore) unmarshal(data []byte) error {
	r := bytes.NewReader(data)
	var (
		magic  uint16
		endian = binary.ByteOrder(binary.BigEndian)
	)
	if err := binary.Read(r, endian, &magic); err != nil {
		return fmt.Errorf("%w: missing magic bytes", ErrInvalidFile)
	}
	switch magic {
	case fileMagic:
	case fileMagicInverse:
		endian = binary.LittleEndian
	default:
		return fmt.Errorf("%w: bad magic bytes", ErrInvalidFile)
	}

	var header fileHeader
	if err := header.mapper().Read(r, endian); err != nil {
		return fmt.Errorf("%w: bad header", ErrInvalidFile)
	}
	if header.version != fileVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidFile, header.version)
	}

	for i := uint64(0); i < header.count; i++ {
		var idLen uint16
		if err := binary.Read(r, endian, &idLen); err != nil {
			return fmt.Errorf("%w: truncated record %d", ErrInvalidFile, i)
		}
		if idLen == 0 || int(idLen) > maxIDLen {
			return fmt.Errorf("%w: bad id length in record %d", ErrInvalidFile, i)
		}
		id := make([]byte, idLen)
		if _, err := io.ReadFull(r, id); err != nil {
			return fmt.Errorf("%w: truncated record %d", ErrInvalidFile, i)
		}
		var blobLen uint32
		if err := binary.Read(r, endian, &blobLen); err != nil {
			return fmt.Errorf("%w: truncated record %d", ErrInvalidFile, i)
		}
		if int(blobLen) > maxBlobLen {
			return fmt.Errorf("%w: bad key length in record %d", ErrInvalidFile, i)
		}
		wrapped := make([]byte, blobLen)
		if _, err := io.ReadFull(r, wrapped); err != nil {
			return fmt.Errorf("%w: truncated record %d", ErrInvalidFile, i)
		}
		s.keys[string(id)] = wrapped
	}
	return nil
}
