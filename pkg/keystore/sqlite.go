package keystore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists wrapped keys in a SQLite database, for platforms
// where the client already carries one.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and if needed initializes) a key database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("keystore: opening %s: %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("keystore: creating tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	createKeysTable := `
	CREATE TABLE IF NOT EXISTS wrapped_keys (
		id TEXT PRIMARY KEY,
		wrapped_key BLOB NOT NULL
	);`

	_, err := s.db.Exec(createKeysTable)
	return err
}

func (s *SQLiteStore) Put(id string, wrapped []byte) error {
	if id == "" {
		return fmt.Errorf("keystore: empty id")
	}
	query := `
	INSERT INTO wrapped_keys (id, wrapped_key) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET wrapped_key = excluded.wrapped_key`

	if _, err := s.db.Exec(query, id, wrapped); err != nil {
		return fmt.Errorf("keystore: storing key for %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Get(id string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT wrapped_key FROM wrapped_keys WHERE id = ?`, id)

	var wrapped []byte
	if err := row.Scan(&wrapped); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("keystore: loading key for %s: %w", id, err)
	}
	return wrapped, nil
}

func (s *SQLiteStore) All() (map[string][]byte, error) {
	rows, err := s.db.Query(`SELECT id, wrapped_key FROM wrapped_keys`)
	if err != nil {
		return nil, fmt.Errorf("keystore: listing keys: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			id      string
			wrapped []byte
		)
		if err := rows.Scan(&id, &wrapped); err != nil {
			return nil, fmt.Errorf("keystore: scanning key row: %w", err)
		}
		out[id] = wrapped
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keystore: listing keys: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM wrapped_keys WHERE id = ?`, id); err != nil {
		return fmt.Errorf("keystore: deleting key for %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
