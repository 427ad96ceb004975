package opstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/petrijr/fundo/pkg/api"
)

// SQLiteStore is a Store backed by an embedded SQLite database.
//
// Mutations are staged in an open transaction and committed by Flush, so a
// crash between a mutation and the next flush rolls back to the previous
// checkpoint. That is exactly the replay behavior the engine needs: a
// removal lost this way only causes a harmless reprocessing.
type SQLiteStore struct {
	db *sql.DB

	mu sync.Mutex
	tx *sql.Tx // staging transaction, nil between flushes
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if necessary) the operation database for the given
// store name under dir and returns a SQLiteStore backed by it. The database
// file is <dir>/<name>.db, opened in WAL mode.
func Open(dir, name string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("opstore: create store directory: %w", err)
	}

	path := filepath.Join(dir, name+".db")
	db, err := sql.Open("sqlite", "file:"+path+"?_journal=WAL")
	if err != nil {
		return nil, fmt.Errorf("opstore: open %s: %w", path, err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore initializes the required schema in the given database and
// returns a SQLiteStore backed by it. The store takes ownership of db and
// closes it on Close.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	// One connection: the staging transaction and construction-time reads
	// must share a single view, and SQLite allows one writer anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY,
			payload BLOB
		);`,
	)
	return err
}

// ensureTx begins the staging transaction if none is open.
// Callers must hold s.mu.
func (s *SQLiteStore) ensureTx() (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	s.tx = tx
	return tx, nil
}

func (s *SQLiteStore) Insert(op api.Operation) error {
	payload, err := encodePayload(op.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for operation %d: %w", op.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ensureTx()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO operations (id, payload) VALUES (?, ?)`, op.ID, payload)
	return err
}

func (s *SQLiteStore) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ensureTx()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit()
	s.tx = nil
	return err
}

// LoadAll reads the flushed view. It must not be called while mutations are
// staged; the engine only calls it during construction, before any Insert.
func (s *SQLiteStore) LoadAll() ([]api.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, payload FROM operations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []api.Operation
	for rows.Next() {
		var op api.Operation
		var payload []byte
		if err := rows.Scan(&op.ID, &payload); err != nil {
			return nil, err
		}

		v, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("decode payload for operation %d: %w", op.ID, err)
		}
		op.Payload = v

		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ops, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}
