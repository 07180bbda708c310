package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// BetsKey is the key the bet list is stored under.
const BetsKey = "bets"

var (
	// ErrBetNotFound is returned when an update or delete names an unknown bet.
	ErrBetNotFound = errors.New("bet not found")

	// ErrInvalidImport is returned when an imported document is not a valid bet list.
	ErrInvalidImport = errors.New("invalid bet import")
)

// BetStore keeps the bet list as a single JSON document in a SQLite
// key/value table.
type BetStore struct {
	db  *sql.DB
	key string

	// mu serializes read-modify-write cycles on the document
	mu sync.Mutex
}

// OpenBetStore opens (creating if needed) the SQLite database at path.
// ":memory:" gives a private in-memory database.
func OpenBetStore(path string) (*BetStore, error) {
	dsn := path
	if path != ":memory:" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
		dsn = absPath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: every connection to :memory: is a separate database,
	// and the document is rewritten as a whole anyway.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &BetStore{db: db, key: BetsKey}, nil
}

// Close closes the database.
func (s *BetStore) Close() error {
	return s.db.Close()
}

// List returns every stored bet in insertion order.
func (s *BetStore) List(ctx context.Context) ([]Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add stores a new bet and returns it with its generated id.
func (s *BetStore) Add(ctx context.Context, leg Leg) (Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bets, err := s.load(ctx)
	if err != nil {
		return Bet{}, err
	}

	bet := Bet{ID: uuid.NewString(), Leg: leg}
	if err := s.save(ctx, append(bets, bet)); err != nil {
		return Bet{}, err
	}
	return bet, nil
}

// Update replaces the bet with the same id.
func (s *BetStore) Update(ctx context.Context, bet Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bets, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range bets {
		if bets[i].ID == bet.ID {
			bets[i] = bet
			return s.save(ctx, bets)
		}
	}
	return fmt.Errorf("update %s: %w", bet.ID, ErrBetNotFound)
}

// Delete removes the bet with the given id.
func (s *BetStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bets, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range bets {
		if bets[i].ID == id {
			return s.save(ctx, append(bets[:i], bets[i+1:]...))
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrBetNotFound)
}

// Export writes the bet list to w as a JSON array.
func (s *BetStore) Export(ctx context.Context, w io.Writer) error {
	bets, err := s.List(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bets); err != nil {
		return fmt.Errorf("encode bets: %w", err)
	}
	return nil
}

// Import replaces the whole bet list with the document read from r.
// The stored list is left untouched when the document is rejected.
func (s *BetStore) Import(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}

	bets, err := DecodeBets(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, bets); err != nil {
		return 0, err
	}
	return len(bets), nil
}

// DecodeBets parses a JSON bet list. Bets without an id get a new one;
// duplicate ids are rejected.
func DecodeBets(data []byte) ([]Bet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidImport)
	}

	var bets []Bet
	if err := json.Unmarshal(data, &bets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	seen := make(map[string]bool, len(bets))
	for i := range bets {
		if bets[i].ID == "" {
			bets[i].ID = uuid.NewString()
		}
		if seen[bets[i].ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidImport, bets[i].ID)
		}
		seen[bets[i].ID] = true
	}
	if bets == nil {
		bets = []Bet{}
	}
	return bets, nil
}

// load reads the bet document. Must be called with mu held.
func (s *BetStore) load(ctx context.Context) ([]Bet, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if err == sql.ErrNoRows {
		return []Bet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bets: %w", err)
	}

	var bets []Bet
	if err := json.Unmarshal([]byte(value), &bets); err != nil {
		return nil, fmt.Errorf("decode stored bets: %w", err)
	}
	if bets == nil {
		bets = []Bet{}
	}
	return bets, nil
}

// save writes the bet document. Must be called with mu held.
func (s *BetStore) save(ctx context.Context, bets []Bet) error {
	if bets == nil {
		bets = []Bet{}
	}
	data, err := json.Marshal(bets)
	if err != nil {
		return fmt.Errorf("encode bets: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, s.key, string(data))
	if err != nil {
		return fmt.Errorf("save bets: %w", err)
	}
	return nil
}
