// Package prefs provides SQLite persistence for BookLegend preferences.
//
// Two keys are stored: the set of favorite work ids and the dark-mode flag.
// Both are exposed as observe.Values so screens react to changes instead of
// polling.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/abelbrown/booklegend/internal/observe"
)

// Keys in the preferences table.
const (
	KeyFavorites = "favorite_books_ids"
	KeyDarkMode  = "is_dark_mode"
)

// Store handles preference persistence. Concrete type, not an interface.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes read-modify-write transactions

	favorites *observe.Value[[]string]
	darkMode  *observe.Value[bool]
}

// Open creates a Store with the given database path.
// Creates the table if it doesn't exist and loads current values.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		connStr = "file::memory:"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and serializes
	// writers for file databases.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	favs, err := s.readFavorites(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	dark, err := s.readDarkMode(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load dark mode: %w", err)
	}
	s.favorites = observe.New(favs)
	s.darkMode = observe.New(dark)

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Favorites returns the favorite ids, sorted.
func (s *Store) Favorites() []string {
	return s.favorites.Get()
}

// FavoritesValue exposes the favorite set for subscription.
func (s *Store) FavoritesValue() *observe.Value[[]string] {
	return s.favorites
}

// IsFavorite reports whether id is in the favorite set.
func (s *Store) IsFavorite(id string) bool {
	favs := s.favorites.Get()
	i := sort.SearchStrings(favs, id)
	return i < len(favs) && favs[i] == id
}

// ToggleFavorite adds id if absent or removes it if present, returning the
// new set. The read and the write happen in one transaction.
func (s *Store) ToggleFavorite(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	favs, err := s.readFavorites(ctx, tx)
	if err != nil {
		return nil, err
	}
	favs = toggle(favs, id)

	data, err := json.Marshal(favs)
	if err != nil {
		return nil, fmt.Errorf("encode favorites: %w", err)
	}
	if err := put(ctx, tx, KeyFavorites, string(data)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}

	s.favorites.Set(favs)
	return favs, nil
}

// DarkMode returns the stored theme flag.
func (s *Store) DarkMode() bool {
	return s.darkMode.Get()
}

// DarkModeValue exposes the theme flag for subscription.
func (s *Store) DarkModeValue() *observe.Value[bool] {
	return s.darkMode
}

// SetDarkMode persists the theme flag.
func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := put(ctx, s.db, KeyDarkMode, strconv.FormatBool(dark)); err != nil {
		return err
	}
	s.darkMode.Set(dark)
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func get(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func put(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) readFavorites(ctx context.Context, q querier) ([]string, error) {
	raw, ok, err := get(ctx, q, KeyFavorites)
	if err != nil || !ok {
		return []string{}, err
	}
	var favs []string
	if err := json.Unmarshal([]byte(raw), &favs); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	sort.Strings(favs)
	return favs, nil
}

func (s *Store) readDarkMode(ctx context.Context, q querier) (bool, error) {
	raw, ok, err := get(ctx, q, KeyDarkMode)
	if err != nil || !ok {
		return false, err
	}
	dark, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("decode dark mode: %w", err)
	}
	return dark, nil
}

// toggle returns a new sorted slice with id added or removed.
func toggle(favs []string, id string) []string {
	out := make([]string, 0, len(favs)+1)
	found := false
	for _, f := range favs {
		if f == id {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, id)
		sort.Strings(out)
	}
	return out
}
