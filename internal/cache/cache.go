// Package cache is the device-local fallback store. Lists flagged offline
// never touch the remote store; their documents live here, keyed by list
// ID, serialized as canonical JSON.
package cache

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/sanitize"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens the SQLite cache at the given path and runs migrations.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Cache reads and writes cached list documents.
type Cache struct {
	db *sql.DB
}

func New(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Get returns the cached document for a list ID, or nil if absent.
func (c *Cache) Get(listID string) (*model.ListDocument, error) {
	var payload []byte
	err := c.db.QueryRow(`SELECT document FROM documents WHERE list_id = ?`, listID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached document: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		// Corrupt cache rows are treated like any other malformed input.
		doc := sanitize.Document(nil)
		return &doc, nil
	}
	doc := sanitize.Document(raw)
	return &doc, nil
}

// Put stores the document for a list ID, replacing any previous copy.
func (c *Cache) Put(listID string, doc model.ListDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT INTO documents (list_id, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(list_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		listID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put cached document: %w", err)
	}
	return nil
}

// Delete removes the cached document for a list ID.
func (c *Cache) Delete(listID string) error {
	if _, err := c.db.Exec(`DELETE FROM documents WHERE list_id = ?`, listID); err != nil {
		return fmt.Errorf("delete cached document: %w", err)
	}
	return nil
}

// All returns every cached document keyed by list ID. Used by the backup
// snapshot.
func (c *Cache) All() (map[string]model.ListDocument, error) {
	rows, err := c.db.Query(`SELECT list_id, document FROM documents ORDER BY list_id`)
	if err != nil {
		return nil, fmt.Errorf("list cached documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]model.ListDocument)
	for rows.Next() {
		var listID string
		var payload []byte
		if err := rows.Scan(&listID, &payload); err != nil {
			return nil, fmt.Errorf("scan cached document: %w", err)
		}
		var raw map[string]any
		if err := json.Unmarshal(payload, &raw); err != nil {
			continue
		}
		docs[listID] = sanitize.Document(raw)
	}
	return docs, rows.Err()
}
