package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/4everinbeta/ragchat/internal/models"
)

// SQLiteStore keeps a knowledge base in a single SQLite file. It implements Provider.
type SQLiteStore struct {
	db *sql.DB
}

// Stats summarises the stored knowledge base.
type Stats struct {
	Documents int64     `json:"documents"`
	Sources   int64     `json:"sources"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	BuiltAt   time.Time `json:"built_at"`
}

// NewSQLiteStore opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kb_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		source TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored knowledge base with kb in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, kb *KnowledgeBase) error {
	if !kb.Aligned() {
		return fmt.Errorf("cannot save knowledge base: %d documents but %d embeddings",
			len(kb.Documents), len(kb.Embeddings))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	meta := map[string]string{
		"model":     kb.Model,
		"dimension": strconv.Itoa(kb.Dimension),
		"built_at":  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kb_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (position, id, source, chunk_index, text, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, doc := range kb.Documents {
		if _, err := stmt.ExecContext(ctx, i, doc.ID, doc.Source, doc.ChunkIndex, doc.Text,
			encodeVector(kb.Embeddings[i])); err != nil {
			return fmt.Errorf("failed to insert %s: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

// Load implements Provider. It returns ErrNotFound if nothing has been saved.
func (s *SQLiteStore) Load(ctx context.Context) (*KnowledgeBase, error) {
	meta, err := s.meta(ctx)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, ErrNotFound
	}

	kb := &KnowledgeBase{Model: meta["model"]}
	kb.Dimension, _ = strconv.Atoi(meta["dimension"])

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, chunk_index, text, embedding FROM chunks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var doc models.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.ChunkIndex, &doc.Text, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.ID, err)
		}
		kb.Documents = append(kb.Documents, doc)
		kb.Embeddings = append(kb.Embeddings, vec)
	}
	return kb, rows.Err()
}

// Stats returns counts and build metadata for the stored knowledge base.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	meta, err := s.meta(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Model: meta["model"]}
	st.Dimension, _ = strconv.Atoi(meta["dimension"])
	if ts, ok := meta["built_at"]; ok {
		st.BuiltAt, _ = time.Parse(time.RFC3339, ts)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source) FROM chunks`).Scan(&st.Documents, &st.Sources)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kb_meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeVector(v models.Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) (models.Vector, error) {
	if len(buf)%4 != 0 {
		return nil, errors.New("embedding blob length is not a multiple of 4")
	}
	v := make(models.Vector, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
