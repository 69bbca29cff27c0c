package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lumeris-ai/searchfuse/internal/db"
)

// Store is a PostgreSQL document store. Keyword ranking uses ts_rank_cd over
// a tsvector expression; similarity ranking uses pgvector cosine distance
// when the vector extension is installed.
//
// The store assumes the documents table exists:
//
//	CREATE TABLE documents (
//	    id         TEXT PRIMARY KEY,
//	    title      TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    embedding  vector(1536),
//	    metadata   JSONB DEFAULT '{}',
//	    created_at TIMESTAMPTZ DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ DEFAULT NOW()
//	);
//
// Schema bootstrap lives with the deployment, not here.
type Store struct {
	sqlDB *sql.DB

	probeMu   sync.Mutex
	probed    bool
	hasVector bool
}

// Config holds PostgreSQL connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewStore opens a connection pool. The database is not contacted until
// Ping or WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// WaitForReady pings until the database responds or the timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if lastErr = s.sqlDB.PingContext(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready: %w", lastErr)
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// SearchBM25 runs a keyword-ranked query via PostgreSQL full-text search.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) ([]db.Row, error) {
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, title, content, metadata,
		       ts_rank_cd(to_tsvector('english', title || ' ' || content),
		                  websearch_to_tsquery('english', $1)) AS score
		FROM documents
		WHERE to_tsvector('english', title || ' ' || content)
		      @@ websearch_to_tsquery('english', $1)
		ORDER BY score DESC
		LIMIT $2`,
		q.Query, q.Limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchBM25, Err: err}
	}
	defer rows.Close()

	return scanRows(rows, db.OpSearchBM25)
}

// SearchVector runs a cosine-similarity query via pgvector.
// Score is 1 - cosine distance, so higher is closer.
func (s *Store) SearchVector(ctx context.Context, q *db.VectorQuery) ([]db.Row, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, title, content, metadata,
		       1 - (embedding <=> $1) AS score
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		formatVector(q.Vector), q.Limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchVector, Err: err}
	}
	defer rows.Close()

	return scanRows(rows, db.OpSearchVector)
}

// Insert persists a new document. Timestamps are assigned by column defaults.
func (s *Store) Insert(ctx context.Context, doc *db.InsertDoc) (string, error) {
	metadata, err := json.Marshal(orEmptyMap(doc.Metadata))
	if err != nil {
		return "", &db.Error{Op: db.OpInsert, Err: fmt.Errorf("marshal metadata: %w", err)}
	}

	var embedding any
	if len(doc.Vector) > 0 {
		embedding = formatVector(doc.Vector)
	}

	var id string
	err = s.sqlDB.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		doc.ID, doc.Title, doc.Content, embedding, metadata,
	).Scan(&id)
	if err != nil {
		return "", &db.Error{Op: db.OpInsert, Err: err}
	}

	return id, nil
}

// SupportsVector probes pg_type for the pgvector extension type. A positive
// or negative answer is cached; probe errors are reported as unsupported and
// retried on the next call.
func (s *Store) SupportsVector(ctx context.Context) bool {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if s.probed {
		return s.hasVector
	}

	var exists bool
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vector')`,
	).Scan(&exists)
	if err != nil {
		return false
	}

	s.probed = true
	s.hasVector = exists
	return exists
}

func scanRows(rows *sql.Rows, op string) ([]db.Row, error) {
	var out []db.Row
	for rows.Next() {
		var r db.Row
		var metadata []byte
		if err := rows.Scan(&r.ID, &r.Title, &r.Content, &metadata, &r.Score); err != nil {
			return nil, &db.Error{Op: op, Err: fmt.Errorf("scan row: %w", err)}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
				return nil, &db.Error{Op: op, Err: fmt.Errorf("unmarshal metadata: %w", err)}
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return out, nil
}

// formatVector renders a float32 slice in pgvector text format: [1,2,3].
func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
