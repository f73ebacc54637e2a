package repository

import (
	"context"
	"fmt"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChunkRepository reads the knowledge base's backing table. The table is
// owned by the managed ingestion pipeline; this side only inspects it for
// diagnostics.
type ChunkRepository interface {
	SearchChunks(ctx context.Context, term string, limit int) ([]entity.Chunk, error)
	SampleChunks(ctx context.Context, limit int) ([]entity.Chunk, error)
}

var _ ChunkRepository = &ChunkPostgres{}

// ChunkPostgres implements ChunkRepository against the Aurora store behind
// the knowledge base.
type ChunkPostgres struct {
	db *pgxpool.Pool
}

func NewChunkPostgres(db *pgxpool.Pool) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

// SearchChunks returns rows whose chunk text contains term,
// case-insensitively.
func (r *ChunkPostgres) SearchChunks(ctx context.Context, term string, limit int) ([]entity.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, chunks, COALESCE(metadata::text, '')
		 FROM bedrock_integration.bedrock_kb
		 WHERE chunks ILIKE '%' || $1 || '%'
		 ORDER BY id
		 LIMIT $2`,
		term, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// SampleChunks returns the first rows of the table, used to eyeball what the
// ingestion pipeline actually stored.
func (r *ChunkPostgres) SampleChunks(ctx context.Context, limit int) ([]entity.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, chunks, COALESCE(metadata::text, '')
		 FROM bedrock_integration.bedrock_kb
		 ORDER BY id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sample chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanChunks(rows pgxRows) ([]entity.Chunk, error) {
	var chunks []entity.Chunk
	for rows.Next() {
		var c entity.Chunk
		if err := rows.Scan(&c.ID, &c.Chunks, &c.Metadata); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return chunks, nil
}
