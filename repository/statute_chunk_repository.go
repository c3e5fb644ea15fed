package repository

import (
	"context"
	"fmt"
	"strings"

	"contractlens-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatuteChunkRepository handles vector-store operations on the
// statute_chunks table (Postgres + pgvector).
type StatuteChunkRepository struct {
	db  *pgxpool.Pool
	dim int
}

// NewStatuteChunkRepository creates a repository expecting embeddings of
// the given dimension.
func NewStatuteChunkRepository(db *pgxpool.Pool, dim int) *StatuteChunkRepository {
	return &StatuteChunkRepository{db: db, dim: dim}
}

// ChunkRecord is one statutory excerpt as stored in the vector index.
type ChunkRecord struct {
	ID           int64
	ActID        string
	ActTitle     string
	Article      string
	Part         string
	Point        string
	RevisionDate string
	Jurisdiction string
	Text         string
	LocalRef     string
	SourceHash   string
	Embedding    []float64
}

// formatVector renders an embedding as a pgvector literal.
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns the limit nearest chunks to the query embedding within a
// jurisdiction, nearest first. Dimension mismatches are reported as errors;
// the caller decides whether they are fatal (they are not on the read path).
func (r *StatuteChunkRepository) Search(
	ctx context.Context,
	embedding []float64,
	jurisdiction string,
	limit int,
) ([]models.SourceItem, error) {
	if len(embedding) != r.dim {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", r.dim, len(embedding))
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			act_title,
			COALESCE(article, ''),
			COALESCE(part, ''),
			COALESCE(point, ''),
			COALESCE(revision_date, ''),
			jurisdiction,
			chunk_text,
			COALESCE(local_ref, ''),
			COALESCE(source_hash, '')
		FROM statute_chunks
		WHERE jurisdiction = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`,
		formatVector(embedding), jurisdiction, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query statute chunks: %w", err)
	}
	defer rows.Close()

	var items []models.SourceItem
	for rows.Next() {
		var item models.SourceItem
		err := rows.Scan(
			&item.ActTitle,
			&item.Article,
			&item.Part,
			&item.Point,
			&item.RevisionDate,
			&item.Jurisdiction,
			&item.Text,
			&item.LocalRef,
			&item.SourceHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statute chunk: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statute chunks: %w", err)
	}
	return items, nil
}

// Upsert writes chunks into the index. IDs are deterministic, so re-ingesting
// the same logical chunk overwrites the existing row. A dimension mismatch
// is fatal for the whole call: silently writing wrong-sized vectors into an
// established collection would poison every later search.
func (r *StatuteChunkRepository) Upsert(ctx context.Context, records []ChunkRecord) error {
	for _, rec := range records {
		if len(rec.Embedding) != r.dim {
			return fmt.Errorf("chunk %q: embedding must be %d dimensions, got %d",
				rec.LocalRef, r.dim, len(rec.Embedding))
		}
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO statute_chunks
				(id, act_id, act_title, article, part, point, revision_date,
				 jurisdiction, chunk_text, local_ref, source_hash, embedding)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
				NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11, $12::vector)
			ON CONFLICT (id) DO UPDATE SET
				act_id = EXCLUDED.act_id,
				act_title = EXCLUDED.act_title,
				article = EXCLUDED.article,
				part = EXCLUDED.part,
				point = EXCLUDED.point,
				revision_date = EXCLUDED.revision_date,
				jurisdiction = EXCLUDED.jurisdiction,
				chunk_text = EXCLUDED.chunk_text,
				local_ref = EXCLUDED.local_ref,
				source_hash = EXCLUDED.source_hash,
				embedding = EXCLUDED.embedding`,
			rec.ID, rec.ActID, rec.ActTitle, rec.Article, rec.Part, rec.Point,
			rec.RevisionDate, rec.Jurisdiction, rec.Text, rec.LocalRef,
			rec.SourceHash, formatVector(rec.Embedding))
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert statute chunk: %w", err)
		}
	}
	return nil
}

// Count returns the number of indexed chunks; used by health reporting.
func (r *StatuteChunkRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM statute_chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count statute chunks: %w", err)
	}
	return n, nil
}
