package main

import (
	"context"
	"fmt"
	"log"

	"contractlens-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS statute_chunks CASCADE")
	if err != nil {
		log.Fatalf("Failed to drop table: %v", err)
	}
	log.Println("✓ Dropped existing statute_chunks table (if any)")

	schemaSQL := fmt.Sprintf(`
CREATE TABLE statute_chunks (
    -- Deterministic id derived from the chunk's local reference
    id BIGINT PRIMARY KEY,

    -- Act identification
    act_id VARCHAR(100),
    act_title TEXT NOT NULL,
    article VARCHAR(50),
    part VARCHAR(50),
    point VARCHAR(50),
    revision_date VARCHAR(20),
    jurisdiction VARCHAR(10) NOT NULL,

    -- Content
    chunk_text TEXT NOT NULL,
    local_ref TEXT,
    source_hash VARCHAR(32) NOT NULL,

    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);`, cfg.VectorDim)

	_, err = pool.Exec(ctx, schemaSQL)
	if err != nil {
		log.Fatalf("Failed to create statute_chunks table: %v", err)
	}
	log.Println("✓ Created statute_chunks table")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (ivfflat)",
			sql: `CREATE INDEX idx_statute_embedding ON statute_chunks
USING ivfflat (embedding vector_cosine_ops)
WITH (lists = 100);`,
		},
		{
			name: "Jurisdiction filtering",
			sql:  "CREATE INDEX idx_statute_jurisdiction ON statute_chunks(jurisdiction);",
		},
		{
			name: "Act lookup",
			sql:  "CREATE INDEX idx_statute_act ON statute_chunks(act_id) WHERE act_id IS NOT NULL;",
		},
		{
			name: "Content dedup",
			sql:  "CREATE INDEX idx_statute_source_hash ON statute_chunks(source_hash);",
		},
	}

	for _, idx := range indexes {
		_, err = pool.Exec(ctx, idx.sql)
		if err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Printf("   Table: statute_chunks (embedding vector(%d))\n", cfg.VectorDim)
}
