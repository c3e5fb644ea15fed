// ingest-corpus loads a statute corpus from JSONL files into the vector
// index. Each line is one models.IngestItem; files are processed in
// batches so embedding calls stay bounded.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"contractlens-backend/config"
	"contractlens-backend/models"
	"contractlens-backend/rag"
	"contractlens-backend/repository"
	"contractlens-backend/service"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const batchSize = 64

func main() {
	dir := flag.String("dir", "./corpus", "directory of .jsonl corpus files")
	jurisdiction := flag.String("jurisdiction", "", "override jurisdiction for all items")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger := hclog.New(&hclog.LoggerOptions{Name: "ingest-corpus"})

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repo := repository.NewStatuteChunkRepository(pool, cfg.VectorDim)
	embedder := rag.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)

	svc := service.NewIngestService(
		service.IngestWithEmbedder(embedder),
		service.IngestWithRepository(repo),
		service.IngestWithLogger(logger),
	)

	files, err := filepath.Glob(filepath.Join(*dir, "*.jsonl"))
	if err != nil || len(files) == 0 {
		log.Fatalf("No .jsonl files found in %s", *dir)
	}

	total := 0
	for _, path := range files {
		n, err := ingestFile(svc, path, *jurisdiction, cfg.DefaultJurisdiction)
		if err != nil {
			log.Printf("Warning: %s: %v", path, err)
			continue
		}
		log.Printf("✓ %s: %d chunks", filepath.Base(path), n)
		total += n
	}
	log.Printf("Done: %d chunks ingested from %d files", total, len(files))
}

func ingestFile(svc *service.IngestService, path, jurisdiction, defaultJurisdiction string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	ctx := context.Background()
	total := 0
	var batch []models.IngestItem

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := svc.IngestItems(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var item models.IngestItem
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Printf("Warning: %s:%d: bad JSON: %v", filepath.Base(path), line, err)
			continue
		}
		if jurisdiction != "" {
			item.Jurisdiction = jurisdiction
		}
		if item.Jurisdiction == "" {
			item.Jurisdiction = defaultJurisdiction
		}
		batch = append(batch, item)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, err
	}
	return total, flush()
}
