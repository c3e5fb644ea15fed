package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"contractlens-backend/ingest"
	"contractlens-backend/models"
	"contractlens-backend/rag"
	"contractlens-backend/repository"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNoItems       = errors.New("nothing to ingest")
	ErrFetchFailed   = errors.New("failed to fetch document")
	ErrDocumentEmpty = errors.New("fetched document contains no text")
)

const (
	fetchMaxBytes    = 8 << 20 // 8 MiB cap on fetched documents
	fetchTimeout     = 45 * time.Second
	ingestChunkChars = 1400
	ingestOverlap    = 200
	batchParallelism = 4
)

// IngestService writes statute text into the vector index: embeds each
// item, derives a stable point id and upserts. It also fetches remote
// documents and chunks them into items.
type IngestService struct {
	embedder rag.Embedder
	repo     *repository.StatuteChunkRepository
	http     *resty.Client
	logger   hclog.Logger
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithEmbedder sets the embedding backend
func IngestWithEmbedder(e rag.Embedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = e
	}
}

// IngestWithRepository sets the statute chunk repository
func IngestWithRepository(repo *repository.StatuteChunkRepository) IngestServiceOption {
	return func(s *IngestService) {
		s.repo = repo
	}
}

// IngestWithLogger sets the logger
func IngestWithLogger(logger hclog.Logger) IngestServiceOption {
	return func(s *IngestService) {
		s.logger = logger
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{
		http:   resty.New().SetTimeout(fetchTimeout),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestItems embeds and upserts the given items. Returns the number of
// chunks written.
func (s *IngestService) IngestItems(ctx context.Context, items []models.IngestItem) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(items) {
		return 0, fmt.Errorf("embedding returned %d vectors for %d items", len(vectors), len(items))
	}

	records := make([]repository.ChunkRecord, len(items))
	for i, it := range items {
		ref := it.LocalRef
		if ref == "" {
			ref = it.Text
		}
		records[i] = repository.ChunkRecord{
			ID:           rag.DeterministicPointID(ref),
			ActID:        it.ActID,
			ActTitle:     it.ActTitle,
			Article:      it.Article,
			Part:         it.Part,
			Point:        it.Point,
			RevisionDate: it.RevisionDate,
			Jurisdiction: it.Jurisdiction,
			Text:         it.Text,
			LocalRef:     it.LocalRef,
			SourceHash:   rag.TextHash(it.Text),
			Embedding:    vectors[i],
		}
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}
	return len(records), nil
}

// FetchDocument downloads a document and returns its plain text and title.
// HTML is stripped; an https URL that fails is retried once over plain
// http.
func (s *IngestService) FetchDocument(ctx context.Context, url string) (string, string, error) {
	body, err := s.fetch(ctx, url)
	if err != nil && strings.HasPrefix(url, "https://") {
		s.logger.Warn("https fetch failed, retrying over http", "url", url, "error", err)
		body, err = s.fetch(ctx, "http://"+strings.TrimPrefix(url, "https://"))
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	text := body
	title := ""
	if looksLikeHTML(body) {
		text, title = ingest.HTMLToText(body)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", ErrDocumentEmpty
	}
	return text, strings.TrimSpace(title), nil
}

// FetchIngestURL downloads a document, chunks its text and ingests the
// chunks under the given act metadata.
func (s *IngestService) FetchIngestURL(ctx context.Context, url string, meta models.IngestItem) (int, error) {
	text, title, err := s.FetchDocument(ctx, url)
	if err != nil {
		return 0, err
	}
	if meta.ActTitle == "" && title != "" {
		meta.ActTitle = title
	}

	chunks := ingest.SplitIntoChunks(text, ingestChunkChars, ingestOverlap)
	items := make([]models.IngestItem, len(chunks))
	for i, chunk := range chunks {
		it := meta
		it.Text = chunk
		it.LocalRef = fmt.Sprintf("%s#%d", url, i)
		items[i] = it
	}
	return s.IngestItems(ctx, items)
}

// BatchResult reports one URL's outcome in a batch fetch.
type BatchResult struct {
	URL    string `json:"url"`
	Chunks int    `json:"chunks"`
	Error  string `json:"error,omitempty"`
}

// FetchIngestBatch fetches and ingests a set of URLs with bounded
// parallelism. One URL failing does not stop the rest.
func (s *IngestService) FetchIngestBatch(ctx context.Context, urls []string, meta models.IngestItem) []BatchResult {
	sem := semaphore.NewWeighted(batchParallelism)
	results := make([]BatchResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = BatchResult{URL: url, Error: err.Error()}
			continue
		}
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			defer sem.Release(1)
			n, err := s.FetchIngestURL(ctx, url, meta)
			res := BatchResult{URL: url, Chunks: n}
			if err != nil {
				res.Error = err.Error()
			}
			results[i] = res
		}(i, url)
	}
	wg.Wait()
	return results
}

func (s *IngestService) fetch(ctx context.Context, url string) (string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", err
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	data, err := io.ReadAll(io.LimitReader(raw, fetchMaxBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func looksLikeHTML(body string) bool {
	head := strings.ToLower(body)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") || strings.Contains(head, "<body")
}
