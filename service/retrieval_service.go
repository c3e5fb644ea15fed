package service

import (
	"context"

	"contractlens-backend/models"
	"contractlens-backend/rag"
	"contractlens-backend/repository"

	"github.com/hashicorp/go-hclog"
)

// RetrievalService turns a query into statute sources via embedding search.
// Every failure degrades to an empty result; retrieval never fails an
// analysis.
type RetrievalService struct {
	embedder rag.Embedder
	repo     *repository.StatuteChunkRepository
	logger   hclog.Logger
}

// RetrievalServiceOption is a functional option for RetrievalService
type RetrievalServiceOption func(*RetrievalService)

// RetrievalWithEmbedder sets the embedding backend
func RetrievalWithEmbedder(e rag.Embedder) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.embedder = e
	}
}

// RetrievalWithRepository sets the statute chunk repository
func RetrievalWithRepository(repo *repository.StatuteChunkRepository) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.repo = repo
	}
}

// RetrievalWithLogger sets the logger
func RetrievalWithLogger(logger hclog.Logger) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.logger = logger
	}
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(opts ...RetrievalServiceOption) *RetrievalService {
	s := &RetrievalService{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds the query and returns the nearest statute chunks for the
// jurisdiction, ordered by similarity. Returns nil on any backend failure.
func (s *RetrievalService) Search(ctx context.Context, query, jurisdiction string, limit int) []models.SourceItem {
	if s.embedder == nil || s.repo == nil || limit <= 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		s.logger.Warn("retrieval: embedding failed, continuing without context", "error", err)
		return nil
	}

	records, err := s.repo.Search(ctx, vectors[0], jurisdiction, limit)
	if err != nil {
		s.logger.Warn("retrieval: vector search failed, continuing without context", "error", err)
		return nil
	}

	sources := make([]models.SourceItem, 0, len(records))
	for _, rec := range records {
		hash := rec.SourceHash
		if hash == "" {
			hash = rag.TextHash(rec.Text)
		}
		sources = append(sources, models.SourceItem{
			ActTitle:     rec.ActTitle,
			Article:      rec.Article,
			Part:         rec.Part,
			Point:        rec.Point,
			RevisionDate: rec.RevisionDate,
			Jurisdiction: rec.Jurisdiction,
			Text:         rec.Text,
			LocalRef:     rec.LocalRef,
			SourceHash:   hash,
		})
	}
	return sources
}
