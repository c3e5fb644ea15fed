// Package rerank re-orders retrieved candidates with a cross-encoder
// relevance model. Re-ranking is an optimization, never a hard dependency:
// when disabled, unnecessary, or unreachable it degrades to a passthrough
// of the first keep candidates in their original order.
package rerank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"contractlens-backend/models"
)

// PairScorer scores (query, text) pairs; one score per text, input order.
type PairScorer interface {
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)
}

// HTTPScorer calls a remote cross-encoder service (bge-reranker style).
type HTTPScorer struct {
	http  *resty.Client
	model string
	batch int
}

// NewHTTPScorer builds a scorer against the given base URL. batch bounds
// per-request pair count; it affects throughput only, never output.
func NewHTTPScorer(baseURL, model string, batch int) *HTTPScorer {
	if batch <= 0 {
		batch = 16
	}
	return &HTTPScorer{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		model: model,
		batch: batch,
	}
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// ScorePairs scores all texts against the query, batching requests.
func (s *HTTPScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	scores := make([]float64, 0, len(texts))
	for start := 0; start < len(texts); start += s.batch {
		end := start + s.batch
		if end > len(texts) {
			end = len(texts)
		}
		var out rerankResponse
		resp, err := s.http.R().
			SetContext(ctx).
			SetBody(rerankRequest{Model: s.model, Query: query, Texts: texts[start:end]}).
			SetResult(&out).
			Post("/rerank")
		if err != nil {
			return nil, fmt.Errorf("rerank request: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("rerank: status %d", resp.StatusCode())
		}
		if len(out.Scores) != end-start {
			return nil, fmt.Errorf("rerank: got %d scores for %d texts", len(out.Scores), end-start)
		}
		scores = append(scores, out.Scores...)
	}
	return scores, nil
}

// Reranker applies cross-encoder re-ranking to retrieved sources.
type Reranker struct {
	scorer   PairScorer
	enabled  bool
	truncate int
	logger   hclog.Logger
}

// New creates a reranker. A nil scorer behaves like a disabled one.
func New(scorer PairScorer, enabled bool, truncate int, logger hclog.Logger) *Reranker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if truncate <= 0 {
		truncate = 4000
	}
	return &Reranker{scorer: scorer, enabled: enabled, truncate: truncate, logger: logger.Named("rerank")}
}

// Apply re-scores sources against the query and keeps the top keep.
// Disabled, trivial, or failing cases return sources[:keep] unchanged.
func (r *Reranker) Apply(ctx context.Context, query string, sources []models.SourceItem, keep int) []models.SourceItem {
	if keep > len(sources) {
		keep = len(sources)
	}
	if keep < 0 {
		keep = 0
	}
	if !r.enabled || r.scorer == nil || len(sources) <= keep {
		return sources[:keep]
	}

	texts := make([]string, len(sources))
	for i, s := range sources {
		text := s.Text
		if len(text) > r.truncate {
			text = text[:r.truncate]
		}
		texts[i] = text
	}

	scores, err := r.scorer.ScorePairs(ctx, query, texts)
	if err != nil || len(scores) != len(sources) {
		r.logger.Warn("scoring failed, keeping retrieval order", "error", err)
		return sources[:keep]
	}

	type scored struct {
		item  models.SourceItem
		score float64
	}
	ranked := make([]scored, len(sources))
	for i, s := range sources {
		ranked[i] = scored{item: s, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]models.SourceItem, keep)
	for i := 0; i < keep; i++ {
		out[i] = ranked[i].item
	}
	return out
}
