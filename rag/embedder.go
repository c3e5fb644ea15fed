// Package rag holds the embedding capability and the content-identity
// helpers (hashing, deduplication, deterministic point IDs) shared by the
// retrieval and ingestion paths.
package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmbeddingBackend distinguishes an unreachable or misbehaving embedding
// service from other failures.
var ErrEmbeddingBackend = errors.New("embedding backend error")

// Embedder turns texts into L2-normalized vectors of a stable dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension(ctx context.Context) (int, error)
}

// OllamaEmbedder calls an Ollama /api/embeddings endpoint, one request per
// text. The vector dimension is probed once on first use.
type OllamaEmbedder struct {
	http  *resty.Client
	model string

	dimOnce sync.Once
	dim     int
	dimErr  error
}

// NewOllamaEmbedder builds an embedder against the given base URL.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(60 * time.Second),
		model: model,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns one normalized vector per input text, in input order.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		var out embedResponse
		resp, err := e.http.R().
			SetContext(ctx).
			SetBody(embedRequest{Model: e.model, Prompt: text}).
			SetResult(&out).
			Post("/api/embeddings")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingBackend, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: status %d", ErrEmbeddingBackend, resp.StatusCode())
		}
		if len(out.Embedding) == 0 {
			return nil, fmt.Errorf("%w: invalid embedding payload", ErrEmbeddingBackend)
		}
		vectors = append(vectors, normalize(out.Embedding))
	}
	return vectors, nil
}

// Dimension probes the backing model's vector size. The result is cached
// for the process lifetime.
func (e *OllamaEmbedder) Dimension(ctx context.Context) (int, error) {
	e.dimOnce.Do(func() {
		probe, err := e.Embed(ctx, []string{"dimension probe"})
		if err != nil {
			e.dimErr = err
			return
		}
		if len(probe) == 0 || len(probe[0]) == 0 {
			e.dimErr = fmt.Errorf("%w: empty dimension probe", ErrEmbeddingBackend)
			return
		}
		e.dim = len(probe[0])
	})
	return e.dim, e.dimErr
}

// normalize scales a vector to unit L2 norm; zero vectors pass through.
func normalize(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vector
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}
