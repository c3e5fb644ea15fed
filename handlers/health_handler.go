package handlers

import (
	"context"
	"net/http"
	"time"

	"contractlens-backend/llm"
	"contractlens-backend/repository"

	"github.com/gin-gonic/gin"
)

// pinger is implemented by chat backends that support a liveness probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	chat          llm.ChatClient
	chunkRepo     *repository.StatuteChunkRepository
	rerankEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(chat llm.ChatClient, chunkRepo *repository.StatuteChunkRepository, rerankEnabled bool) *HealthHandler {
	return &HealthHandler{
		chat:          chat,
		chunkRepo:     chunkRepo,
		rerankEnabled: rerankEnabled,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	llmOK := true
	if p, ok := h.chat.(pinger); ok {
		llmOK = p.Ping(ctx) == nil
	}

	chunks := int64(-1)
	dbOK := false
	if h.chunkRepo != nil {
		if n, err := h.chunkRepo.Count(ctx); err == nil {
			chunks = n
			dbOK = true
		}
	}

	status := http.StatusOK
	if !llmOK || !dbOK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":         statusWord(llmOK && dbOK),
		"llm":            statusWord(llmOK),
		"database":       statusWord(dbOK),
		"corpus_chunks":  chunks,
		"rerank_enabled": h.rerankEnabled,
	})
}

func statusWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "degraded"
}
