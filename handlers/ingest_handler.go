package handlers

import (
	"errors"
	"net/http"

	"contractlens-backend/models"
	"contractlens-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// IngestHandler handles HTTP requests for corpus ingestion
type IngestHandler struct {
	ingestService *service.IngestService
	logger        hclog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *service.IngestService, logger hclog.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// Ingest handles POST /api/rag/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var payload models.IngestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	count, err := h.ingestService.IngestItems(c.Request.Context(), payload.Items)
	if err != nil {
		status := http.StatusInternalServerError
		code := "INGEST_FAILED"
		if errors.Is(err, service.ErrNoItems) {
			status = http.StatusBadRequest
			code = "NO_ITEMS"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chunks":  count,
	})
}

// FetchIngestRequest is the request body for ingesting a remote document
type FetchIngestRequest struct {
	URL          string `json:"url" binding:"required"`
	ActID        string `json:"act_id"`
	ActTitle     string `json:"act_title"`
	Jurisdiction string `json:"jurisdiction"`
	RevisionDate string `json:"revision_date"`
}

// FetchIngest handles POST /api/rag/fetch-ingest
func (h *IngestHandler) FetchIngest(c *gin.Context) {
	var req FetchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	count, err := h.ingestService.FetchIngestURL(c.Request.Context(), req.URL, models.IngestItem{
		ActID:        req.ActID,
		ActTitle:     req.ActTitle,
		Jurisdiction: req.Jurisdiction,
		RevisionDate: req.RevisionDate,
	})
	if err != nil {
		status := http.StatusBadGateway
		code := "FETCH_FAILED"
		if errors.Is(err, service.ErrDocumentEmpty) {
			status = http.StatusUnprocessableEntity
			code = "DOCUMENT_EMPTY"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chunks":  count,
	})
}

// FetchIngestBatchRequest is the request body for batch ingestion
type FetchIngestBatchRequest struct {
	URLs         []string `json:"urls" binding:"required"`
	ActID        string   `json:"act_id"`
	ActTitle     string   `json:"act_title"`
	Jurisdiction string   `json:"jurisdiction"`
	RevisionDate string   `json:"revision_date"`
}

// FetchIngestBatch handles POST /api/rag/fetch-ingest-batch
func (h *IngestHandler) FetchIngestBatch(c *gin.Context) {
	var req FetchIngestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}
	if len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_URLS",
				"message": "urls must not be empty",
			},
		})
		return
	}

	results := h.ingestService.FetchIngestBatch(c.Request.Context(), req.URLs, models.IngestItem{
		ActID:        req.ActID,
		ActTitle:     req.ActTitle,
		Jurisdiction: req.Jurisdiction,
		RevisionDate: req.RevisionDate,
	})

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": failed < len(results),
		"results": results,
		"failed":  failed,
	})
}
