package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"contractlens-backend/ingest"
	"contractlens-backend/models"
	"contractlens-backend/report"
	"contractlens-backend/service"
	"contractlens-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const maxUploadBytes = 8 << 20

// AnalyzeHandler handles HTTP requests for contract analysis
type AnalyzeHandler struct {
	analysisService *service.AnalysisService
	ingestService   *service.IngestService
	store           storage.Storage
	logger          hclog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysisService *service.AnalysisService, ingestService *service.IngestService, store storage.Storage, logger hclog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
		ingestService:   ingestService,
		store:           store,
		logger:          logger,
	}
}

// Analyze handles POST /api/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
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
	h.runAnalysis(c, req)
}

// AnalyzeFile handles POST /api/doc/analyze-file (multipart upload)
func (h *AnalyzeHandler) AnalyzeFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "multipart field 'file' is required",
			},
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNREADABLE_FILE",
				"message": err.Error(),
			},
		})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNREADABLE_FILE",
				"message": err.Error(),
			},
		})
		return
	}

	text := string(data)
	if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".html") || strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".htm") {
		text, _ = ingest.HTMLToText(text)
	}

	// keep the original upload alongside the analysis
	if h.store != nil {
		key := storage.UploadKey(uuid.New(), fileHeader.Filename)
		if _, err := h.store.Save(c.Request.Context(), key, storage.ContentTypeFor(key), strings.NewReader(string(data))); err != nil {
			h.logger.Warn("failed to persist uploaded contract", "error", err)
		}
	}

	req := models.AnalyzeRequest{
		ContractText: text,
		Jurisdiction: c.PostForm("jurisdiction"),
		ContractType: c.PostForm("contract_type"),
		Model:        c.PostForm("model"),
	}
	h.runAnalysis(c, req)
}

// AnalyzeURLRequest is the request body for analyzing a remote document
type AnalyzeURLRequest struct {
	URL          string `json:"url" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
	ContractType string `json:"contract_type"`
	Model        string `json:"model"`
	MaxTokens    int    `json:"max_tokens"`
}

// AnalyzeURL handles POST /api/doc/analyze-url
func (h *AnalyzeHandler) AnalyzeURL(c *gin.Context) {
	var req AnalyzeURLRequest
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

	text, _, err := h.ingestService.FetchDocument(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FETCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	h.runAnalysis(c, models.AnalyzeRequest{
		ContractText: text,
		Jurisdiction: req.Jurisdiction,
		ContractType: req.ContractType,
		Model:        req.Model,
		MaxTokens:    req.MaxTokens,
	})
}

// GetReport handles GET /api/reports/*key
func (h *AnalyzeHandler) GetReport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_KEY",
				"message": "invalid report key",
			},
		})
		return
	}

	rc, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPORT_NOT_FOUND",
				"message": err.Error(),
			},
		})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", storage.ContentTypeFor(key))
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}

// runAnalysis executes the pipeline and writes the response. With
// ?report=html the rendered report is persisted and its key returned
// alongside the result.
func (h *AnalyzeHandler) runAnalysis(c *gin.Context, req models.AnalyzeRequest) {
	started := time.Now()
	result, err := h.analysisService.Analyze(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContract):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_CONTRACT",
					"message": "contract text is empty",
				},
			})
		case errors.Is(err, service.ErrGenerationFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_FAILED",
					"message": "analysis backend unavailable",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ANALYSIS_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	h.logger.Info("analysis complete",
		"score", result.ScoreTotal,
		"business_score", result.BusinessScoreTotal,
		"sources", len(result.Sources),
		"duration", time.Since(started).Round(time.Millisecond))

	reportKey := ""
	if c.Query("report") == "html" && h.store != nil {
		key, err := report.Save(c.Request.Context(), h.store, result, report.Meta{
			ContractType: req.ContractType,
			Jurisdiction: result.Jurisdiction,
			Model:        req.Model,
		})
		if err != nil {
			h.logger.Warn("failed to persist report", "error", err)
		} else {
			reportKey = key
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"result":     result,
		"report_key": reportKey,
	})
}
