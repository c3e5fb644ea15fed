package main

import (
	"context"
	"os"

	"contractlens-backend/config"
	"contractlens-backend/handlers"
	"contractlens-backend/llm"
	"contractlens-backend/rag"
	"contractlens-backend/repository"
	"contractlens-backend/rerank"
	"contractlens-backend/rubric"
	"contractlens-backend/service"
	"contractlens-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../../.env")
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "contractlens",
		Level: hclog.LevelFromString(getenvDefault("LOG_LEVEL", "info")),
	})

	cfg := config.Load()

	db, err := initPostgres(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	artifactStore, err := storage.NewFromEnv()
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	chunkRepo := repository.NewStatuteChunkRepository(db, cfg.VectorDim)
	embedder := rag.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)

	chat, err := initChatBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM backend", "error", err)
		os.Exit(1)
	}

	legalRubric := rubric.New(cfg.LegalSectionsPath, logger.Named("rubric.legal"))
	businessRubric := rubric.New(cfg.BusinessSectionsPath, logger.Named("rubric.business"))

	var scorer rerank.PairScorer
	if cfg.RerankEnable && cfg.RerankURL != "" {
		scorer = rerank.NewHTTPScorer(cfg.RerankURL, cfg.RerankModel, cfg.RerankBatch)
	}
	reranker := rerank.New(scorer, cfg.RerankEnable, cfg.RerankTruncate, logger.Named("rerank"))

	retrievalService := service.NewRetrievalService(
		service.RetrievalWithEmbedder(embedder),
		service.RetrievalWithRepository(chunkRepo),
		service.RetrievalWithLogger(logger.Named("retrieval")),
	)

	analysisService := service.NewAnalysisService(
		service.AnalysisWithChatClient(chat),
		service.AnalysisWithRetrieval(retrievalService),
		service.AnalysisWithReranker(reranker),
		service.AnalysisWithLegalRubric(legalRubric),
		service.AnalysisWithBusinessRubric(businessRubric),
		service.AnalysisWithSettings(cfg),
		service.AnalysisWithLogger(logger.Named("analysis")),
	)

	ingestService := service.NewIngestService(
		service.IngestWithEmbedder(embedder),
		service.IngestWithRepository(chunkRepo),
		service.IngestWithLogger(logger.Named("ingest")),
	)

	analyzeHandler := handlers.NewAnalyzeHandler(analysisService, ingestService, artifactStore, logger.Named("http"))
	ingestHandler := handlers.NewIngestHandler(ingestService, logger.Named("http"))
	healthHandler := handlers.NewHealthHandler(chat, chunkRepo, cfg.RerankEnable)

	r := gin.Default()

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		api.POST("/analyze", analyzeHandler.Analyze)
		api.POST("/doc/analyze-file", analyzeHandler.AnalyzeFile)
		api.POST("/doc/analyze-url", analyzeHandler.AnalyzeURL)
		api.GET("/reports/*key", analyzeHandler.GetReport)

		api.POST("/rag/ingest", ingestHandler.Ingest)
		api.POST("/rag/fetch-ingest", ingestHandler.FetchIngest)
		api.POST("/rag/fetch-ingest-batch", ingestHandler.FetchIngestBatch)
	}

	logger.Info("server starting", "port", cfg.Port, "llm_backend", cfg.LLMBackend)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func initPostgres(cfg *config.Settings, logger hclog.Logger) (*pgxpool.Pool, error) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	// Needs superuser on some installs, so failure is non-fatal
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warn("could not enable pgvector extension", "error", err)
	}

	logger.Info("Postgres connection established")
	return pool, nil
}

func initChatBackend(cfg *config.Settings, logger hclog.Logger) (llm.ChatClient, error) {
	switch cfg.LLMBackend {
	case config.BackendGemini:
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			logger.Warn("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
		if err != nil {
			return nil, err
		}
		return llm.NewGeminiClient(client, cfg.GeminiModel), nil
	default:
		return llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, logger.Named("ollama")), nil
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
