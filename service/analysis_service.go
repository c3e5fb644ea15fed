package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contractlens-backend/config"
	"contractlens-backend/ingest"
	"contractlens-backend/llm"
	"contractlens-backend/models"
	"contractlens-backend/rag"
	"contractlens-backend/rerank"
	"contractlens-backend/rubric"
	"contractlens-backend/scoring"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrGenerationFailed = errors.New("failed to generate analysis")
	ErrEmptyContract    = errors.New("contract text is empty")
)

const (
	commentNotFound = "not found"
	maxCommentLen   = 2000

	compactPerSection = 2500
	compactTotal      = 16000
)

// AnalysisService orchestrates the two-track contract analysis: a
// legal-compliance pass grounded on retrieved statutes and a business-risk
// pass on the contract alone, plus a document overview.
type AnalysisService struct {
	chat           llm.ChatClient
	retrieval      *RetrievalService
	reranker       *rerank.Reranker
	legalRubric    *rubric.Rubric
	businessRubric *rubric.Rubric
	settings       *config.Settings
	logger         hclog.Logger
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithChatClient sets the LLM backend
func AnalysisWithChatClient(c llm.ChatClient) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.chat = c
	}
}

// AnalysisWithRetrieval sets the retrieval service
func AnalysisWithRetrieval(r *RetrievalService) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.retrieval = r
	}
}

// AnalysisWithReranker sets the reranker
func AnalysisWithReranker(r *rerank.Reranker) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.reranker = r
	}
}

// AnalysisWithLegalRubric sets the legal-compliance rubric
func AnalysisWithLegalRubric(rb *rubric.Rubric) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.legalRubric = rb
	}
}

// AnalysisWithBusinessRubric sets the business-risk rubric
func AnalysisWithBusinessRubric(rb *rubric.Rubric) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.businessRubric = rb
	}
}

// AnalysisWithSettings sets the runtime settings
func AnalysisWithSettings(cfg *config.Settings) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.settings = cfg
	}
}

// AnalysisWithLogger sets the logger
func AnalysisWithLogger(logger hclog.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.logger = logger
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline for one contract. Retrieval, rerank and
// overview failures degrade with a warning; a transport failure on either
// scoring track is fatal and surfaces as ErrGenerationFailed.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	text := strings.TrimSpace(req.ContractText)
	if text == "" {
		return nil, ErrEmptyContract
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = s.settings.DefaultJurisdiction
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.settings.DefaultMaxTokens
	}
	model := req.Model

	compact := ingest.BuildCompact(ingest.ExtractSections(text), compactPerSection, compactTotal)
	if compact == "" {
		compact = text
		if len(compact) > compactTotal {
			compact = compact[:compactTotal]
		}
	}

	sources := s.retrieveContext(ctx, compact, jurisdiction)

	legal, err := s.runLegalTrack(ctx, compact, req.ContractType, jurisdiction, sources, model, maxTokens)
	if err != nil {
		return nil, err
	}

	business, err := s.runBusinessTrack(ctx, compact, req.ContractType, model, maxTokens)
	if err != nil {
		return nil, err
	}

	overview := s.runOverview(ctx, compact, model, maxTokens)

	lawNarrative := SummarizeTrack(legal, s.legalRubric)
	legal.Summary = lawNarrative.Summary
	businessNarrative := SummarizeTrack(business, s.businessRubric)
	business.Summary = businessNarrative.Summary

	resp := &models.AnalyzeResponse{
		Jurisdiction:      jurisdiction,
		Sources:           sources,
		Overview:          overview,
		LawNarrative:      lawNarrative,
		BusinessNarrative: businessNarrative,
	}
	resp.ApplyLegal(legal)
	resp.ApplyBusiness(business)
	return resp, nil
}

func (s *AnalysisService) retrieveContext(ctx context.Context, query, jurisdiction string) []models.SourceItem {
	if s.retrieval == nil {
		return nil
	}
	sources := s.retrieval.Search(ctx, query, jurisdiction, s.settings.RAGTopK)
	sources = rag.DedupSourcesByHash(sources)
	if s.reranker != nil {
		sources = s.reranker.Apply(ctx, query, sources, s.settings.RerankKeep)
		sources = rag.DedupSourcesByHash(sources)
	}
	return sources
}

func (s *AnalysisService) runLegalTrack(ctx context.Context, compact, contractType, jurisdiction string, sources []models.SourceItem, model string, maxTokens int) (models.TrackReport, error) {
	prompt := buildLegalPrompt(compact, contractType, jurisdiction, sources, s.legalRubric, s.settings.ScoringMode)
	raw, err := s.chat.ChatJSON(ctx, legalSystemPrompt, prompt, model, maxTokens)
	if err != nil {
		s.logger.Error("legal track generation failed", "error", err)
		return models.TrackReport{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	payload := llm.ExtractJSON(raw)
	return s.buildTrack(payload, s.legalRubric), nil
}

func (s *AnalysisService) runBusinessTrack(ctx context.Context, compact, contractType, model string, maxTokens int) (models.TrackReport, error) {
	prompt := buildBusinessPrompt(compact, contractType, s.businessRubric)
	budgets := []int{maxTokens, maxTokens + s.settings.RetryTokenStep}
	payload, err := llm.GenerateWithCoverage(ctx, s.chat, businessSystemPrompt, prompt, model, budgets, s.businessRubric.Keys(), s.logger)
	if err != nil {
		s.logger.Error("business track generation failed", "error", err)
		return models.TrackReport{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return s.buildTrack(payload, s.businessRubric), nil
}

func (s *AnalysisService) runOverview(ctx context.Context, compact, model string, maxTokens int) models.DocumentOverview {
	raw, err := s.chat.ChatJSON(ctx, overviewSystemPrompt, buildOverviewPrompt(compact), model, maxTokens)
	if err != nil {
		s.logger.Warn("overview generation failed, using default", "error", err)
		return DefaultOverview()
	}
	return BuildDocumentOverview(llm.ExtractJSON(raw))
}

// buildTrack normalizes a raw scoring payload into a complete per-track
// report: every rubric section present, scores aggregated, issues cleaned
// and the focus summary built.
func (s *AnalysisService) buildTrack(payload map[string]any, rb *rubric.Rubric) models.TrackReport {
	sections := s.normalizeSections(parseSections(payload), rb)
	issues := s.normalizeIssues(parseIssues(payload), rb)

	th := scoring.Thresholds{Green: s.settings.ScoreGreen, Yellow: s.settings.ScoreYellow}
	total, color, table := scoring.ComputeTotalAndColor(sections, rb, th)
	focusSummary, focus := scoring.BuildFocus(table, issues, rb)

	return models.TrackReport{
		ScoreTotal:    total,
		ScoreText:     scoring.ScoreText(total, color),
		Verdict:       scoring.VerdictFor(total, th),
		RiskColor:     color,
		FocusSummary:  focusSummary,
		TopFocus:      focus,
		Issues:        issues,
		SectionScores: table,
	}
}

// normalizeSections clamps scores, truncates comments and patches in any
// rubric section the model skipped with raw=0.
func (s *AnalysisService) normalizeSections(scores []models.SectionScore, rb *rubric.Rubric) []models.SectionScore {
	seen := make(map[string]bool, len(scores))
	out := make([]models.SectionScore, 0, len(rb.Keys()))
	for _, sc := range scores {
		if !rb.Has(sc.Key) || seen[sc.Key] {
			continue
		}
		seen[sc.Key] = true
		sc.Raw = scoring.ClampRaw(sc.Raw)
		if len(sc.Comment) > maxCommentLen {
			sc.Comment = sc.Comment[:maxCommentLen]
		}
		out = append(out, sc)
	}
	for _, key := range rb.Keys() {
		if !seen[key] {
			out = append(out, models.SectionScore{Key: key, Raw: 0, Comment: commentNotFound})
		}
	}
	return out
}

// normalizeIssues drops empty issues, remaps unknown section keys to a
// fallback and coerces severities to the known set.
func (s *AnalysisService) normalizeIssues(issues []models.Issue, rb *rubric.Rubric) []models.Issue {
	fallback := "scope"
	if !rb.Has(fallback) {
		keys := rb.Keys()
		if len(keys) == 0 {
			return nil
		}
		fallback = keys[0]
	}

	out := make([]models.Issue, 0, len(issues))
	for _, is := range issues {
		if strings.TrimSpace(is.Text) == "" {
			continue
		}
		if !rb.Has(is.Section) {
			is.Section = fallback
		}
		switch is.Severity {
		case models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
		default:
			is.Severity = models.SeverityMedium
		}
		out = append(out, is)
	}
	return out
}

func parseSections(payload map[string]any) []models.SectionScore {
	items, _ := payload["sections"].([]any)
	out := make([]models.SectionScore, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		key, _ := m["key"].(string)
		if key == "" {
			continue
		}
		out = append(out, models.SectionScore{
			Key:     key,
			Raw:     int(asFloat(m["raw"])),
			Comment: asString(m["comment"]),
		})
	}
	return out
}

func parseIssues(payload map[string]any) []models.Issue {
	items, _ := payload["issues"].([]any)
	out := make([]models.Issue, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Issue{
			Section:    asString(m["section"]),
			Severity:   strings.ToLower(asString(m["severity"])),
			Text:       asString(m["text"]),
			Suggestion: asString(m["suggestion"]),
		})
	}
	return out
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%f", &f); err == nil {
			return f
		}
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
