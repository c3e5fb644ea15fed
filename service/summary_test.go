package service

import (
	"testing"

	"contractlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentOverviewDefaults(t *testing.T) {
	ov := BuildDocumentOverview(map[string]any{})
	assert.Equal(t, defaultOverviewSummary, ov.Summary)
	assert.Equal(t, defaultSubject, ov.Subject)
	assert.Empty(t, ov.Parties)
	assert.Empty(t, ov.Highlights)
}

func TestBuildDocumentOverviewPartiesShapes(t *testing.T) {
	ov := BuildDocumentOverview(map[string]any{"parties": "Alpha LLC and Beta Corp"})
	assert.Equal(t, "Alpha LLC and Beta Corp", ov.Parties)

	ov = BuildDocumentOverview(map[string]any{"parties": []any{"Alpha LLC", "Beta Corp"}})
	assert.Equal(t, "Alpha LLC, Beta Corp", ov.Parties)
}

func TestBuildDocumentOverviewFullPayload(t *testing.T) {
	ov := BuildDocumentOverview(map[string]any{
		"summary":    "A supply contract.",
		"subject":    "supply of equipment",
		"highlights": []any{"exclusivity", "", "two-year term"},
	})
	assert.Equal(t, "A supply contract.", ov.Summary)
	assert.Equal(t, "supply of equipment", ov.Subject)
	assert.Equal(t, []string{"exclusivity", "two-year term"}, ov.Highlights)
}

func TestSummarizeTrackOrdersAnalysisPointsWorstFirst(t *testing.T) {
	rb := testRubricAt(t, legalTestRubric)
	report := models.TrackReport{
		ScoreText: "55/100 (yellow)",
		RiskColor: models.RiskYellow,
		SectionScores: []models.SectionRow{
			{Key: "scope", Title: "Scope", Weight: 50, Raw: 4, Comment: "fine"},
			{Key: "payment", Title: "Payment", Weight: 50, Raw: 1, Comment: "no due dates"},
		},
	}

	nb := SummarizeTrack(report, rb)
	require.Len(t, nb.AnalysisPoints, 2)
	assert.Equal(t, "Payment: 1/5 — no due dates", nb.AnalysisPoints[0])
	assert.Equal(t, "Scope: 4/5 — fine", nb.AnalysisPoints[1])

	assert.Contains(t, nb.Summary, "55/100 (yellow)")
	assert.Contains(t, nb.Summary, "moderate risk")
}

func TestSummarizeTrackRecommendationsBySeverity(t *testing.T) {
	rb := testRubricAt(t, legalTestRubric)
	report := models.TrackReport{
		ScoreText: "30/100 (red)",
		RiskColor: models.RiskRed,
		Issues: []models.Issue{
			{Section: "payment", Severity: models.SeverityLow, Text: "rounding unclear"},
			{Section: "scope", Severity: models.SeverityHigh, Text: "no deliverables", Suggestion: "list deliverables"},
			{Section: "payment", Severity: models.SeverityMedium, Text: "late fees missing"},
		},
	}

	nb := SummarizeTrack(report, rb)
	require.Len(t, nb.Recommendations, 3)
	assert.Contains(t, nb.Recommendations[0], "[high]")
	assert.Contains(t, nb.Recommendations[0], "list deliverables")
	assert.Contains(t, nb.Recommendations[1], "[medium]")
	assert.Contains(t, nb.Recommendations[2], "[low]")
}

func TestSummarizeTrackSuggestionFallsBackToRubric(t *testing.T) {
	rb := testRubricAt(t, legalTestRubric)
	report := models.TrackReport{
		RiskColor: models.RiskRed,
		Issues: []models.Issue{
			{Section: "scope", Severity: models.SeverityHigh, Text: "no deliverables"},
		},
	}

	nb := SummarizeTrack(report, rb)
	require.Len(t, nb.Recommendations, 1)
	assert.Contains(t, nb.Recommendations[0], "Tighten the scope.")
	assert.Contains(t, nb.Recommendations[0], "Scope", "issue section renders with its rubric title")
}

func TestSummarizeTrackIncludesFocusSummary(t *testing.T) {
	rb := testRubricAt(t, legalTestRubric)
	report := models.TrackReport{
		ScoreText:    "40/100 (red)",
		RiskColor:    models.RiskRed,
		FocusSummary: "Pay attention to: payment — no due dates.",
	}

	nb := SummarizeTrack(report, rb)
	assert.Contains(t, nb.Summary, "Pay attention to: payment")
}
