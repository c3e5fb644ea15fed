package service

import (
	"fmt"
	"sort"
	"strings"

	"contractlens-backend/models"
	"contractlens-backend/rubric"
)

const (
	defaultOverviewSummary = "The document was analyzed automatically. A manual review is recommended."
	defaultSubject         = "not determined"
)

var riskLabels = map[string]string{
	models.RiskGreen:  "low risk",
	models.RiskYellow: "moderate risk, review recommended",
	models.RiskRed:    "high risk, legal review required",
}

var severityRank = map[string]int{
	models.SeverityHigh:   0,
	models.SeverityMedium: 1,
	models.SeverityLow:    2,
}

// DefaultOverview is the overview used when the overview pass fails.
func DefaultOverview() models.DocumentOverview {
	return models.DocumentOverview{
		Summary: defaultOverviewSummary,
		Subject: defaultSubject,
	}
}

// BuildDocumentOverview extracts an overview from a raw LLM payload,
// substituting defaults for anything missing.
func BuildDocumentOverview(payload map[string]any) models.DocumentOverview {
	ov := DefaultOverview()
	if s := strings.TrimSpace(asString(payload["summary"])); s != "" {
		ov.Summary = s
	}
	if s := strings.TrimSpace(asString(payload["subject"])); s != "" {
		ov.Subject = s
	}
	switch p := payload["parties"].(type) {
	case string:
		ov.Parties = strings.TrimSpace(p)
	case []any:
		ov.Parties = strings.Join(asStringSlice(p), ", ")
	}
	ov.Highlights = asStringSlice(payload["highlights"])
	return ov
}

// SummarizeTrack renders a track report as a human-readable narrative:
// a one-paragraph summary, per-section analysis points ordered worst first
// and recommendations ordered by severity.
func SummarizeTrack(report models.TrackReport, rb *rubric.Rubric) models.NarrativeBlock {
	var parts []string
	parts = append(parts, fmt.Sprintf("Overall score: %s.", report.ScoreText))
	if label, ok := riskLabels[report.RiskColor]; ok {
		parts = append(parts, fmt.Sprintf("Assessment: %s.", label))
	}
	if report.FocusSummary != "" {
		parts = append(parts, report.FocusSummary)
	}

	points := analysisPoints(report.SectionScores)
	recs := recommendations(report.Issues, rb)

	return models.NarrativeBlock{
		Summary:         strings.Join(parts, " "),
		AnalysisPoints:  points,
		Recommendations: recs,
	}
}

// analysisPoints lists every scored section worst first. Ties on the raw
// score break toward the heavier weight.
func analysisPoints(table []models.SectionRow) []string {
	rows := make([]models.SectionRow, len(table))
	copy(rows, table)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Raw != rows[j].Raw {
			return rows[i].Raw < rows[j].Raw
		}
		return rows[i].Weight > rows[j].Weight
	})

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		line := fmt.Sprintf("%s: %d/5", r.Title, r.Raw)
		if r.Comment != "" {
			line += " — " + r.Comment
		}
		out = append(out, line)
	}
	return out
}

// recommendations orders issues high to low severity and fills in a rubric
// suggestion when the model gave none.
func recommendations(issues []models.Issue, rb *rubric.Rubric) []string {
	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank[sorted[i].Severity] < severityRank[sorted[j].Severity]
	})

	out := make([]string, 0, len(sorted))
	for _, is := range sorted {
		suggestion := strings.TrimSpace(is.Suggestion)
		if suggestion == "" {
			suggestion = rb.Suggestion(is.Section)
		}
		if suggestion == "" {
			suggestion = rb.DefaultSuggestion()
		}
		title := is.Section
		if def, ok := rb.Section(is.Section); ok {
			title = def.Title
		}
		line := fmt.Sprintf("[%s] %s: %s", is.Severity, title, is.Text)
		if suggestion != "" {
			line += " Suggested fix: " + suggestion
		}
		out = append(out, line)
	}
	return out
}

func asStringSlice(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(asString(it)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
