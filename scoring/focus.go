package scoring

import (
	"sort"
	"strings"

	"contractlens-backend/models"
	"contractlens-backend/rubric"
)

const (
	focusCount = 3

	noProblemsSummary = "No significant problems found."
	focusPrefix       = "Pay attention to: "
)

// BuildFocus selects the worst-scoring sections from the breakdown table
// and merges them with model-reported issues into a prioritized attention
// list. Ties on raw score break toward the heavier section: when two
// sections are equally bad, the more important one surfaces first.
func BuildFocus(table []models.SectionRow, issues []models.Issue, rb *rubric.Rubric) (string, []models.FocusItem) {
	sorted := make([]models.SectionRow, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Raw != sorted[j].Raw {
			return sorted[i].Raw < sorted[j].Raw
		}
		return sorted[i].Weight > sorted[j].Weight
	})

	limit := focusCount
	if limit > len(sorted) {
		limit = len(sorted)
	}

	top := make([]models.FocusItem, 0, limit)
	for _, row := range sorted[:limit] {
		top = append(top, models.FocusItem{
			Key:        row.Key,
			Title:      row.Title,
			Raw:        row.Raw,
			Score:      row.Score,
			Why:        rb.Why(row.Key),
			Suggestion: resolveSuggestion(row.Key, issues, rb),
		})
	}

	if len(top) == 0 {
		return noProblemsSummary, top
	}

	parts := make([]string, len(top))
	for i, item := range top {
		parts[i] = strings.ToLower(item.Title) + " — " + item.Why
	}
	return focusPrefix + strings.Join(parts, "; ") + ".", top
}

// resolveSuggestion picks the remediation text for a section, preferring a
// model-reported issue suggestion over the rubric's per-section default
// over the rubric-wide default.
func resolveSuggestion(key string, issues []models.Issue, rb *rubric.Rubric) string {
	for _, issue := range issues {
		if issue.Section == key && issue.Suggestion != "" {
			return issue.Suggestion
		}
	}
	if s := rb.Suggestion(key); s != "" {
		return s
	}
	return rb.DefaultSuggestion()
}
