// Package scoring implements the deterministic half of the pipeline: the
// weighted total, the traffic-light classification, and the focus ranking
// that summarizes the worst sections.
package scoring

import (
	"fmt"
	"math"

	"contractlens-backend/models"
	"contractlens-backend/rubric"
)

// Thresholds are the two score cut lines; Green must be above Yellow.
type Thresholds struct {
	Green  int
	Yellow int
}

// ClampRaw forces a raw score into the valid [0,5] range.
func ClampRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 5 {
		return 5
	}
	return raw
}

// ComputeTotalAndColor converts per-section raw scores into the weighted
// 0-100 total, its color classification, and the breakdown table. Scores
// whose key is not in the rubric are skipped: the rubric is authoritative.
// The total rounds half away from zero (math.Round).
func ComputeTotalAndColor(scores []models.SectionScore, rb *rubric.Rubric, th Thresholds) (int, string, []models.SectionRow) {
	var totalFloat float64
	rows := make([]models.SectionRow, 0, len(scores))
	for _, s := range scores {
		def, ok := rb.Section(s.Key)
		if !ok {
			continue
		}
		raw := ClampRaw(s.Raw)
		weighted := float64(raw) / 5.0 * float64(def.Weight)
		totalFloat += weighted
		rows = append(rows, models.SectionRow{
			Key:     s.Key,
			Title:   def.Title,
			Weight:  def.Weight,
			Raw:     raw,
			Score:   math.Round(weighted*100) / 100,
			Of:      def.Weight,
			Comment: s.Comment,
		})
	}
	total := int(math.Round(totalFloat))
	return total, ColorFor(total, th), rows
}

// ColorFor classifies a total score against the thresholds.
func ColorFor(total int, th Thresholds) string {
	switch {
	case total >= th.Green:
		return models.RiskGreen
	case total >= th.Yellow:
		return models.RiskYellow
	default:
		return models.RiskRed
	}
}

// VerdictFor derives the verdict from the same thresholds as the color.
func VerdictFor(total int, th Thresholds) string {
	switch {
	case total >= th.Green:
		return models.VerdictOK
	case total >= th.Yellow:
		return models.VerdictNeedsReview
	default:
		return models.VerdictHighRisk
	}
}

// ScoreText renders the "82/100 (green)" display string.
func ScoreText(total int, color string) string {
	return fmt.Sprintf("%d/100 (%s)", total, color)
}
