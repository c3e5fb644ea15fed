package llm

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
)

// CommentNotCovered marks a section the model never scored; the placeholder
// keeps downstream aggregation gap-free.
const CommentNotCovered = "not covered by model response"

// ErrAllAttemptsFailed means every configured attempt failed at the
// transport level and no payload was obtained at all.
var ErrAllAttemptsFailed = errors.New("all generation attempts failed")

// GenerateWithCoverage calls the model once per token budget in budgets
// until the extracted payload scores every key in requiredKeys. The first
// fully-covered payload is returned as-is. A transport failure on one
// attempt skips to the next budget. If no attempt achieves full coverage,
// the last payload obtained is patched with zero-score placeholders for the
// missing keys — callers never see a gap in the required key set. Only when
// every attempt failed outright is an error returned.
func GenerateWithCoverage(
	ctx context.Context,
	client ChatClient,
	systemMsg, userMsg, model string,
	budgets []int,
	requiredKeys []string,
	logger hclog.Logger,
) (map[string]any, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var (
		lastPayload map[string]any
		lastErr     error
	)
	for attempt, budget := range budgets {
		raw, err := client.ChatJSON(ctx, systemMsg, userMsg, model, budget)
		if err != nil {
			logger.Warn("generation attempt failed", "attempt", attempt+1, "budget", budget, "error", err)
			lastErr = err
			continue
		}
		payload := ExtractJSON(raw)
		lastPayload = payload
		missing := missingSectionKeys(payload, requiredKeys)
		if len(missing) == 0 {
			return payload, nil
		}
		logger.Warn("model response missing sections, retrying with larger budget",
			"attempt", attempt+1, "budget", budget, "missing", len(missing))
	}

	if lastPayload == nil {
		if lastErr == nil {
			lastErr = ErrAllAttemptsFailed
		}
		return nil, lastErr
	}
	return fillMissingSections(lastPayload, requiredKeys), nil
}

// missingSectionKeys lists the required keys absent from the payload's
// sections array.
func missingSectionKeys(payload map[string]any, required []string) []string {
	present := map[string]bool{}
	if sections, ok := payload["sections"].([]any); ok {
		for _, raw := range sections {
			if entry, ok := raw.(map[string]any); ok {
				if key, ok := entry["key"].(string); ok {
					present[key] = true
				}
			}
		}
	}
	var missing []string
	for _, key := range required {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	return missing
}

// fillMissingSections appends a raw=0 placeholder for every required key
// the payload omits.
func fillMissingSections(payload map[string]any, required []string) map[string]any {
	sections, _ := payload["sections"].([]any)
	for _, key := range missingSectionKeys(payload, required) {
		sections = append(sections, map[string]any{
			"key":     key,
			"raw":     0,
			"comment": CommentNotCovered,
		})
	}
	payload["sections"] = sections
	return payload
}
