package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFenceRe    = regexp.MustCompile("```(json)?")
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	singleQuoteKey = regexp.MustCompile(`'([^'\\]*)'`)
)

// ExtractJSON pulls a JSON object out of free-form model output. Models
// asked for JSON still wrap it in prose, code fences, curly quotes and
// trailing commas, so each repair step is tried in turn and the first one
// that parses wins. Returns an empty map when nothing parses; never fails.
func ExtractJSON(text string) map[string]any {
	if text == "" {
		return map[string]any{}
	}
	if parsed, ok := tryParse(text); ok {
		return parsed
	}

	stripped := strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))
	if parsed, ok := tryParse(stripped); ok {
		return parsed
	}

	normalized := normalizeJSONLike(stripped)
	if parsed, ok := tryParse(normalized); ok {
		return parsed
	}

	// Tolerate single-quoted keys/strings, a Python-literal habit some
	// models have.
	relaxed := singleQuoteKey.ReplaceAllString(normalized, `"$1"`)
	if parsed, ok := tryParse(relaxed); ok {
		return parsed
	}

	if parsed := scanBalancedObjects(stripped); parsed != nil {
		return parsed
	}
	return map[string]any{}
}

func tryParse(text string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, false
	}
	return out, true
}

// normalizeJSONLike straightens typographic quotes and strips trailing
// commas before closing brackets.
func normalizeJSONLike(text string) string {
	if text == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
	return trailingComma.ReplaceAllString(replacer.Replace(text), "$1")
}

// scanBalancedObjects walks every top-level "{" and matches braces to find
// candidate substrings that parse as JSON, keeping the last one found. The
// scan resumes after each matched closing brace, so objects nested inside a
// matched candidate are never treated as candidates themselves. Braces
// inside string values are counted too; a known simplification.
func scanBalancedObjects(text string) map[string]any {
	var lastGood map[string]any
	start := strings.IndexByte(text, '{')
	for start != -1 {
		end := -1
		depth := 0
		for i := start; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
					i = len(text)
				}
			}
		}
		if end == -1 {
			break
		}
		candidate := normalizeJSONLike(text[start : end+1])
		if parsed, ok := tryParse(candidate); ok {
			lastGood = parsed
		}
		next := strings.IndexByte(text[end+1:], '{')
		if next == -1 {
			break
		}
		start = end + 1 + next
	}
	return lastGood
}
