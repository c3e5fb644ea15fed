package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONDirect(t *testing.T) {
	out := ExtractJSON(`{"sections": [{"key": "payment", "raw": 4}]}`)
	require.Contains(t, out, "sections")
}

func TestExtractJSONCodeFence(t *testing.T) {
	input := "Here is the result:\n```json\n{\"total\": 82}\n```"
	out := ExtractJSON(input)
	assert.Equal(t, float64(82), out["total"])
}

func TestExtractJSONCurlyQuotesAndTrailingComma(t *testing.T) {
	input := "{“key”: “payment”, “raw”: 3,}"
	out := ExtractJSON(input)
	assert.Equal(t, "payment", out["key"])
	assert.Equal(t, float64(3), out["raw"])
}

func TestExtractJSONSingleQuotes(t *testing.T) {
	out := ExtractJSON(`{'verdict': 'ok'}`)
	assert.Equal(t, "ok", out["verdict"])
}

func TestExtractJSONEmbeddedInProse(t *testing.T) {
	input := `The analysis follows. {"broken": } And the real one: {"score": 55, "color": "yellow"} Done.`
	out := ExtractJSON(input)
	assert.Equal(t, float64(55), out["score"])
	assert.Equal(t, "yellow", out["color"])
}

func TestExtractJSONProsePrefixWithTrailingComma(t *testing.T) {
	input := `Here is the result: {"summary": "ok", "sections": [{"key":"a","raw":3,}]}`
	out := ExtractJSON(input)
	require.Contains(t, out, "summary")
	assert.Equal(t, "ok", out["summary"])
	sections, ok := out["sections"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 1)
	first, ok := sections[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", first["key"])
	assert.Equal(t, float64(3), first["raw"])
}

func TestExtractJSONNestedObjectStaysInsideParent(t *testing.T) {
	out := ExtractJSON(`prefix {"a": {"b": 1}} suffix`)
	require.Contains(t, out, "a")
	assert.Equal(t, map[string]any{"b": float64(1)}, out["a"])
}

func TestExtractJSONKeepsLastParsableObject(t *testing.T) {
	input := `{"first": 1} trailing text {"second": 2}`
	out := ExtractJSON(input)
	assert.Equal(t, float64(2), out["second"])
	assert.NotContains(t, out, "first")
}

func TestExtractJSONGarbageYieldsEmptyMap(t *testing.T) {
	out := ExtractJSON("no json here at all")
	require.NotNil(t, out)
	assert.Empty(t, out)

	out = ExtractJSON("")
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestExtractJSONRoundTrip(t *testing.T) {
	payload := map[string]any{
		"sections": []any{
			map[string]any{"key": "liability", "raw": float64(2), "comment": "cap missing"},
		},
		"issues": []any{},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	out := ExtractJSON(string(data))
	assert.Equal(t, payload, out)
}
