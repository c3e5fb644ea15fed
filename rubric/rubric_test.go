package rubric

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
defaults:
  suggestion: "Escalate to counsel."
sections:
  - key: scope
    title: "Subject and scope"
    weight: 10
    why: "Vague scope invites disputes."
    suggestion: "Describe deliverables explicitly."
  - key: payment
    title: "Price and payment"
    weight: "12"
  - key: broken
    title: "Bad weight"
    weight: 3.5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRubricLoadsSections(t *testing.T) {
	rb := New(writeConfig(t, sampleConfig), nil)

	assert.Equal(t, []string{"scope", "payment"}, rb.Keys())
	assert.True(t, rb.Has("scope"))
	assert.False(t, rb.Has("broken"), "non-integral weight must discard the section")

	def, ok := rb.Section("payment")
	require.True(t, ok)
	assert.Equal(t, 12, def.Weight, "string weights are coerced")
	assert.Equal(t, "Price and payment", def.Title)
}

func TestRubricWhyAndSuggestionFallbacks(t *testing.T) {
	rb := New(writeConfig(t, sampleConfig), nil)

	assert.Equal(t, "Vague scope invites disputes.", rb.Why("scope"))
	assert.Equal(t, fallbackWhy, rb.Why("payment"), "missing why falls back to the built-in default")

	assert.Equal(t, "Describe deliverables explicitly.", rb.Suggestion("scope"))
	assert.Empty(t, rb.Suggestion("payment"))
	assert.Equal(t, "Escalate to counsel.", rb.DefaultSuggestion())
}

func TestRubricSectionsLines(t *testing.T) {
	rb := New(writeConfig(t, sampleConfig), nil)
	lines := rb.SectionsLines()
	assert.Contains(t, lines, `"scope" — Subject and scope`)
	assert.Contains(t, lines, `"payment" — Price and payment`)
}

func TestRubricCachesByMtime(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	rb := New(path, nil)

	first := rb.Sections()
	second := rb.Sections()
	assert.Equal(t, first, second)

	// rewrite with a bumped mtime; the rubric must pick up the change
	updated := `
sections:
  - key: liability
    title: "Liability"
    weight: 100
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Equal(t, []string{"liability"}, rb.Keys())
}

func TestRubricKeepsPreviousViewOnMalformedEdit(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	rb := New(path, nil)
	require.Equal(t, []string{"scope", "payment"}, rb.Keys())

	require.NoError(t, os.WriteFile(path, []byte("sections: [not: valid: yaml"), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Equal(t, []string{"scope", "payment"}, rb.Keys(), "malformed edit keeps the prior view")
}

func TestRubricMissingFileYieldsEmptyView(t *testing.T) {
	rb := New(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	assert.Empty(t, rb.Keys())
	assert.Empty(t, rb.Sections())
	assert.Equal(t, fallbackWhy, rb.Why("anything"))
	assert.False(t, rb.Has("anything"))
}
