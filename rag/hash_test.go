package rag

import (
	"testing"

	"contractlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHashStable(t *testing.T) {
	h1 := TextHash("the seller shall deliver the goods")
	h2 := TextHash("the seller shall deliver the goods")
	h3 := TextHash("the buyer shall pay the price")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 16)
}

func TestDeterministicPointIDStable(t *testing.T) {
	id1 := DeterministicPointID("gk/art-432/p-1")
	id2 := DeterministicPointID("gk/art-432/p-1")
	id3 := DeterministicPointID("gk/art-432/p-2")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestDedupSourcesByHashKeepsFirstOccurrence(t *testing.T) {
	text := "identical provision text"
	sources := []models.SourceItem{
		{ActTitle: "Civil Code", LocalRef: "a", Text: text, SourceHash: TextHash(text)},
		{ActTitle: "Other Act", LocalRef: "b", Text: "different text", SourceHash: TextHash("different text")},
		// same content under another local reference
		{ActTitle: "Civil Code (mirror)", LocalRef: "c", Text: text, SourceHash: TextHash(text)},
	}

	out := DedupSourcesByHash(sources)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].LocalRef, "first occurrence wins")
	assert.Equal(t, "b", out[1].LocalRef)
}

func TestDedupSourcesByHashPreservesOrder(t *testing.T) {
	sources := []models.SourceItem{
		{SourceHash: "h3"},
		{SourceHash: "h1"},
		{SourceHash: "h2"},
		{SourceHash: "h1"},
	}
	out := DedupSourcesByHash(sources)
	require.Len(t, out, 3)
	assert.Equal(t, "h3", out[0].SourceHash)
	assert.Equal(t, "h1", out[1].SourceHash)
	assert.Equal(t, "h2", out[2].SourceHash)
}

func TestDedupSourcesByHashEmpty(t *testing.T) {
	assert.Empty(t, DedupSourcesByHash(nil))
}
