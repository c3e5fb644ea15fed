package rerank

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"contractlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	scores []float64
	err    error
	calls  int
	texts  []string
}

func (f *fakeScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	f.calls++
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	return f.scores[:len(texts)], nil
}

func makeSources(n int) []models.SourceItem {
	out := make([]models.SourceItem, n)
	for i := range out {
		out[i] = models.SourceItem{
			ActTitle:   fmt.Sprintf("Act %d", i),
			Text:       fmt.Sprintf("provision text %d", i),
			SourceHash: fmt.Sprintf("hash%d", i),
		}
	}
	return out
}

func TestApplyDisabledIsPassthrough(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1, 2, 3}}
	r := New(scorer, false, 0, nil)

	sources := makeSources(10)
	out := r.Apply(context.Background(), "q", sources, 5)

	require.Len(t, out, 5)
	assert.Equal(t, sources[:5], out, "disabled reranker keeps retrieval order")
	assert.Zero(t, scorer.calls)
}

func TestApplyNilScorerIsPassthrough(t *testing.T) {
	r := New(nil, true, 0, nil)
	sources := makeSources(10)
	out := r.Apply(context.Background(), "q", sources, 5)
	assert.Equal(t, sources[:5], out)
}

func TestApplyReordersByScore(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.1, 0.9, 0.5, 0.7}}
	r := New(scorer, true, 0, nil)

	sources := makeSources(4)
	out := r.Apply(context.Background(), "q", sources, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "Act 1", out[0].ActTitle)
	assert.Equal(t, "Act 3", out[1].ActTitle)
	assert.Equal(t, 1, scorer.calls)
}

func TestApplySkipsScoringWhenNothingToCut(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1, 2, 3}}
	r := New(scorer, true, 0, nil)

	sources := makeSources(3)
	out := r.Apply(context.Background(), "q", sources, 5)

	assert.Equal(t, sources, out)
	assert.Zero(t, scorer.calls, "no call when keep covers all candidates")
}

func TestApplyScorerFailureFallsBack(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("service down")}
	r := New(scorer, true, 0, nil)

	sources := makeSources(6)
	out := r.Apply(context.Background(), "q", sources, 3)

	assert.Equal(t, sources[:3], out, "scoring failure keeps retrieval order")
}

func TestApplyTruncatesTextsForScoring(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.2, 0.8, 0.4}}
	r := New(scorer, true, 10, nil)

	sources := makeSources(3)
	sources[0].Text = "this text is definitely longer than ten bytes"
	r.Apply(context.Background(), "q", sources, 2)

	require.NotEmpty(t, scorer.texts)
	assert.Len(t, scorer.texts[0], 10)
	assert.Equal(t, sources[1].Text, scorer.texts[1], "short texts pass through untouched")
}

func TestApplyEmptySources(t *testing.T) {
	r := New(&fakeScorer{}, true, 0, nil)
	out := r.Apply(context.Background(), "q", nil, 5)
	assert.Empty(t, out)
}
