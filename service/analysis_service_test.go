package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contractlens-backend/config"
	"contractlens-backend/models"
	"contractlens-backend/rubric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legalTestRubric = `
sections:
  - key: scope
    title: "Scope"
    weight: 50
    suggestion: "Tighten the scope."
  - key: payment
    title: "Payment"
    weight: 50
`

const businessTestRubric = `
sections:
  - key: financial_exposure
    title: "Financial exposure"
    weight: 60
  - key: delivery_risk
    title: "Delivery risk"
    weight: 40
`

func testRubricAt(t *testing.T, content string) *rubric.Rubric {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return rubric.New(path, nil)
}

func testSettings() *config.Settings {
	return &config.Settings{
		ScoringMode:         "strict",
		ScoreGreen:          75,
		ScoreYellow:         51,
		RAGTopK:             8,
		RerankKeep:          5,
		RetryTokenStep:      512,
		DefaultJurisdiction: "RU",
		DefaultMaxTokens:    1024,
	}
}

// routingClient answers by matching the system prompt to a track.
type routingClient struct {
	legal    string
	business string
	overview string
	legalErr error
	bizErr   error
	ovErr    error
	calls    []string
}

func (c *routingClient) ChatJSON(ctx context.Context, systemMsg, userMsg, model string, maxTokens int) (string, error) {
	switch {
	case strings.Contains(systemMsg, "contract lawyer"):
		c.calls = append(c.calls, "legal")
		return c.legal, c.legalErr
	case strings.Contains(systemMsg, "risk analyst"):
		c.calls = append(c.calls, "business")
		return c.business, c.bizErr
	default:
		c.calls = append(c.calls, "overview")
		return c.overview, c.ovErr
	}
}

func newTestService(t *testing.T, client *routingClient) *AnalysisService {
	t.Helper()
	return NewAnalysisService(
		AnalysisWithChatClient(client),
		AnalysisWithLegalRubric(testRubricAt(t, legalTestRubric)),
		AnalysisWithBusinessRubric(testRubricAt(t, businessTestRubric)),
		AnalysisWithSettings(testSettings()),
	)
}

const contractText = `Subject of the Contract
The contractor builds a billing module.

Price and Payment
Fee of 50,000 payable net 30.`

func TestAnalyzeHappyPath(t *testing.T) {
	client := &routingClient{
		legal: `{"sections": [{"key": "scope", "raw": 4, "comment": "well defined"}, {"key": "payment", "raw": 5}],
			"issues": [{"section": "scope", "severity": "low", "text": "acceptance criteria vague"}]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 3}, {"key": "delivery_risk", "raw": 4}]}`,
		overview: `{"summary": "A billing module development contract.", "parties": ["Alpha", "Beta"], "subject": "billing module", "highlights": ["net 30 payment"]}`,
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	require.NoError(t, err)

	// legal: 4/5*50 + 5/5*50 = 90
	assert.Equal(t, 90, resp.ScoreTotal)
	assert.Equal(t, models.RiskGreen, resp.RiskColor)
	assert.Equal(t, models.VerdictOK, resp.Verdict)
	assert.Equal(t, "90/100 (green)", resp.ScoreText)
	assert.Len(t, resp.SectionScores, 2)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, models.SeverityLow, resp.Issues[0].Severity)

	// business: 3/5*60 + 4/5*40 = 68
	assert.Equal(t, 68, resp.BusinessScoreTotal)
	assert.Equal(t, models.RiskYellow, resp.BusinessRiskColor)

	assert.Equal(t, "RU", resp.Jurisdiction)
	assert.Equal(t, "A billing module development contract.", resp.Overview.Summary)
	assert.Equal(t, "Alpha, Beta", resp.Overview.Parties)

	assert.NotEmpty(t, resp.LawNarrative.Summary)
	assert.Len(t, resp.LawNarrative.AnalysisPoints, 2)
	assert.NotEmpty(t, resp.BusinessNarrative.Summary)
}

func TestAnalyzeEmptyContract(t *testing.T) {
	svc := newTestService(t, &routingClient{})
	_, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: "   "})
	assert.ErrorIs(t, err, ErrEmptyContract)
}

func TestAnalyzeLegalTransportFailureIsFatal(t *testing.T) {
	client := &routingClient{legalErr: errors.New("connection refused")}
	svc := newTestService(t, client)

	_, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAnalyzeBusinessTransportFailureIsFatal(t *testing.T) {
	client := &routingClient{
		legal:  `{"sections": [{"key": "scope", "raw": 4}, {"key": "payment", "raw": 5}]}`,
		bizErr: errors.New("connection refused"),
	}
	svc := newTestService(t, client)

	_, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestAnalyzeOverviewFailureDegrades(t *testing.T) {
	client := &routingClient{
		legal:    `{"sections": [{"key": "scope", "raw": 4}, {"key": "payment", "raw": 5}]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 3}, {"key": "delivery_risk", "raw": 4}]}`,
		ovErr:    errors.New("timeout"),
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	require.NoError(t, err)
	assert.Equal(t, DefaultOverview(), resp.Overview, "overview failure must not fail the analysis")
}

func TestAnalyzePatchesSkippedSections(t *testing.T) {
	client := &routingClient{
		// legal response skips "payment" entirely
		legal:    `{"sections": [{"key": "scope", "raw": 5}]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 3}, {"key": "delivery_risk", "raw": 4}]}`,
		overview: `{}`,
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	require.NoError(t, err)

	require.Len(t, resp.SectionScores, 2)
	var payment *models.SectionRow
	for i := range resp.SectionScores {
		if resp.SectionScores[i].Key == "payment" {
			payment = &resp.SectionScores[i]
		}
	}
	require.NotNil(t, payment)
	assert.Equal(t, 0, payment.Raw)
	assert.Equal(t, commentNotFound, payment.Comment)
	assert.Equal(t, 50, resp.ScoreTotal)
}

func TestAnalyzeNormalizesIssues(t *testing.T) {
	client := &routingClient{
		legal: `{"sections": [{"key": "scope", "raw": 7}, {"key": "payment", "raw": -2}],
			"issues": [
				{"section": "unknown_key", "severity": "catastrophic", "text": "bad clause"},
				{"section": "payment", "severity": "high", "text": ""},
				{"section": "payment", "severity": "high", "text": "no due dates"}
			]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 0}, {"key": "delivery_risk", "raw": 0}]}`,
		overview: `{}`,
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	require.NoError(t, err)

	// raw 7 clamps to 5, raw -2 clamps to 0: total = 50
	assert.Equal(t, 50, resp.ScoreTotal)

	require.Len(t, resp.Issues, 2, "empty-text issue is dropped")
	assert.Equal(t, "scope", resp.Issues[0].Section, "unknown section remaps to the fallback key")
	assert.Equal(t, models.SeverityMedium, resp.Issues[0].Severity, "invalid severity coerces to medium")
	assert.Equal(t, models.SeverityHigh, resp.Issues[1].Severity)
}

func TestAnalyzeFocusRanksWorstSections(t *testing.T) {
	client := &routingClient{
		legal: `{"sections": [{"key": "scope", "raw": 1}, {"key": "payment", "raw": 4}]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 2}, {"key": "delivery_risk", "raw": 2}]}`,
		overview: `{}`,
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{ContractText: contractText})
	require.NoError(t, err)

	require.NotEmpty(t, resp.TopFocus)
	assert.Equal(t, "scope", resp.TopFocus[0].Key)
	assert.True(t, strings.HasPrefix(resp.FocusSummary, "Pay attention to: "))

	// business tie on raw breaks toward the heavier weight
	require.NotEmpty(t, resp.BusinessTopFocus)
	assert.Equal(t, "financial_exposure", resp.BusinessTopFocus[0].Key)
}

func TestAnalyzeDefaultsApplied(t *testing.T) {
	client := &routingClient{
		legal:    `{"sections": [{"key": "scope", "raw": 5}, {"key": "payment", "raw": 5}]}`,
		business: `{"sections": [{"key": "financial_exposure", "raw": 5}, {"key": "delivery_risk", "raw": 5}]}`,
		overview: `{}`,
	}
	svc := newTestService(t, client)

	resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
		ContractText: contractText,
		Jurisdiction: "KZ",
	})
	require.NoError(t, err)
	assert.Equal(t, "KZ", resp.Jurisdiction, "explicit jurisdiction wins over the default")

	assert.Equal(t, []string{"legal", "business", "overview"}, client.calls)
}
