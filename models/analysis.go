package models

// Severity levels for issues reported by the model.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Risk colors for the traffic-light classification.
const (
	RiskGreen  = "green"
	RiskYellow = "yellow"
	RiskRed    = "red"
)

// Verdicts derived from the total score.
const (
	VerdictOK          = "ok"
	VerdictNeedsReview = "needs_review"
	VerdictHighRisk    = "high_risk"
)

// SectionScore is a normalized per-section judgment parsed from LLM output.
// Raw is always clamped into [0,5] before it reaches aggregation.
type SectionScore struct {
	Key     string `json:"key"`
	Raw     int    `json:"raw"`
	Comment string `json:"comment,omitempty"`
}

// Issue is a free-text problem reported by the model, coerced onto a known
// rubric section and a valid severity.
type Issue struct {
	Section    string `json:"section"`
	Severity   string `json:"severity"`
	Text       string `json:"text"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SourceItem is a retrieved statutory excerpt. SourceHash is a content
// fingerprint; two items with equal hashes are the same excerpt regardless
// of where they came from.
type SourceItem struct {
	ActTitle     string `json:"act_title"`
	Article      string `json:"article,omitempty"`
	Part         string `json:"part,omitempty"`
	Point        string `json:"point,omitempty"`
	RevisionDate string `json:"revision_date,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	Text         string `json:"text"`
	LocalRef     string `json:"local_ref,omitempty"`
	SourceHash   string `json:"source_hash"`
}

// SectionRow is one row of the scoring breakdown table.
type SectionRow struct {
	Key     string  `json:"key"`
	Title   string  `json:"title"`
	Weight  int     `json:"weight"`
	Raw     int     `json:"raw"`
	Score   float64 `json:"score"`
	Of      int     `json:"of"`
	Comment string  `json:"comment"`
}

// FocusItem is one of the worst-scoring sections, enriched with a rationale
// and an optional remediation suggestion.
type FocusItem struct {
	Key        string  `json:"key"`
	Title      string  `json:"title"`
	Raw        int     `json:"raw"`
	Score      float64 `json:"score"`
	Why        string  `json:"why"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// DocumentOverview is the non-scored overview pass over the document.
type DocumentOverview struct {
	Summary    string   `json:"summary"`
	Parties    string   `json:"parties,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Highlights []string `json:"highlights"`
}

// NarrativeBlock is the prose rendering of one analysis track.
type NarrativeBlock struct {
	Summary         string   `json:"summary"`
	AnalysisPoints  []string `json:"analysis_points"`
	Recommendations []string `json:"recommendations"`
}

// TrackReport is the structured result of one analysis track
// (legal compliance or business risk).
type TrackReport struct {
	ScoreTotal    int          `json:"score_total"`
	ScoreText     string       `json:"score_text"`
	Verdict       string       `json:"verdict"`
	RiskColor     string       `json:"risk_color"`
	Summary       string       `json:"summary"`
	FocusSummary  string       `json:"focus_summary"`
	TopFocus      []FocusItem  `json:"top_focus"`
	Issues        []Issue      `json:"issues"`
	SectionScores []SectionRow `json:"section_scores"`
}

// AnalyzeRequest is the contract analysis request body.
type AnalyzeRequest struct {
	ContractText string `json:"contract_text" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
	ContractType string `json:"contract_type"`
	Language     string `json:"language"`
	Model        string `json:"model"`
	MaxTokens    int    `json:"max_tokens"`
}

// AnalyzeResponse is the full analysis payload: the legal track at the top
// level, the business track under business_* keys, plus the overview and
// narrative blocks.
type AnalyzeResponse struct {
	ScoreTotal    int          `json:"score_total"`
	ScoreText     string       `json:"score_text"`
	Verdict       string       `json:"verdict"`
	RiskColor     string       `json:"risk_color"`
	Summary       string       `json:"summary"`
	FocusSummary  string       `json:"focus_summary"`
	TopFocus      []FocusItem  `json:"top_focus"`
	Jurisdiction  string       `json:"jurisdiction"`
	Issues        []Issue      `json:"issues"`
	SectionScores []SectionRow `json:"section_scores"`
	Sources       []SourceItem `json:"sources"`

	BusinessScoreTotal    int          `json:"business_score_total"`
	BusinessScoreText     string       `json:"business_score_text"`
	BusinessVerdict       string       `json:"business_verdict"`
	BusinessRiskColor     string       `json:"business_risk_color"`
	BusinessSummary       string       `json:"business_summary"`
	BusinessFocusSummary  string       `json:"business_focus_summary"`
	BusinessTopFocus      []FocusItem  `json:"business_top_focus"`
	BusinessIssues        []Issue      `json:"business_issues"`
	BusinessSectionScores []SectionRow `json:"business_section_scores"`

	Overview          DocumentOverview `json:"overview"`
	LawNarrative      NarrativeBlock   `json:"law_narrative"`
	BusinessNarrative NarrativeBlock   `json:"business_narrative"`
}

// ApplyLegal copies a legal track report into the top-level fields.
func (r *AnalyzeResponse) ApplyLegal(t TrackReport) {
	r.ScoreTotal = t.ScoreTotal
	r.ScoreText = t.ScoreText
	r.Verdict = t.Verdict
	r.RiskColor = t.RiskColor
	r.Summary = t.Summary
	r.FocusSummary = t.FocusSummary
	r.TopFocus = t.TopFocus
	r.Issues = t.Issues
	r.SectionScores = t.SectionScores
}

// ApplyBusiness copies a business track report into the business_* fields.
func (r *AnalyzeResponse) ApplyBusiness(t TrackReport) {
	r.BusinessScoreTotal = t.ScoreTotal
	r.BusinessScoreText = t.ScoreText
	r.BusinessVerdict = t.Verdict
	r.BusinessRiskColor = t.RiskColor
	r.BusinessSummary = t.Summary
	r.BusinessFocusSummary = t.FocusSummary
	r.BusinessTopFocus = t.TopFocus
	r.BusinessIssues = t.Issues
	r.BusinessSectionScores = t.SectionScores
}
