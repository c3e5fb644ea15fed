package service

import (
	"fmt"
	"strings"

	"contractlens-backend/models"
	"contractlens-backend/rubric"
)

const legalSystemPrompt = `You are a senior contract lawyer. You review contracts section by section
against a fixed rubric and respond with strict JSON only. No markdown, no
prose outside the JSON object.`

const businessSystemPrompt = `You are a commercial risk analyst. You review contracts for business and
financial risk and respond with strict JSON only. No markdown, no prose
outside the JSON object.`

const overviewSystemPrompt = `You summarize legal documents. Respond with strict JSON only.`

const scoringFormat = `Return a JSON object with exactly these fields:
{
  "sections": [{"key": "<section key>", "raw": <integer 0..5>, "comment": "<short finding>"}],
  "issues": [{"section": "<section key>", "severity": "high|medium|low", "text": "<issue>", "suggestion": "<fix>"}]
}
Score every section listed below. 5 means the section is complete and safe,
0 means it is missing or dangerous. Keep comments under two sentences.`

const lenientRule = `Be lenient: when a section is partially covered elsewhere in the contract,
score it on the substance present rather than on placement.`

// buildLegalPrompt builds the legal-compliance user prompt with retrieved
// statute context. Sources may be empty, in which case the context block is
// omitted.
func buildLegalPrompt(contractText, contractType, jurisdiction string, sources []models.SourceItem, rb *rubric.Rubric, scoringMode string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Contract type: %s. Jurisdiction: %s.\n\n", orDefault(contractType, "service agreement"), jurisdiction)
	sb.WriteString("Sections to score:\n")
	sb.WriteString(rb.SectionsLines())
	sb.WriteString("\n\n")
	sb.WriteString(scoringFormat)
	if scoringMode == "lenient" {
		sb.WriteString("\n")
		sb.WriteString(lenientRule)
	}
	if len(sources) > 0 {
		sb.WriteString("\n\nRelevant statutory provisions (use them to ground your findings):\n")
		for i, src := range sources {
			fmt.Fprintf(&sb, "[%d] %s", i+1, src.ActTitle)
			if src.Article != "" {
				fmt.Fprintf(&sb, ", art. %s", src.Article)
			}
			if src.Part != "" {
				fmt.Fprintf(&sb, " part %s", src.Part)
			}
			if src.Point != "" {
				fmt.Fprintf(&sb, " p. %s", src.Point)
			}
			sb.WriteString("\n")
			sb.WriteString(src.Text)
			sb.WriteString("\n\n")
		}
	}
	sb.WriteString("\nContract text:\n")
	sb.WriteString(contractText)
	return sb.String()
}

// buildBusinessPrompt builds the business-risk user prompt. No retrieval
// context: business risk is judged from the contract alone.
func buildBusinessPrompt(contractText, contractType string, rb *rubric.Rubric) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Contract type: %s.\n\n", orDefault(contractType, "service agreement"))
	sb.WriteString("Assess commercial and financial risk. Sections to score:\n")
	sb.WriteString(rb.SectionsLines())
	sb.WriteString("\n\n")
	sb.WriteString(scoringFormat)
	sb.WriteString("\n\nContract text:\n")
	sb.WriteString(contractText)
	return sb.String()
}

func buildOverviewPrompt(contractText string) string {
	var sb strings.Builder
	sb.WriteString(`Return a JSON object with exactly these fields:
{
  "summary": "<2-3 sentence summary of the document>",
  "parties": ["<party>", ...],
  "subject": "<what the contract is about>",
  "highlights": ["<key term>", ...]
}`)
	sb.WriteString("\n\nDocument text:\n")
	sb.WriteString(contractText)
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
