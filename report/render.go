// Package report renders an analysis result as a standalone HTML document
// and persists it through the storage backend.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"contractlens-backend/models"
	"contractlens-backend/storage"

	"github.com/google/uuid"
)

// Meta carries report metadata shown in the document footer.
type Meta struct {
	ReportID     uuid.UUID
	ContractType string
	Jurisdiction string
	Model        string
	GeneratedAt  time.Time
}

type trackView struct {
	Heading   string
	ScoreText string
	RiskColor string
	Focus     []models.FocusItem
	Table     []models.SectionRow
	Issues    []models.Issue
	Narrative models.NarrativeBlock
}

type reportView struct {
	Meta     Meta
	Overview models.DocumentOverview
	Legal    trackView
	Business trackView
	Sources  []models.SourceItem
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(score float64, of int) int {
		if of <= 0 {
			return 0
		}
		p := int(score / float64(of) * 100)
		if p > 100 {
			p = 100
		}
		return p
	},
	"cite": func(i int) int { return i + 1 },
	"chipClass": func(color string) string {
		switch color {
		case models.RiskGreen:
			return "chip chip-green"
		case models.RiskYellow:
			return "chip chip-yellow"
		default:
			return "chip chip-red"
		}
	},
}).Parse(reportHTML))

// Render produces the full HTML report.
func Render(resp *models.AnalyzeResponse, meta Meta) (string, error) {
	view := reportView{
		Meta:     meta,
		Overview: resp.Overview,
		Legal: trackView{
			Heading:   "Legal compliance",
			ScoreText: resp.ScoreText,
			RiskColor: resp.RiskColor,
			Focus:     resp.TopFocus,
			Table:     resp.SectionScores,
			Issues:    resp.Issues,
			Narrative: resp.LawNarrative,
		},
		Business: trackView{
			Heading:   "Business risk",
			ScoreText: resp.BusinessScoreText,
			RiskColor: resp.BusinessRiskColor,
			Focus:     resp.BusinessTopFocus,
			Table:     resp.BusinessSectionScores,
			Issues:    resp.BusinessIssues,
			Narrative: resp.BusinessNarrative,
		},
		Sources: resp.Sources,
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Save renders the report and writes it to storage, returning the storage
// key.
func Save(ctx context.Context, store storage.Storage, resp *models.AnalyzeResponse, meta Meta) (string, error) {
	if meta.ReportID == uuid.Nil {
		meta.ReportID = uuid.New()
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}

	html, err := Render(resp, meta)
	if err != nil {
		return "", err
	}
	key := storage.ReportKey(meta.ReportID, ".html")
	return store.Save(ctx, key, "text/html; charset=utf-8", bytes.NewReader([]byte(html)))
}

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Contract analysis report</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 960px; color: #1a1a1a; }
h1 { font-size: 1.6rem; } h2 { font-size: 1.25rem; margin-top: 2rem; } h3 { font-size: 1.05rem; }
.chip { display: inline-block; padding: 0.2rem 0.7rem; border-radius: 999px; font-weight: 600; }
.chip-green { background: #d9f2dc; color: #116329; }
.chip-yellow { background: #fdf3d0; color: #7a5c00; }
.chip-red { background: #fadbd8; color: #922b21; }
table { border-collapse: collapse; width: 100%; margin-top: 0.5rem; }
th, td { border: 1px solid #ddd; padding: 0.45rem 0.6rem; text-align: left; font-size: 0.9rem; }
th { background: #f5f5f5; }
.bar { background: #eee; border-radius: 4px; height: 8px; min-width: 80px; }
.bar > div { background: #4a90d9; border-radius: 4px; height: 8px; }
.focus { background: #f8f9fb; border-left: 4px solid #4a90d9; padding: 0.6rem 1rem; margin: 0.6rem 0; }
.issue-high { color: #922b21; font-weight: 600; }
.issue-medium { color: #7a5c00; font-weight: 600; }
.issue-low { color: #555; font-weight: 600; }
.source { font-size: 0.85rem; color: #444; margin-bottom: 0.7rem; }
footer { margin-top: 3rem; font-size: 0.8rem; color: #888; border-top: 1px solid #ddd; padding-top: 0.6rem; }
</style>
</head>
<body>
<h1>Contract analysis report</h1>

<h2>Overview</h2>
<p>{{.Overview.Summary}}</p>
{{if .Overview.Parties}}<p><strong>Parties:</strong> {{.Overview.Parties}}</p>{{end}}
<p><strong>Subject:</strong> {{.Overview.Subject}}</p>
{{if .Overview.Highlights}}<ul>{{range .Overview.Highlights}}<li>{{.}}</li>{{end}}</ul>{{end}}

{{template "track" .Legal}}
{{template "track" .Business}}

{{if .Sources}}
<h2>Statutory sources</h2>
{{range $i, $s := .Sources}}
<div class="source">
<strong>[{{cite $i}}] {{$s.ActTitle}}</strong>
{{if $s.Article}} art. {{$s.Article}}{{end}}{{if $s.Part}} part {{$s.Part}}{{end}}{{if $s.Point}} p. {{$s.Point}}{{end}}
{{if $s.RevisionDate}} (rev. {{$s.RevisionDate}}){{end}}<br>
{{$s.Text}}
</div>
{{end}}
{{end}}

<footer>
Report {{.Meta.ReportID}} · {{.Meta.GeneratedAt.Format "2006-01-02 15:04 UTC"}}
{{if .Meta.ContractType}} · {{.Meta.ContractType}}{{end}}
{{if .Meta.Jurisdiction}} · {{.Meta.Jurisdiction}}{{end}}
{{if .Meta.Model}} · model {{.Meta.Model}}{{end}}
</footer>
</body>
</html>

{{define "track"}}
<h2>{{.Heading}}</h2>
<p><span class="{{chipClass .RiskColor}}">{{.ScoreText}}</span></p>

<p>{{.Narrative.Summary}}</p>

{{if .Focus}}
<div class="focus">
<h3>Focus areas</h3>
<ul>
{{range .Focus}}<li><strong>{{.Title}}</strong> ({{.Raw}}/5): {{.Why}}{{if .Suggestion}} — {{.Suggestion}}{{end}}</li>{{end}}
</ul>
</div>
{{end}}

<table>
<tr><th>Section</th><th>Score</th><th></th><th>Comment</th></tr>
{{range .Table}}
<tr>
<td>{{.Title}}</td>
<td>{{printf "%.2f" .Score}} / {{.Of}}</td>
<td><div class="bar"><div style="width: {{pct .Score .Of}}%"></div></div></td>
<td>{{.Comment}}</td>
</tr>
{{end}}
</table>

{{if .Issues}}
<h3>Issues</h3>
<ul>
{{range .Issues}}<li><span class="issue-{{.Severity}}">[{{.Severity}}]</span> {{.Text}}{{if .Suggestion}} — {{.Suggestion}}{{end}}</li>{{end}}
</ul>
{{end}}

{{if .Narrative.Recommendations}}
<h3>Recommendations</h3>
<ul>
{{range .Narrative.Recommendations}}<li>{{.}}</li>{{end}}
</ul>
{{end}}
{{end}}
`
