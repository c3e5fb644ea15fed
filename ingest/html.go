package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText strips markup from an HTML document, skipping script and style
// content. Returns the extracted text and the document title, if any.
func HTMLToText(src string) (text string, title string) {
	tok := html.NewTokenizer(strings.NewReader(src))
	var sb strings.Builder
	skipDepth := 0
	inTitle := false

	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(collapseBlank(sb.String())), strings.TrimSpace(title)
		case html.StartTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skipDepth++
			case "title":
				inTitle = true
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "table", "section", "article":
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			case "title":
				inTitle = false
			case "p", "div", "li", "tr", "table", "section", "article":
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := string(tok.Text())
			if inTitle {
				title += t
				continue
			}
			if strings.TrimSpace(t) != "" {
				sb.WriteString(t)
				sb.WriteByte(' ')
			}
		}
	}
}

func collapseBlank(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
