// Package ingest prepares raw documents for the pipeline: heading-based
// compaction of contract text, HTML-to-text extraction, and chunking for
// the vector index.
package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// sectionPattern maps a contract heading regex to a rubric section key.
// Order matters: the compact text is assembled in this order.
type sectionPattern struct {
	key string
	re  *regexp.Regexp
}

var sectionPatterns = []sectionPattern{
	{"parties", regexp.MustCompile(`(?i)^\s*(parties|the parties|between\b|details of the parties)`)},
	{"scope", regexp.MustCompile(`(?i)^\s*(subject of the (contract|agreement)|scope of (work|services)|description of (services|work)|deliverables)`)},
	{"timeline_acceptance", regexp.MustCompile(`(?i)^\s*(term[s]? (and|of) (delivery|performance)|timeline|schedule|acceptance|delivery and acceptance)`)},
	{"payment", regexp.MustCompile(`(?i)^\s*(price|fees|payment|cost|remuneration|settlement procedure|compensation)`)},
	{"liability", regexp.MustCompile(`(?i)^\s*(liability|penalt(y|ies)|indemnif|damages)`)},
	{"reps_warranties", regexp.MustCompile(`(?i)^\s*(representations?( and warranties)?|warrant(y|ies))`)},
	{"ip", regexp.MustCompile(`(?i)^\s*(intellectual property|ip rights|ownership of (work|results)|exclusive rights)`)},
	{"confidentiality", regexp.MustCompile(`(?i)^\s*(confidentialit|non-disclosure|trade secret)`)},
	{"personal_data", regexp.MustCompile(`(?i)^\s*(personal data|data protection|privacy|gdpr|processing of personal)`)},
	{"force_majeure", regexp.MustCompile(`(?i)^\s*(force majeure|acts of god|circumstances beyond)`)},
	{"change_termination", regexp.MustCompile(`(?i)^\s*(amendment|modification|termination|unilateral (refusal|withdrawal))`)},
	{"law_venue", regexp.MustCompile(`(?i)^\s*(governing law|applicable law|jurisdiction|dispute resolution|arbitration|venue)`)},
	{"conflicts_priority", regexp.MustCompile(`(?i)^\s*(order of precedence|priority of documents|conflict(s)? (between|of) documents)`)},
	{"signatures_form", regexp.MustCompile(`(?i)^\s*(signatures?|execution|counterparts|electronic signature|form of the (contract|agreement))`)},
}

// SectionOrder is the fixed assembly order for compact text.
var SectionOrder = func() []string {
	keys := make([]string, len(sectionPatterns))
	for i, p := range sectionPatterns {
		keys[i] = p.key
	}
	return keys
}()

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return regexp.MustCompile(`[ \t]+\n`).ReplaceAllString(s, "\n")
}

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range paragraphSplit.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractSections splits contract text into rubric-keyed sections by
// matching heading lines; paragraphs accumulate under the last heading
// seen. Unmatched text lands under "other".
func ExtractSections(raw string) map[string][]string {
	text := normalizeText(raw)
	lines := strings.Split(text, "\n")

	sections := make(map[string][]string, len(sectionPatterns)+1)
	var other []string
	var buf []string
	curKey := ""

	flush := func() {
		if len(buf) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if chunk == "" {
			return
		}
		if curKey != "" {
			sections[curKey] = append(sections[curKey], chunk)
		} else {
			other = append(other, chunk)
		}
	}

	for _, ln := range lines {
		line := strings.TrimSpace(ln)
		if line == "" {
			buf = append(buf, "")
			continue
		}
		matched := ""
		for _, p := range sectionPatterns {
			if p.re.MatchString(line) {
				matched = p.key
				break
			}
		}
		if matched != "" {
			flush()
			curKey = matched
			// heading line itself is dropped
			continue
		}
		buf = append(buf, line)
	}
	flush()

	if len(other) > 0 {
		sections["other"] = append(sections["other"], splitParagraphs(strings.Join(other, "\n"))...)
	}
	return sections
}

// BuildCompact assembles the compact analysis text in fixed section order,
// capping each section at perSectionLimit chars and the whole output at
// totalLimit.
func BuildCompact(sections map[string][]string, perSectionLimit, totalLimit int) string {
	var parts []string
	remaining := totalLimit

	take := func(key string) {
		blocks := sections[key]
		if len(blocks) == 0 || remaining <= 0 {
			return
		}
		joined := strings.Join(blocks, "\n\n")
		limit := perSectionLimit
		if limit > remaining {
			limit = remaining
		}
		if len(joined) > limit {
			joined = joined[:limit]
		}
		if joined == "" {
			return
		}
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", key, joined))
		remaining -= len(joined) + len(key) + 8
	}

	for _, key := range SectionOrder {
		if remaining <= 0 {
			break
		}
		take(key)
	}
	if remaining > 0 {
		take("other")
	}

	compact := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if len(compact) > totalLimit {
		compact = compact[:totalLimit]
	}
	return compact
}
