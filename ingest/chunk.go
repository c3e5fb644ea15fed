package ingest

import "strings"

// SplitIntoChunks breaks text into chunks of at most maxChars characters
// with overlap characters carried between consecutive chunks. Splits prefer
// paragraph and sentence boundaries near the cut point.
func SplitIntoChunks(text string, maxChars, overlap int) []string {
	text = strings.TrimSpace(normalizeText(text))
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = 1200
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = 0
	}
	if len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}
		cut := bestCut(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// bestCut looks backwards from end for a paragraph break, then a sentence
// end, then a space; falls back to a hard cut.
func bestCut(text string, start, end int) int {
	window := text[start:end]
	minCut := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > minCut {
		return start + i
	}
	for _, sep := range []string{". ", ".\n", "! ", "? "} {
		if i := strings.LastIndex(window, sep); i > minCut {
			return start + i + 1
		}
	}
	if i := strings.LastIndexByte(window, ' '); i > minCut {
		return start + i
	}
	return end
}
