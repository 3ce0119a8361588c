package facts

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// cleanNarrative normalizes one narrative prose block: strips wrapping code
// fences, drops any HTML the model leaked into the text, and rejects blocks
// goldmark cannot parse (returning them as plain trimmed text).
func cleanNarrative(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	if strings.Contains(cleaned, "<") && strings.Contains(cleaned, ">") {
		cleaned = stripHTML(cleaned)
	}

	if !validMarkdown(cleaned) {
		return strings.TrimSpace(input)
	}
	return cleaned
}

// stripHTML flattens HTML fragments to their text content. Models sometimes
// emit <p>/<table> markup despite the JSON-only instruction.
func stripHTML(input string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return input
	}
	flattened := doc.Text()
	if strings.TrimSpace(flattened) == "" {
		return input
	}
	return strings.TrimSpace(flattened)
}

// validMarkdown checks the block parses under goldmark. Goldmark is very
// permissive, so this only rejects pathological input.
func validMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}
