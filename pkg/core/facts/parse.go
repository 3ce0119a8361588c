package facts

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrMalformedPayload marks a provider response that failed structural
// validation after all repair strategies. Fatal: never retried.
var ErrMalformedPayload = errors.New("malformed provider payload")

var markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)

// extractObject slices the response down to its outermost JSON object,
// dropping markdown fences, grounding citation blocks and any conversational
// filler the model wrapped around it.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parsePayload decodes the model response into the payload schema, trying
// strategies from strictest to most lenient:
//  1. standard JSON decode,
//  2. json-repair (unquoted keys, trailing commas, unclosed brackets),
//  3. hjson (most permissive).
//
// A response that defeats all three is a malformed-payload failure.
func parsePayload(text string) (*payload, error) {
	raw, ok := extractObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedPayload)
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return validatePayload(&p)
	}

	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		p = payload{}
		if err := json.Unmarshal([]byte(repaired), &p); err == nil {
			return validatePayload(&p)
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(raw), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			p = payload{}
			if err := json.Unmarshal(normalized, &p); err == nil {
				return validatePayload(&p)
			}
		}
	}

	return nil, fmt.Errorf("%w: all parse strategies failed", ErrMalformedPayload)
}

// validatePayload enforces the minimum the orchestration core depends on: a
// non-empty time series with identified years. Everything else may degrade to
// its zero value without breaking derivation or caching.
func validatePayload(p *payload) (*payload, error) {
	if len(p.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w: empty time_series", ErrMalformedPayload)
	}
	for _, rec := range p.TimeSeries {
		if rec.Year == 0 {
			return nil, fmt.Errorf("%w: time_series entry without year", ErrMalformedPayload)
		}
	}
	return p, nil
}

// extractCitationLinks pulls grounding citation URLs the provider appended
// after the JSON body (the "**Sources:**" block of markdown links).
func extractCitationLinks(text string) []string {
	end := strings.LastIndex(text, "}")
	if end < 0 || end+1 >= len(text) {
		return nil
	}
	tail := text[end+1:]

	var links []string
	for _, match := range markdownLinkRe.FindAllStringSubmatch(tail, -1) {
		links = append(links, match[1])
	}
	return links
}

// mergeSources combines payload-reported sources with grounding citations,
// deduplicated, payload order first.
func mergeSources(reported, citations []string) []string {
	seen := make(map[string]bool, len(reported)+len(citations))
	var out []string
	for _, s := range append(append([]string{}, reported...), citations...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
