// Package jsonrepair recovers JSON payloads from raw LLM output. Models are
// asked for strict JSON but routinely wrap it in markdown fences, prose or
// leave trailing commas; parsing is best-effort and ends in a ParseError
// carrying a truncated copy of the raw text.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const rawLimit = 500

var (
	fenceRe         = regexp.MustCompile("(?m)^```(?:json)?\\s*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	objectRe        = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseError reports that no repair strategy produced valid JSON.
type ParseError struct {
	Raw string // truncated raw model output
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from model. Raw output (truncated): %s", e.Raw)
}

func newParseError(raw string) *ParseError {
	raw = strings.TrimSpace(raw)
	if len(raw) > rawLimit {
		raw = raw[:rawLimit] + "..."
	}
	return &ParseError{Raw: raw}
}

// ParseList extracts a list of JSON objects. A single top-level object is
// accepted and wrapped into a one-element list.
func ParseList(text string) ([]map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newParseError(text)
	}
	candidates := []string{text, stripFences(text)}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start != -1 && end > start {
		candidates = append(candidates, text[start:end+1])
	}
	// Trailing-comma cleanup applies to every candidate shape.
	base := len(candidates)
	for i := 0; i < base; i++ {
		candidates = append(candidates, trailingCommaRe.ReplaceAllString(candidates[i], "$1"))
	}
	for _, c := range candidates {
		if items, ok := decodeList(c); ok {
			return items, nil
		}
	}
	return nil, newParseError(text)
}

// ParseObject extracts a single JSON object: direct parse, fence stripping,
// then the outermost {...} span.
func ParseObject(text string) (map[string]any, error) {
	candidates := []string{text, stripFences(text)}
	if m := objectRe.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	base := len(candidates)
	for i := 0; i < base; i++ {
		candidates = append(candidates, trailingCommaRe.ReplaceAllString(candidates[i], "$1"))
	}
	for _, c := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(c)), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}
	return nil, newParseError(text)
}

func decodeList(text string) ([]map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var list []map[string]any
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, true
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return []map[string]any{obj}, true
	}
	return nil, false
}

func stripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(text), ""))
}
