package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
)

// rawReview mirrors the JSON schema the prompts demand, with pointer fields so
// absent and zero values stay distinguishable for validation.
type rawReview struct {
	MergeScore     *float64           `json:"mergeScore"`
	Confidence     *float64           `json:"confidence"`
	Summary        *string            `json:"summary"`
	QualityMetrics map[string]float64 `json:"qualityMetrics"`
	Suggestions    json.RawMessage    `json:"suggestions"`
}

type rawSuggestion struct {
	File          string  `json:"file"`
	Line          float64 `json:"line"`
	Severity      string  `json:"severity"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Reasoning     string  `json:"reasoning"`
	SuggestedCode string  `json:"suggestedCode"`
}

// parseStructuredReview turns the model's raw response into a validated
// StructuredReview. Sanitization always runs before validation: values are
// clamped into range and malformed suggestions are dropped individually, so a
// single bad entry never discards an otherwise usable review.
func parseStructuredReview(response string) (*core.StructuredReview, error) {
	payload := stripJSONFence(response)

	var raw rawReview
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if raw.MergeScore == nil {
		return nil, fmt.Errorf("response is missing required field %q", "mergeScore")
	}
	if raw.Confidence == nil {
		return nil, fmt.Errorf("response is missing required field %q", "confidence")
	}
	if raw.Summary == nil || strings.TrimSpace(*raw.Summary) == "" {
		return nil, fmt.Errorf("response is missing required field %q", "summary")
	}

	suggestions, err := parseSuggestions(raw.Suggestions)
	if err != nil {
		return nil, err
	}

	review := &core.StructuredReview{
		MergeScore:  clampInt(*raw.MergeScore, 0, 100),
		Confidence:  clampFloat(*raw.Confidence, 0, 1),
		Summary:     strings.TrimSpace(*raw.Summary),
		Suggestions: suggestions,
	}

	if len(raw.QualityMetrics) > 0 {
		review.QualityMetrics = make(map[string]int, len(raw.QualityMetrics))
		for name, value := range raw.QualityMetrics {
			review.QualityMetrics[name] = clampInt(value, 0, 100)
		}
	}

	return review, nil
}

// parseSuggestions decodes the suggestions array and drops entries missing
// any of the three required fields: description, type, severity.
func parseSuggestions(raw json.RawMessage) ([]core.Suggestion, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("response is missing required field %q", "suggestions")
	}

	var entries []rawSuggestion
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("suggestions is not a list: %w", err)
	}

	suggestions := make([]core.Suggestion, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Description) == "" ||
			strings.TrimSpace(entry.Type) == "" ||
			strings.TrimSpace(entry.Severity) == "" {
			continue
		}
		suggestions = append(suggestions, core.Suggestion{
			File:          entry.File,
			Line:          int(entry.Line),
			Severity:      strings.ToLower(strings.TrimSpace(entry.Severity)),
			Type:          strings.ToLower(strings.TrimSpace(entry.Type)),
			Description:   strings.TrimSpace(entry.Description),
			Reasoning:     strings.TrimSpace(entry.Reasoning),
			SuggestedCode: entry.SuggestedCode,
		})
	}
	return suggestions, nil
}

// stripJSONFence removes a wrapping ```json ... ``` fence if the model added
// one despite instructions, and trims any stray prose around the outermost
// JSON object.
func stripJSONFence(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```") {
		if idx := strings.Index(trimmed, "\n"); idx >= 0 {
			inner := trimmed[idx+1:]
			if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
				inner = inner[:lastFence]
			}
			trimmed = strings.TrimSpace(inner)
		}
	}

	// Some models prepend a sentence before the object. Cut to the outermost
	// braces when both are present.
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func clampInt(v float64, lo, hi int) int {
	n := int(math.Round(v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
