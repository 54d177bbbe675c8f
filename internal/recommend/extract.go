package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AIResponseError means the model's reply carried no usable JSON. Callers
// treat it the same as an empty recommendation list and fall back to
// synthesized charts; it never aborts an analysis.
type AIResponseError struct {
	Reason string
}

func (e *AIResponseError) Error() string {
	return fmt.Sprintf("unusable AI response: %s", e.Reason)
}

// AIResponse is the JSON envelope the model is asked to produce.
type AIResponse struct {
	RecommendedCharts []RawRecommendation `json:"recommendedCharts"`
	RecommendedCards  []RawCard           `json:"recommendedCards"`
}

// RawCard is one untrusted dashboard-card suggestion.
type RawCard struct {
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Column string `json:"column"`
}

// ExtractJSON pulls the first balanced-looking JSON object out of free
// text by slicing from the first '{' to the last '}'. Models often wrap
// their JSON in prose or markdown fences; this recovers the object
// without caring about the wrapping.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseResponse extracts and decodes the model's reply. Any failure is an
// *AIResponseError; a decoded envelope with zero charts is returned as-is
// (the reconciler handles the empty case).
func ParseResponse(text string) (*AIResponse, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, &AIResponseError{Reason: "no JSON object found in reply"}
	}
	var resp AIResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &AIResponseError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return &resp, nil
}
