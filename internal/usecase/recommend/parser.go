package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// assistantResponse is the JSON shape the prompt demands.
type assistantResponse struct {
	Recommendations []assistantPick `json:"recommendations"`
	Summary         string          `json:"summary"`
}

type assistantPick struct {
	ID        flexID `json:"id"`
	Reasoning string `json:"reasoning"`
}

// flexID accepts both "42" and 42: models return product IDs as
// strings or numbers interchangeably.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	return fmt.Errorf("id is neither string nor number: %s", data)
}

// parseResponse strips markdown code fences and decodes the selection.
// A response without a recommendations array is a parse failure; the
// caller falls back rather than serving an empty selection.
func parseResponse(text string) (*assistantResponse, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var resp assistantResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("decode assistant response: %w", err)
	}
	if resp.Recommendations == nil {
		return nil, fmt.Errorf("assistant response has no recommendations array")
	}
	return &resp, nil
}

// normalizeID mirrors the string comparison used when mapping picks
// back to candidates. Models occasionally format an integer id as
// "42.0"; that still matches "42". No numeric parsing, so ids longer
// than float precision keep every digit and "007" stays distinct
// from "7".
func normalizeID(id string) string {
	if trimmed, ok := strings.CutSuffix(id, ".0"); ok && isDigits(trimmed) {
		return trimmed
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
