package catalog

import "strings"

// MatchResult is the outcome of classifying a document type label.
// A failed match is a result, not an error.
type MatchResult struct {
	Matches           bool   `json:"matches"`
	TriggerType       string `json:"trigger_type,omitempty"`
	MatchedPattern    string `json:"matched_pattern,omitempty"`
	ExpectedDeadlines int    `json:"expected_deadlines"`
}

// MatchDocument classifies a free-text document type label against the
// ordered pattern table. Matching is case-insensitive substring; the
// first matching pattern wins. The function is total: any input yields
// a result, never an error.
func (c *Catalog) MatchDocument(documentType, jurisdiction, courtType string) MatchResult {
	label := strings.ToLower(strings.TrimSpace(documentType))
	if label == "" {
		return MatchResult{}
	}
	for _, tp := range c.patterns {
		for _, pattern := range tp.Patterns {
			if strings.Contains(label, strings.ToLower(pattern)) {
				expected := 0
				for _, t := range c.Applicable(jurisdiction, courtType, tp.Type) {
					expected += len(t.Deadlines)
				}
				return MatchResult{
					Matches:           true,
					TriggerType:       tp.Type,
					MatchedPattern:    pattern,
					ExpectedDeadlines: expected,
				}
			}
		}
	}
	return MatchResult{}
}
