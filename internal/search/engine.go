// Package search filters a dataset by a free-text term against the selected
// fields. Matching is case-insensitive substring containment; the match
// sequence preserves dataset order.
package search

import (
	"strings"

	"cardstock/domain/cards"
)

// Filter returns the order-preserving subsequence of dataset rows matching
// term under the given scope. The term is trimmed first; an empty or
// whitespace-only term is a no-op that returns every row. Scope cards.ScopeAll
// matches a row when any selected field contains the term; a named scope
// matches only against that field. Absent cell values are "" and never match
// a non-empty term.
func Filter(dataset cards.Dataset, fields cards.FieldSelection, term, scope string) []cards.RowRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return dataset.Rows
	}

	matches := make([]cards.RowRecord, 0, len(dataset.Rows))
	for _, row := range dataset.Rows {
		if rowMatches(row, fields, needle, scope) {
			matches = append(matches, row)
		}
	}
	return matches
}

func rowMatches(row cards.RowRecord, fields cards.FieldSelection, needle, scope string) bool {
	if scope != "" && scope != cards.ScopeAll {
		return strings.Contains(strings.ToLower(row.Value(scope)), needle)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(row.Value(field)), needle) {
			return true
		}
	}
	return false
}
