package view

import "strings"

// Filter returns the records with at least one non-null value whose display
// form contains query, compared case-insensitively. Original order is kept
// and records is never modified. An empty query returns every record.
func Filter(records []Record, query string) []Record {
	if query == "" {
		return records[:len(records):len(records)]
	}

	q := strings.ToLower(query)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether any value of r contains the already-lowercased
// query.
func Matches(r Record, lowerQuery string) bool {
	for _, f := range r.fields {
		s, ok := FormatValue(f.Value)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	return false
}
