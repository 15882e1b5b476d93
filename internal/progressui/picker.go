package progressui

import "github.com/sahilm/fuzzy"

// FilterJobs fuzzy-matches query against names, ranked best match first,
// so an abbreviation ("db" for "database-backup") finds the full name.
// An empty query returns names unchanged.
func FilterJobs(names []string, query string) []string {
	if query == "" {
		return names
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
