package dispatch

import (
	"slices"
	"strings"
)

// Origin describes where a request or capability was declared. Group is the
// coarse unit (a module or service), Path the fine-grained namespace within it,
// for example Origin{Group: "toolbox", Path: "toolbox/v1/pipeline"}.
type Origin struct {
	Group string
	Path  string
}

// Scorer computes the affinity between the origin of a request and the
// origin of a candidate exception action or handler. Higher scores run first.
type Scorer func(request, candidate Origin) int

// PriorityScore is the default Scorer. Bonuses are summed:
//   - 4 when both origins share the same Group
//   - 2 when the candidate Path is a prefix of the request Path
//   - 1 when the request Path contains the candidate Path
//
// An empty candidate Path is a prefix of every path and scores 3 against any
// request, 7 when the Groups are equal: as much as an exact match. A candidate
// registered without WithOrigin has the zero Origin and scores this way.
func PriorityScore(request, candidate Origin) int {
	score := 0
	if candidate.Group == request.Group {
		score += 4
	}
	if strings.HasPrefix(request.Path, candidate.Path) {
		score += 2
	}
	if strings.Contains(request.Path, candidate.Path) {
		score += 1
	}
	return score
}

// sortByPriority orders entries by descending score. Ties keep the order in
// which the resolver returned them.
func sortByPriority(request Origin, entries []Entry, score Scorer) []Entry {
	if len(entries) < 2 {
		return entries
	}
	type scored struct {
		entry Entry
		score int
	}
	items := make([]scored, len(entries))
	for i, e := range entries {
		items[i] = scored{entry: e, score: score(request, e.Origin)}
	}
	slices.SortStableFunc(items, func(a, b scored) int {
		return b.score - a.score
	})
	sorted := make([]Entry, len(items))
	for i, it := range items {
		sorted[i] = it.entry
	}
	return sorted
}
