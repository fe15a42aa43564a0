// Package ranking builds the ranked gene list consumed by enrichment tests.
package ranking

import "sort"

// Entry is one (canonical id, score) pair. Scores are the original fold
// changes, unmodified.
type Entry struct {
	ID    string
	Score float64
}

// List is a ranked gene list: unique canonical ids sorted by score
// descending, ties broken by input order.
type List []Entry

// EmptyRankingError indicates that no rows survived identifier
// resolution. Every downstream stage requires a non-empty ranking, so
// this must propagate as fatal.
type EmptyRankingError struct{}

func (e *EmptyRankingError) Error() string {
	return "ranked gene list is empty: no genes survived identifier resolution"
}

// Build constructs a ranked list from resolved entries. Duplicate
// canonical ids keep the first occurrence in input order.
func Build(entries []Entry) (List, error) {
	seen := make(map[string]struct{}, len(entries))
	list := make(List, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		list = append(list, e)
	}

	if len(list) == 0 {
		return nil, &EmptyRankingError{}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})

	return list, nil
}

// IDs returns the ranked ids in order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, e := range l {
		ids[i] = e.ID
	}
	return ids
}

// IDSet returns the ids as an unordered set, for over-representation
// tests where order is irrelevant.
func (l List) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l))
	for _, e := range l {
		set[e.ID] = struct{}{}
	}
	return set
}
