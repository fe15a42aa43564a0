// Package selection picks the report-ready top pathways from enrichment
// results and builds the gene-set membership index.
package selection

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/annotation"
	"github.com/inodb/vibe-pathway/internal/enrich"
)

// Namer reverse-maps canonical ids to display names.
type Namer interface {
	GeneNames(ids []string) (map[string]string, error)
}

// Selected pairs one selected enrichment result with the display names
// of its core members, index-aligned with CoreMemberIDs.
type Selected struct {
	Result        enrich.Result
	CoreGeneNames []string
}

// TopN returns the top n results ordered by enrichment score descending.
// If fewer than n results exist, all of them are returned; the input is
// never mutated.
func TopN(results []enrich.Result, n int) []enrich.Result {
	sorted := append([]enrich.Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Select picks the top n results and expands each one's core member ids
// into display names. A member id with no resolvable name is kept as a
// visible placeholder so gene counts stay consistent with the set size.
func Select(results []enrich.Result, n int, namer Namer, logger *zap.Logger) ([]Selected, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	top := TopN(results, n)
	selected := make([]Selected, 0, len(top))
	for _, r := range top {
		names, err := namer.GeneNames(r.CoreMemberIDs)
		if err != nil {
			return nil, fmt.Errorf("expand core genes for %s: %w", r.TermID, err)
		}

		coreNames := make([]string, len(r.CoreMemberIDs))
		for i, id := range r.CoreMemberIDs {
			if name, ok := names[id]; ok && name != "" {
				coreNames[i] = name
				continue
			}
			logger.Debug("no display name for core member, keeping placeholder",
				zap.String("term", r.TermID),
				zap.String("id", id))
			coreNames[i] = Placeholder(id)
		}

		selected = append(selected, Selected{Result: r, CoreGeneNames: coreNames})
	}
	return selected, nil
}

// Placeholder is the visible stand-in for an id with no display name.
func Placeholder(id string) string {
	return "entrez:" + id
}

// GeneSetEntry holds the membership of one term; MemberNames is
// index-aligned with MemberIDs.
type GeneSetEntry struct {
	MemberIDs   []string
	MemberNames []string
}

// GeneSetIndex maps term ids to their membership. It covers the full
// tested universe, not only selected terms, because the diagram overlay
// must resolve membership for sets the user did not select directly.
type GeneSetIndex struct {
	Order   []string
	Entries map[string]GeneSetEntry
}

// BuildIndex builds the gene-set index over all tested sets.
func BuildIndex(sets []annotation.GeneSet) GeneSetIndex {
	index := GeneSetIndex{
		Entries: make(map[string]GeneSetEntry, len(sets)),
	}
	for _, set := range sets {
		if _, dup := index.Entries[set.TermID]; dup {
			continue
		}
		index.Order = append(index.Order, set.TermID)
		index.Entries[set.TermID] = GeneSetEntry{
			MemberIDs:   set.MemberIDs,
			MemberNames: set.MemberNames,
		}
	}
	return index
}
