package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pathway/internal/annotation"
	"github.com/inodb/vibe-pathway/internal/enrich"
)

type fakeNamer struct {
	names map[string]string
	err   error
}

func (n *fakeNamer) GeneNames(ids []string) (map[string]string, error) {
	if n.err != nil {
		return nil, n.err
	}
	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := n.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func results(scores ...float64) []enrich.Result {
	rs := make([]enrich.Result, len(scores))
	for i, s := range scores {
		rs[i] = enrich.Result{TermID: string(rune('a' + i)), Score: s}
	}
	return rs
}

func TestTopN_OrdersByScoreDescending(t *testing.T) {
	top := TopN(results(0.3, 0.9, 0.5), 2)
	require.Len(t, top, 2)
	assert.Equal(t, 0.9, top[0].Score)
	assert.Equal(t, 0.5, top[1].Score)
}

func TestTopN_FewerThanNReturnsAll(t *testing.T) {
	top := TopN(results(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7), 20)
	assert.Len(t, top, 7)
}

func TestTopN_DoesNotMutateInput(t *testing.T) {
	in := results(0.1, 0.9)
	TopN(in, 1)
	assert.Equal(t, 0.1, in[0].Score)
}

func TestSelect_ExpandsCoreGenes(t *testing.T) {
	rs := []enrich.Result{{
		TermID:        "hsa04110",
		Score:         0.8,
		CoreMemberIDs: []string{"7157", "3845"},
	}}
	namer := &fakeNamer{names: map[string]string{"7157": "TP53", "3845": "KRAS"}}

	selected, err := Select(rs, 10, namer, nil)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, []string{"TP53", "KRAS"}, selected[0].CoreGeneNames)
}

func TestSelect_UnresolvableIDKeepsPlaceholder(t *testing.T) {
	rs := []enrich.Result{{
		TermID:        "hsa04110",
		Score:         0.8,
		CoreMemberIDs: []string{"7157", "424242"},
	}}
	namer := &fakeNamer{names: map[string]string{"7157": "TP53"}}

	selected, err := Select(rs, 10, namer, nil)
	require.NoError(t, err)

	// Counts stay consistent with the upstream set size.
	require.Len(t, selected[0].CoreGeneNames, 2)
	assert.Equal(t, "TP53", selected[0].CoreGeneNames[0])
	assert.Equal(t, "entrez:424242", selected[0].CoreGeneNames[1])
}

func TestSelect_NamerFailurePropagates(t *testing.T) {
	rs := []enrich.Result{{TermID: "x", CoreMemberIDs: []string{"1"}}}
	namer := &fakeNamer{err: errors.New("store closed")}

	_, err := Select(rs, 10, namer, nil)
	require.Error(t, err)
}

func TestBuildIndex_CoversFullUniverse(t *testing.T) {
	sets := []annotation.GeneSet{
		{TermID: "hsa04110", MemberIDs: []string{"7157"}, MemberNames: []string{"TP53"}},
		{TermID: "hsa04115", MemberIDs: []string{"3845"}, MemberNames: []string{"KRAS"}},
		{TermID: "hsa04150", MemberIDs: []string{"672"}, MemberNames: []string{"BRCA1"}},
	}

	index := BuildIndex(sets)
	assert.Equal(t, []string{"hsa04110", "hsa04115", "hsa04150"}, index.Order)

	// A term excluded from any top-N selection is still queryable.
	entry, ok := index.Entries["hsa04150"]
	require.True(t, ok)
	assert.Equal(t, []string{"672"}, entry.MemberIDs)
	assert.Equal(t, []string{"BRCA1"}, entry.MemberNames)
}
