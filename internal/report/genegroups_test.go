package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKGML = `<?xml version="1.0"?>
<pathway name="path:hsa04110" org="hsa" number="04110">
  <entry id="1" name="hsa:7157 hsa:3845" type="gene">
    <graphics name="TP53, KRAS, EGFR..." type="rectangle" x="100" y="50" width="46" height="17"/>
  </entry>
  <entry id="2" name="hsa:99999" type="gene">
    <graphics name="NOVEL1" type="rectangle" x="200" y="80" width="46" height="17"/>
  </entry>
  <entry id="3" name="hsa:7157" type="gene">
    <graphics name="TP53" type="line" x="0" y="0" width="0" height="0"/>
  </entry>
  <entry id="4" name="cpd:C00001" type="compound">
    <graphics name="H2O" type="circle" x="10" y="10" width="8" height="8"/>
  </entry>
</pathway>`

func TestParseGeneGroups(t *testing.T) {
	idToName := map[string]string{"7157": "TP53", "3845": "KRAS"}
	contrastGenes := map[string]struct{}{
		"TP53": {}, "KRAS": {}, "EGFR": {},
	}

	groups, err := ParseGeneGroups(strings.NewReader(sampleKGML), 1600, "hsa", idToName, contrastGenes)
	require.NoError(t, err)

	// Entry 2 has no resolvable genes, entry 3 is a line graphic, entry
	// 4 is not a gene entry.
	require.Len(t, groups, 1)
	g := groups[0]

	assert.True(t, g.Core)
	require.Len(t, g.Genes, 3)
	assert.Equal(t, GroupGene{Name: "TP53", Core: true}, g.Genes[0])
	assert.Equal(t, GroupGene{Name: "KRAS", Core: true}, g.Genes[1])
	// EGFR comes from the truncated region label and is in the contrast
	// universe but not a core member.
	assert.Equal(t, GroupGene{Name: "EGFR", Core: false}, g.Genes[2])
}

func TestParseGeneGroups_ScalesAndShiftsRect(t *testing.T) {
	idToName := map[string]string{"7157": "TP53", "3845": "KRAS"}

	groups, err := ParseGeneGroups(strings.NewReader(sampleKGML), 1600, "hsa", idToName, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	// Scale 800/1600 = 0.5, then shift x,y from center to top-left.
	view := groups[0].View
	assert.InDelta(t, 38.5, view.X, 1e-9)
	assert.InDelta(t, 20.75, view.Y, 1e-9)
	assert.InDelta(t, 23.0, view.Width, 1e-9)
	assert.InDelta(t, 8.5, view.Height, 1e-9)
}

func TestParseGeneGroups_OtherSpeciesPrefixIgnored(t *testing.T) {
	idToName := map[string]string{"7157": "TP53"}

	groups, err := ParseGeneGroups(strings.NewReader(sampleKGML), 1600, "mmu", idToName, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestParseGeneGroups_BadXML(t *testing.T) {
	_, err := ParseGeneGroups(strings.NewReader("not xml"), 800, "hsa", nil, nil)
	require.Error(t, err)
}
