package viewstate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-pathway/internal/report"
)

// Pathway-table sort keys map to record field accessors.
var pathwayFields = map[string]func(report.PathwayRecord) string{
	"pathwayId":                 func(r report.PathwayRecord) string { return r.PathwayID },
	"pathwayName":               func(r report.PathwayRecord) string { return r.PathwayName },
	"pValue":                    func(r report.PathwayRecord) string { return r.PValue },
	"pAdjusted":                 func(r report.PathwayRecord) string { return r.PAdjusted },
	"enrichmentScore":           func(r report.PathwayRecord) string { return r.EnrichmentScore },
	"normalizedEnrichmentScore": func(r report.PathwayRecord) string { return r.NormalizedEnrichmentScore },
	"geneSetSize":               func(r report.PathwayRecord) string { return r.GeneSetSize },
	"leadingEdgeSize":           func(r report.PathwayRecord) string { return r.LeadingEdgeSize },
}

// GeneRow is one gene-table row.
type GeneRow struct {
	Name           string
	Log2FoldChange string
	PValue         string
	PAdjusted      string
	Metadata       GeneInfo
}

var geneFields = map[string]func(GeneRow) string{
	"name":           func(r GeneRow) string { return r.Name },
	"log2FoldChange": func(r GeneRow) string { return r.Log2FoldChange },
	"pValue":         func(r GeneRow) string { return r.PValue },
	"pAdjusted":      func(r GeneRow) string { return r.PAdjusted },
}

// PathwayRows derives the pathway table: rows whose core enriched genes
// contain every filter gene (logical AND across filter terms), in the
// current sort order.
func (m *Model) PathwayRows() []report.PathwayRecord {
	rows := make([]report.PathwayRecord, 0, len(m.data.PathwayData))
	for _, rec := range m.data.PathwayData {
		if m.pathwayMatchesFilter(rec) {
			rows = append(rows, rec)
		}
	}

	if field, ok := pathwayFields[m.sortKey]; ok {
		sort.SliceStable(rows, m.less(func(i, j int) int {
			return compareDisplay(field(rows[i]), field(rows[j]))
		}))
	}
	return rows
}

// pathwayMatchesFilter applies superset semantics: every filter gene
// must be among the row's core enriched genes.
func (m *Model) pathwayMatchesFilter(rec report.PathwayRecord) bool {
	for _, want := range m.geneFilter {
		found := false
		for _, g := range rec.CoreEnrichedGenes {
			if g == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GeneRows derives the gene table from the view-gene set: rows whose
// name is a member of the filter set (membership semantics, not the
// pathway table's AND semantics), in the current sort order.
func (m *Model) GeneRows() []GeneRow {
	rows := make([]GeneRow, 0, len(m.viewGenes))
	for _, name := range m.viewGenes {
		if len(m.filterSet) > 0 {
			if _, ok := m.filterSet[name]; !ok {
				continue
			}
		}
		rows = append(rows, m.geneRow(name))
	}

	if field, ok := geneFields[m.sortKey]; ok {
		sort.SliceStable(rows, m.less(func(i, j int) int {
			return compareDisplay(field(rows[i]), field(rows[j]))
		}))
	}
	return rows
}

func (m *Model) geneRow(name string) GeneRow {
	row := GeneRow{
		Name:           name,
		Log2FoldChange: "NA",
		PValue:         "NA",
		PAdjusted:      "NA",
	}
	if values, ok := m.data.ContrastData[name]; ok && len(values) == 3 {
		row.Log2FoldChange = values[0]
		row.PValue = values[1]
		row.PAdjusted = values[2]
	}
	if m.meta != nil {
		if id, ok := m.nameToID[name]; ok {
			row.Metadata = m.meta.Get(id)
		} else {
			row.Metadata = GeneInfo{State: MetadataUnavailable}
		}
	}
	return row
}

// OverlayGene is one gene in a diagram overlay region, annotated with
// whether it is currently in view.
type OverlayGene struct {
	Name   string
	Core   bool
	InView bool
}

// OverlayGroup is one diagram region of the selected pathway.
type OverlayGroup struct {
	View  report.ViewRect
	Core  bool
	Genes []OverlayGene
}

// OverlayGroups derives the diagram overlay for the selected pathway.
func (m *Model) OverlayGroups() []OverlayGroup {
	groups := m.data.PathwayIDToGeneGroups[m.selectedPathwayID]
	out := make([]OverlayGroup, len(groups))
	for i, g := range groups {
		og := OverlayGroup{View: g.View, Core: g.Core, Genes: make([]OverlayGene, len(g.Genes))}
		for j, gene := range g.Genes {
			_, inView := m.viewSet[gene.Name]
			og.Genes[j] = OverlayGene{Name: gene.Name, Core: gene.Core, InView: inView}
		}
		out[i] = og
	}
	return out
}

// FoldChangePoint is one bar of the fold-change plot.
type FoldChangePoint struct {
	Name           string
	Log2FoldChange float64
}

// FoldChangePoints derives the fold-change plot from the view genes, in
// view order. Genes without contrast data are omitted from the plot.
func (m *Model) FoldChangePoints() []FoldChangePoint {
	var points []FoldChangePoint
	for _, name := range m.viewGenes {
		values, ok := m.data.ContrastData[name]
		if !ok || len(values) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			continue
		}
		points = append(points, FoldChangePoint{Name: name, Log2FoldChange: v})
	}
	return points
}

// less turns a three-way comparison into a less function honoring the
// current sort direction.
func (m *Model) less(cmp func(i, j int) int) func(i, j int) bool {
	if m.sortAscending {
		return func(i, j int) bool { return cmp(i, j) < 0 }
	}
	return func(i, j int) bool { return cmp(i, j) > 0 }
}

// compareDisplay compares two display values numerically when both
// parse as numbers, lexicographically otherwise.
func compareDisplay(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
