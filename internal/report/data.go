// Package report assembles and serializes the self-contained data
// snapshot the interactive report runtime operates on.
package report

import (
	"fmt"
	"strconv"

	"github.com/inodb/vibe-pathway/internal/contrast"
	"github.com/inodb/vibe-pathway/internal/selection"
)

// PathwayRecord is the report-facing projection of one selected
// enrichment result. Numeric fields are pre-formatted display strings;
// the report's sort comparator falls back to string comparison when a
// value does not parse as a number.
type PathwayRecord struct {
	PathwayID                 string   `json:"pathwayId"`
	PathwayName               string   `json:"pathwayName"`
	PValue                    string   `json:"pValue"`
	PAdjusted                 string   `json:"pAdjusted"`
	EnrichmentScore           string   `json:"enrichmentScore"`
	NormalizedEnrichmentScore string   `json:"normalizedEnrichmentScore"`
	GeneSetSize               string   `json:"geneSetSize"`
	LeadingEdgeSize           string   `json:"leadingEdgeSize"`
	CoreEnrichedGenes         []string `json:"coreEnrichedGenes"`

	// CoreEntrezIDs is the raw identifier list, index-aligned with
	// CoreEnrichedGenes. Used for the diagram overlay join, not shown
	// in the pathway table.
	CoreEntrezIDs []string `json:"-"`
}

// NewPathwayRecord derives a record from a selected enrichment result.
func NewPathwayRecord(sel selection.Selected) PathwayRecord {
	r := sel.Result
	nes := "NA"
	if r.NormalizedScore != nil {
		nes = fmt.Sprintf("%.6g", *r.NormalizedScore)
	}
	return PathwayRecord{
		PathwayID:                 r.TermID,
		PathwayName:               r.TermName,
		PValue:                    fmt.Sprintf("%.3g", r.PValue),
		PAdjusted:                 fmt.Sprintf("%.3g", r.PAdjusted),
		EnrichmentScore:           fmt.Sprintf("%.6g", r.Score),
		NormalizedEnrichmentScore: nes,
		GeneSetSize:               strconv.Itoa(r.SetSize),
		LeadingEdgeSize:           strconv.Itoa(len(sel.CoreGeneNames)),
		CoreEnrichedGenes:         sel.CoreGeneNames,
		CoreEntrezIDs:             r.CoreMemberIDs,
	}
}

// NewPathwayRecords derives records for a whole selection, preserving
// order.
func NewPathwayRecords(selected []selection.Selected) []PathwayRecord {
	records := make([]PathwayRecord, len(selected))
	for i, sel := range selected {
		records[i] = NewPathwayRecord(sel)
	}
	return records
}

// Pathview references one rendered pathway diagram image.
type Pathview struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Data is the complete report data contract. It is consumable without
// re-running any enrichment step.
type Data struct {
	ReportName string `json:"reportName"`

	// PathwayData is the ordered top-N pathway selection.
	PathwayData []PathwayRecord `json:"pathwayData"`

	// ContrastData maps gene name to formatted
	// [log2FoldChange, pValue, pAdjusted].
	ContrastData map[string][]string `json:"contrastData"`

	// PathwayIDToGeneSets maps pathway id to [member ids, member names],
	// index-aligned.
	PathwayIDToGeneSets map[string][2][]string `json:"pathwayIdToGeneSets"`

	// PathwayIDToGeneGroups maps pathway id to its diagram gene groups.
	PathwayIDToGeneGroups map[string][]GeneGroup `json:"pathwayIdToGeneGroups"`

	Pathviews []Pathview `json:"pathviews"`
}

// ContrastData projects contrast records to the report's per-gene lookup
// format. Absent p-values render as "NA".
func ContrastData(records []contrast.Record) map[string][]string {
	data := make(map[string][]string, len(records))
	for _, rec := range records {
		if _, dup := data[rec.GeneName]; dup {
			continue
		}
		data[rec.GeneName] = []string{
			fmt.Sprintf("%.4g", rec.Log2FoldChange),
			formatOptional(rec.PValue),
			formatOptional(rec.PAdjusted),
		}
	}
	return data
}

func formatOptional(v *float64) string {
	if v == nil {
		return "NA"
	}
	return fmt.Sprintf("%.3g", *v)
}

// GeneSetsFor projects the gene-set index to the report contract,
// restricted to the given pathway ids.
func GeneSetsFor(index selection.GeneSetIndex, ids []string) map[string][2][]string {
	out := make(map[string][2][]string, len(ids))
	for _, id := range ids {
		entry, ok := index.Entries[id]
		if !ok {
			continue
		}
		out[id] = [2][]string{entry.MemberIDs, entry.MemberNames}
	}
	return out
}
