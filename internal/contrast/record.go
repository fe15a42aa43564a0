// Package contrast parses differential-expression contrast tables.
package contrast

// Column names used by the differential gene expression workflow's
// contrast outputs. The gene column header is empty in those files,
// which means "use the first unnamed column".
const (
	DefaultGeneColumn = ""
	ColLog2FoldChange = "log2FoldChange"
	ColPValue         = "pvalue"
	ColPAdjusted      = "padj"
)

// Record is one row of a contrast table, prior to identifier resolution.
// Gene names may be non-unique or stale accessions.
type Record struct {
	GeneName       string
	Log2FoldChange float64
	PValue         *float64
	PAdjusted      *float64
}
