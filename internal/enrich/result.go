// Package enrich orchestrates gene-set enrichment tests across
// independent annotation catalogs.
package enrich

import (
	"context"

	"github.com/inodb/vibe-pathway/internal/ranking"
)

// Catalog identifies one of the three independent annotation sources.
type Catalog string

const (
	CatalogOntology  Catalog = "GO"
	CatalogPathway   Catalog = "KEGG"
	CatalogSignature Catalog = "MSigDB"
)

// Catalogs lists all catalogs in canonical order.
var Catalogs = []Catalog{CatalogOntology, CatalogPathway, CatalogSignature}

// TestType identifies the statistical test consuming the gene list.
type TestType string

const (
	// TestRanked is a GSEA-style test over the full ranked list.
	TestRanked TestType = "GSEA"
	// TestOverRepresentation is an over-representation test over the
	// flat identifier set; order is irrelevant.
	TestOverRepresentation TestType = "ORA"
)

// Result is one scored term returned by a catalog query. Significance is
// computed by the engine; the orchestrator enforces the gate.
type Result struct {
	Catalog         Catalog
	Test            TestType
	TermID          string
	TermName        string
	PValue          float64
	PAdjusted       float64
	Score           float64
	NormalizedScore *float64
	SetSize         int
	CoreMemberIDs   []string
}

// Engine runs enrichment statistics. Implementations are external
// services; their algorithmic internals are opaque to this package.
type Engine interface {
	// RankedTest runs a GSEA-style test of a catalog against the full
	// ranked list.
	RankedTest(ctx context.Context, catalog Catalog, species string, list ranking.List) ([]Result, error)

	// OverRepresentationTest runs an over-representation test of a
	// catalog against an unranked identifier set.
	OverRepresentationTest(ctx context.Context, catalog Catalog, species string, ids []string) ([]Result, error)
}
