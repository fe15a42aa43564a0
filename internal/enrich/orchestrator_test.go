package enrich

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pathway/internal/ranking"
	"github.com/inodb/vibe-pathway/internal/signals"
)

// fakeEngine returns canned results per catalog, or fails a catalog
// entirely.
type fakeEngine struct {
	ranked   map[Catalog][]Result
	over     map[Catalog][]Result
	fail     map[Catalog]error
	failOver map[Catalog]error
}

func (e *fakeEngine) RankedTest(ctx context.Context, catalog Catalog, species string, list ranking.List) ([]Result, error) {
	if err := e.fail[catalog]; err != nil {
		return nil, err
	}
	return e.ranked[catalog], nil
}

func (e *fakeEngine) OverRepresentationTest(ctx context.Context, catalog Catalog, species string, ids []string) ([]Result, error) {
	if err := e.fail[catalog]; err != nil {
		return nil, err
	}
	if err := e.failOver[catalog]; err != nil {
		return nil, err
	}
	return e.over[catalog], nil
}

func testList(t *testing.T) ranking.List {
	t.Helper()
	list, err := ranking.Build([]ranking.Entry{
		{ID: "7157", Score: 2.5},
		{ID: "3845", Score: -1.2},
	})
	require.NoError(t, err)
	return list
}

func allRuns() []CatalogRun {
	return []CatalogRun{
		{Catalog: CatalogOntology, Species: "org.Hs.eg.db"},
		{Catalog: CatalogPathway, Species: "hsa"},
		{Catalog: CatalogSignature, Species: "Homo sapiens"},
	}
}

func TestOrchestrator_SignificanceGate(t *testing.T) {
	engine := &fakeEngine{
		ranked: map[Catalog][]Result{
			CatalogPathway: {
				{TermID: "hsa04110", PValue: 0.001, PAdjusted: 0.01, Score: 0.8},
				{TermID: "hsa04115", PValue: 0.2, PAdjusted: 0.4, Score: 0.5},
			},
		},
	}

	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))
	batches := o.Run(context.Background(), []CatalogRun{{Catalog: CatalogPathway, Species: "hsa"}}, testList(t))

	require.Len(t, batches, 1)
	require.Len(t, batches[0].Ranked, 1)
	assert.Equal(t, "hsa04110", batches[0].Ranked[0].TermID)
	assert.Equal(t, CatalogPathway, batches[0].Ranked[0].Catalog)
	assert.Equal(t, TestRanked, batches[0].Ranked[0].Test)
}

func TestOrchestrator_EmptyPairEmitsWarning(t *testing.T) {
	engine := &fakeEngine{
		ranked: map[Catalog][]Result{
			CatalogPathway: {{TermID: "hsa04110", PAdjusted: 0.01, Score: 0.8}},
		},
	}

	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))
	batches := o.Run(context.Background(), allRuns(), testList(t))

	require.Len(t, batches, 3)

	// Ontology and Signature came back empty for both tests; Pathway's
	// over-representation pass was empty too.
	msgs := signals.ScanWarnings(warnings.String())
	assert.Len(t, msgs, 5)

	joined := warnings.String()
	assert.Contains(t, joined, "GO")
	assert.Contains(t, joined, "MSigDB")
	assert.Contains(t, joined, string(TestOverRepresentation))

	// The empty pairs are advisory, not errors.
	for _, b := range batches {
		assert.NoError(t, b.Err)
	}
}

func TestOrchestrator_CatalogFailureIsIsolated(t *testing.T) {
	engine := &fakeEngine{
		fail: map[Catalog]error{CatalogOntology: errors.New("annotation source unavailable")},
		ranked: map[Catalog][]Result{
			CatalogPathway:   {{TermID: "hsa04110", PAdjusted: 0.01, Score: 0.8}},
			CatalogSignature: {{TermID: "HALLMARK_APOPTOSIS", PAdjusted: 0.02, Score: 0.6}},
		},
		over: map[Catalog][]Result{
			CatalogPathway: {{TermID: "hsa04115", PAdjusted: 0.03, Score: 0.4}},
		},
	}

	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))
	batches := o.Run(context.Background(), allRuns(), testList(t))

	require.Len(t, batches, 3)
	assert.Error(t, batches[0].Err)

	// Failure in one catalog does not abort the other two.
	require.Len(t, batches[1].Ranked, 1)
	require.Len(t, batches[1].OverRepresented, 1)
	require.Len(t, batches[2].Ranked, 1)
	assert.NoError(t, batches[1].Err)
	assert.NoError(t, batches[2].Err)
}

func TestOrchestrator_RankedResultsSurviveOverRepresentationFailure(t *testing.T) {
	engine := &fakeEngine{
		ranked: map[Catalog][]Result{
			CatalogPathway: {{TermID: "hsa04110", PAdjusted: 0.01, Score: 0.8}},
		},
		failOver: map[Catalog]error{CatalogPathway: errors.New("over-representation backend down")},
	}

	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))
	batches := o.Run(context.Background(), []CatalogRun{{Catalog: CatalogPathway, Species: "hsa"}}, testList(t))

	require.Len(t, batches, 1)
	assert.Error(t, batches[0].Err)
	assert.Empty(t, batches[0].OverRepresented)

	// The ranked pair passed its gate before the failure; its results
	// stay available to downstream table writers.
	require.Len(t, batches[0].Ranked, 1)
	assert.Equal(t, "hsa04110", batches[0].Ranked[0].TermID)
}

func TestOrchestrator_BatchOrderMatchesRuns(t *testing.T) {
	engine := &fakeEngine{}
	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))

	batches := o.Run(context.Background(), allRuns(), testList(t))
	require.Len(t, batches, 3)
	assert.Equal(t, CatalogOntology, batches[0].Catalog)
	assert.Equal(t, CatalogPathway, batches[1].Catalog)
	assert.Equal(t, CatalogSignature, batches[2].Catalog)
}

func TestOrchestrator_SetAlpha(t *testing.T) {
	engine := &fakeEngine{
		ranked: map[Catalog][]Result{
			CatalogPathway: {{TermID: "hsa04110", PAdjusted: 0.2, Score: 0.8}},
		},
	}

	var warnings bytes.Buffer
	o := NewOrchestrator(engine, signals.NewEmitter(&warnings))
	o.SetAlpha(0.25)

	batches := o.Run(context.Background(), []CatalogRun{{Catalog: CatalogPathway, Species: "hsa"}}, testList(t))
	require.Len(t, batches[0].Ranked, 1)
}
