package enrich

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/ranking"
	"github.com/inodb/vibe-pathway/internal/signals"
)

// DefaultAlpha is the conventional significance threshold.
const DefaultAlpha = 0.05

// CatalogRun names one catalog pass and the species identifier that
// catalog uses for the organism.
type CatalogRun struct {
	Catalog Catalog
	Species string
}

// Batch holds the gated results of one catalog pass. A failed catalog
// lookup sets Err and leaves the other catalogs unaffected.
type Batch struct {
	Catalog         Catalog
	Ranked          []Result
	OverRepresented []Result
	Err             error
}

// Orchestrator runs ranked-list and over-representation tests against
// each catalog, applying the significance gate before anything
// downstream touches a result.
type Orchestrator struct {
	engine  Engine
	emitter *signals.Emitter
	alpha   float64
	logger  *zap.Logger
}

// NewOrchestrator creates an orchestrator using the given engine and
// advisory-warning emitter.
func NewOrchestrator(engine Engine, emitter *signals.Emitter) *Orchestrator {
	return &Orchestrator{
		engine:  engine,
		emitter: emitter,
		alpha:   DefaultAlpha,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for per-catalog progress messages.
func (o *Orchestrator) SetLogger(l *zap.Logger) {
	o.logger = l
}

// SetAlpha overrides the significance threshold.
func (o *Orchestrator) SetAlpha(alpha float64) {
	o.alpha = alpha
}

// Run executes all catalog passes concurrently. Passes share no mutable
// state and have no ordering dependency; a failure in one is isolated to
// its Batch. Batches are returned in the order of runs.
func (o *Orchestrator) Run(ctx context.Context, runs []CatalogRun, list ranking.List) []Batch {
	batches := make([]Batch, len(runs))

	var wg sync.WaitGroup
	wg.Add(len(runs))
	for i, run := range runs {
		go func() {
			defer wg.Done()
			batches[i] = o.runCatalog(ctx, run, list)
		}()
	}
	wg.Wait()

	return batches
}

// runCatalog runs both test types for one catalog.
func (o *Orchestrator) runCatalog(ctx context.Context, run CatalogRun, list ranking.List) Batch {
	batch := Batch{Catalog: run.Catalog}

	ranked, err := o.engine.RankedTest(ctx, run.Catalog, run.Species, list)
	if err != nil {
		o.logger.Error("ranked-list test failed",
			zap.String("catalog", string(run.Catalog)),
			zap.Error(err))
		o.emitter.Warningf("%s ranked-list enrichment failed: %v", run.Catalog, err)
		batch.Err = err
		return batch
	}
	batch.Ranked = o.gate(run.Catalog, TestRanked, ranked)

	over, err := o.engine.OverRepresentationTest(ctx, run.Catalog, run.Species, list.IDs())
	if err != nil {
		o.logger.Error("over-representation test failed",
			zap.String("catalog", string(run.Catalog)),
			zap.Error(err))
		o.emitter.Warningf("%s over-representation enrichment failed: %v", run.Catalog, err)
		batch.Err = err
		return batch
	}
	batch.OverRepresented = o.gate(run.Catalog, TestOverRepresentation, over)

	return batch
}

// gate filters results to those passing the significance threshold and
// emits an advisory warning when a catalog/test pair comes back empty.
// An empty pair is expected under stringent thresholds, not exceptional.
func (o *Orchestrator) gate(catalog Catalog, test TestType, results []Result) []Result {
	var passed []Result
	for _, r := range results {
		if r.PAdjusted <= o.alpha {
			r.Catalog = catalog
			r.Test = test
			passed = append(passed, r)
		}
	}

	if len(passed) == 0 {
		o.emitter.Warningf("no significant %s terms from the %s analysis; skipping its plots and tables", catalog, test)
	} else {
		o.logger.Info("catalog pass complete",
			zap.String("catalog", string(catalog)),
			zap.String("test", string(test)),
			zap.Int("significant", len(passed)))
	}

	return passed
}
