package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/annotation"
	"github.com/inodb/vibe-pathway/internal/contrast"
	"github.com/inodb/vibe-pathway/internal/enrich"
	"github.com/inodb/vibe-pathway/internal/ranking"
	"github.com/inodb/vibe-pathway/internal/report"
	"github.com/inodb/vibe-pathway/internal/resolve"
	"github.com/inodb/vibe-pathway/internal/selection"
	"github.com/inodb/vibe-pathway/internal/signals"
)

// runOptions collects everything the analysis pipeline needs.
type runOptions struct {
	contrastPath string
	geneColumn   string
	dbPath       string
	outDir       string
	reportName   string
	diagramsDir  string

	speciesLatin string
	speciesOrgDB string
	speciesKEGG  string

	engineCommand string
	alpha         float64
	topN          int
}

func newRunCmd(verbose *bool) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <contrast-file>",
		Short: "Run the enrichment analysis and emit report data",
		Long: `Run ranked (GSEA) and over-representation tests of a differential-expression
contrast against the GO, KEGG, and MSigDB catalogs, then emit per-catalog
tables, the gene-set index, and the report data bundle.

The contrast file is a CSV, TSV, or XLSX table with a gene column plus
log2FoldChange, pvalue, and padj columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.contrastPath = args[0]
			applyConfig(opts, cmd)

			logger := newLogger(*verbose)
			defer logger.Sync()

			emitter := signals.NewEmitter(os.Stdout)
			emitter.SetLogger(logger)

			if err := runPipeline(cmd, opts, emitter, logger); err != nil {
				emitter.Error(err.Error())
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.geneColumn, "gene-column", "", "Name of the gene column (default: first unnamed column)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Annotation database built with 'vibe-pathway prepare'")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "res", "Output directory for report data")
	cmd.Flags().StringVar(&opts.reportName, "report-name", "Pathway Analysis", "Display name of the report")
	cmd.Flags().StringVar(&opts.diagramsDir, "diagrams", "", "Directory holding <pathway>.xml and <pathway>.pathview.png files")
	cmd.Flags().StringVar(&opts.speciesLatin, "species-latin", "Homo sapiens", "Species identifier for the MSigDB catalog")
	cmd.Flags().StringVar(&opts.speciesOrgDB, "species-orgdb", "org.Hs.eg.db", "Species identifier for the GO catalog and gene resolution")
	cmd.Flags().StringVar(&opts.speciesKEGG, "species-kegg", "hsa", "Species identifier for the KEGG catalog and diagrams")
	cmd.Flags().StringVar(&opts.engineCommand, "engine", "", "Enrichment engine command, e.g. 'Rscript run_enrichment.R'")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", enrich.DefaultAlpha, "Adjusted p-value significance threshold")
	cmd.Flags().IntVar(&opts.topN, "top", 20, "Number of top pathways per catalog")

	return cmd
}

// applyConfig fills unset flags from ~/.vibe-pathway.yaml.
func applyConfig(opts *runOptions, cmd *cobra.Command) {
	if !cmd.Flags().Changed("db") && viper.IsSet("database") {
		opts.dbPath = viper.GetString("database")
	}
	if !cmd.Flags().Changed("gene-column") && viper.IsSet("input.gene_column") {
		opts.geneColumn = viper.GetString("input.gene_column")
	}
	if !cmd.Flags().Changed("engine") && viper.IsSet("engine.command") {
		opts.engineCommand = viper.GetString("engine.command")
	}
	if !cmd.Flags().Changed("top") && viper.IsSet("report.top") {
		opts.topN = viper.GetInt("report.top")
	}
	if !cmd.Flags().Changed("alpha") && viper.IsSet("report.alpha") {
		opts.alpha = viper.GetFloat64("report.alpha")
	}
}

func runPipeline(cmd *cobra.Command, opts *runOptions, emitter *signals.Emitter, logger *zap.Logger) error {
	if opts.dbPath == "" {
		return fmt.Errorf("no annotation database configured; pass --db or set 'database' in ~/.vibe-pathway.yaml")
	}
	if opts.engineCommand == "" {
		return fmt.Errorf("no enrichment engine configured; pass --engine or set 'engine.command' in ~/.vibe-pathway.yaml")
	}

	parser := contrast.NewParser(opts.geneColumn)
	parser.SetLogger(logger)
	records, err := parser.ParseFile(opts.contrastPath)
	if err != nil {
		return fmt.Errorf("reading contrast %s: %w", opts.contrastPath, err)
	}
	logger.Info("contrast loaded",
		zap.String("file", opts.contrastPath),
		zap.Int("genes", len(records)))

	store, err := annotation.NewStore(opts.dbPath)
	if err != nil {
		return fmt.Errorf("opening annotation database %s: %w", opts.dbPath, err)
	}
	defer store.Close()

	registry := annotation.NewRegistry()
	keys, err := store.SpeciesKeys()
	if err != nil {
		return fmt.Errorf("reading species keys: %w", err)
	}
	for _, key := range keys {
		registry.Register(key, store)
	}
	if err := registry.Validate(opts.speciesLatin, opts.speciesOrgDB, opts.speciesKEGG); err != nil {
		return err
	}

	gateway, err := registry.Lookup(opts.speciesOrgDB)
	if err != nil {
		return err
	}

	resolver := resolve.NewResolver(gateway)
	resolver.SetLogger(logger)
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.GeneName
	}
	mappings, err := resolver.Resolve(names)
	if err != nil {
		return err
	}
	logger.Info("identifiers resolved",
		zap.Int("input", len(names)),
		zap.Int("resolved", len(mappings)))

	list, err := buildRanking(records, mappings)
	if err != nil {
		return err
	}

	engine := enrich.NewScriptEngine(strings.Fields(opts.engineCommand), emitter)
	engine.SetLogger(logger)
	orch := enrich.NewOrchestrator(engine, emitter)
	orch.SetLogger(logger)
	orch.SetAlpha(opts.alpha)

	runs := []enrich.CatalogRun{
		{Catalog: enrich.CatalogOntology, Species: opts.speciesOrgDB},
		{Catalog: enrich.CatalogPathway, Species: opts.speciesKEGG},
		{Catalog: enrich.CatalogSignature, Species: opts.speciesLatin},
	}
	batches := orch.Run(cmd.Context(), runs, list)

	reporter := report.NewEmitter(opts.outDir)
	reporter.SetLogger(logger)

	// A batch whose over-representation pass failed can still carry gated
	// ranked results; those tables are written regardless.
	var keggSelected []selection.Selected
	for _, batch := range batches {
		if len(batch.Ranked) == 0 {
			continue
		}
		selected, err := selection.Select(batch.Ranked, opts.topN, store, logger)
		if err != nil {
			return err
		}
		if err := reporter.WritePathwayTable(batch.Catalog, report.NewPathwayRecords(selected)); err != nil {
			return err
		}
		if batch.Catalog == enrich.CatalogPathway {
			keggSelected = selected
		}
	}

	sets, err := store.GeneSets(string(enrich.CatalogPathway))
	if err != nil {
		return fmt.Errorf("loading gene sets: %w", err)
	}
	index := selection.BuildIndex(sets)
	if err := reporter.WriteGeneSets(index); err != nil {
		return err
	}

	data := &report.Data{
		ReportName:            opts.reportName,
		PathwayData:           report.NewPathwayRecords(keggSelected),
		ContrastData:          report.ContrastData(records),
		PathwayIDToGeneGroups: make(map[string][]report.GeneGroup),
	}

	selectedIDs := make([]string, len(keggSelected))
	for i, sel := range keggSelected {
		selectedIDs[i] = sel.Result.TermID
	}
	data.PathwayIDToGeneSets = report.GeneSetsFor(index, selectedIDs)

	if err := collectDiagrams(opts, keggSelected, reporter, emitter, logger, data); err != nil {
		return err
	}

	if err := reporter.WriteData(data); err != nil {
		return err
	}
	logger.Info("report data written", zap.String("dir", reporter.OutDir()))
	return nil
}

// buildRanking joins contrast scores onto canonical ids in input order.
func buildRanking(records []contrast.Record, mappings []resolve.Mapping) (ranking.List, error) {
	nameToID := make(map[string]string, len(mappings))
	for _, m := range mappings {
		nameToID[m.From] = m.To
	}

	var entries []ranking.Entry
	for _, rec := range records {
		id, ok := nameToID[rec.GeneName]
		if !ok {
			continue
		}
		entries = append(entries, ranking.Entry{ID: id, Score: rec.Log2FoldChange})
	}
	return ranking.Build(entries)
}

// collectDiagrams parses each selected pathway's KGML into overlay gene
// groups and moves its rendered diagram into the report. Missing diagram
// artifacts degrade to an advisory warning; the report is still usable
// without them.
func collectDiagrams(opts *runOptions, selected []selection.Selected, reporter *report.Emitter,
	emitter *signals.Emitter, logger *zap.Logger, data *report.Data) error {

	if opts.diagramsDir == "" || len(selected) == 0 {
		return nil
	}

	// The contrast universe is the raw gene names of the input table, the
	// same keys the report's contrastData lookup uses.
	contrastGenes := make(map[string]struct{}, len(data.ContrastData))
	for name := range data.ContrastData {
		contrastGenes[name] = struct{}{}
	}

	for _, sel := range selected {
		id := sel.Result.TermID

		// Core flags come from this pathway's leading edge, not from full
		// set membership.
		idToName := make(map[string]string, len(sel.Result.CoreMemberIDs))
		for i, memberID := range sel.Result.CoreMemberIDs {
			if i < len(sel.CoreGeneNames) {
				idToName[memberID] = sel.CoreGeneNames[i]
			}
		}

		xmlPath := filepath.Join(opts.diagramsDir, id+".xml")
		pngPath := filepath.Join(opts.diagramsDir, id+".pathview.png")

		width, err := report.ImageWidth(pngPath)
		if err != nil {
			emitter.Warningf("no rendered diagram for pathway %s; its image panel will be empty", id)
			logger.Warn("diagram image unavailable", zap.String("pathway", id), zap.Error(err))
			continue
		}

		f, err := os.Open(xmlPath)
		if err != nil {
			emitter.Warningf("no diagram layout for pathway %s; its image panel will be empty", id)
			logger.Warn("diagram layout unavailable", zap.String("pathway", id), zap.Error(err))
			continue
		}
		groups, err := report.ParseGeneGroups(f, width, opts.speciesKEGG, idToName, contrastGenes)
		f.Close()
		if err != nil {
			emitter.Warningf("unreadable diagram layout for pathway %s; its image panel will be empty", id)
			logger.Warn("diagram layout unparsable", zap.String("pathway", id), zap.Error(err))
			continue
		}
		data.PathwayIDToGeneGroups[id] = groups

		pv, err := reporter.CollectPathview(id, sel.Result.TermName, pngPath)
		if err != nil {
			return fmt.Errorf("collecting diagram for %s: %w", id, err)
		}
		data.Pathviews = append(data.Pathviews, pv)
	}
	return nil
}
