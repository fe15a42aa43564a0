package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/annotation"
)

func newPrepareCmd(verbose *bool) *cobra.Command {
	var (
		dbPath      string
		genesPath   string
		aliasesPath string
		gmtSpecs    []string
		speciesKeys []string
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build the annotation database",
		Long: `Build the DuckDB annotation database the run command queries: gene
records, identifier aliases, per-catalog gene sets, and the species
identifiers the database answers for.

Gene sets are loaded from GMT files, one per catalog, given as
<collection>=<path> pairs with collection names GO, KEGG, or MSigDB.`,
		Example: `  vibe-pathway prepare --db annotations.duckdb \
      --genes genes.tsv --aliases aliases.tsv \
      --gmt GO=go.gmt --gmt KEGG=kegg.gmt --gmt MSigDB=msigdb.gmt \
      --species "Homo sapiens" --species org.Hs.eg.db --species hsa`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*verbose)
			defer logger.Sync()
			return runPrepare(dbPath, genesPath, aliasesPath, gmtSpecs, speciesKeys, logger)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path of the database to create or update")
	cmd.Flags().StringVar(&genesPath, "genes", "", "TSV of entrez_id, symbol, description")
	cmd.Flags().StringVar(&aliasesPath, "aliases", "", "TSV of alias, alias_type, entrez_id")
	cmd.Flags().StringArrayVar(&gmtSpecs, "gmt", nil, "Gene sets as <collection>=<path> (repeatable)")
	cmd.Flags().StringArrayVar(&speciesKeys, "species", nil, "Species identifier this database answers for (repeatable)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runPrepare(dbPath, genesPath, aliasesPath string, gmtSpecs, speciesKeys []string, logger *zap.Logger) error {
	store, err := annotation.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer store.Close()

	if err := store.CreateSchema(); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if genesPath != "" {
		n, err := annotation.LoadGenesTSV(store, genesPath)
		if err != nil {
			return fmt.Errorf("loading genes from %s: %w", genesPath, err)
		}
		logger.Info("genes loaded", zap.String("file", genesPath), zap.Int("rows", n))
	}

	if aliasesPath != "" {
		n, err := annotation.LoadAliasesTSV(store, aliasesPath)
		if err != nil {
			return fmt.Errorf("loading aliases from %s: %w", aliasesPath, err)
		}
		logger.Info("aliases loaded", zap.String("file", aliasesPath), zap.Int("rows", n))
	}

	for _, spec := range gmtSpecs {
		collection, path, ok := strings.Cut(spec, "=")
		if !ok || collection == "" || path == "" {
			return fmt.Errorf("invalid --gmt value %q, want <collection>=<path>", spec)
		}
		n, err := annotation.LoadGMTFile(store, collection, path)
		if err != nil {
			return fmt.Errorf("loading %s gene sets from %s: %w", collection, path, err)
		}
		logger.Info("gene sets loaded",
			zap.String("collection", collection),
			zap.String("file", path),
			zap.Int("sets", n))
	}

	for _, key := range speciesKeys {
		if err := store.AddSpeciesKey(key); err != nil {
			return fmt.Errorf("registering species %q: %w", key, err)
		}
	}
	if len(speciesKeys) > 0 {
		logger.Info("species keys registered", zap.Strings("keys", speciesKeys))
	}

	return nil
}
