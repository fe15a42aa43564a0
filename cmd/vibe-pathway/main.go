// Package main provides the vibe-pathway command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "vibe-pathway",
		Short:   "Pathway enrichment analysis and report data generation",
		Long:    "Turn a differential-expression contrast into ranked enrichment results\nacross GO, KEGG, and MSigDB, and emit the linked-report data bundle.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Example: `  # One-time setup: build the annotation database
  vibe-pathway prepare --db annotations.duckdb --genes genes.tsv --aliases aliases.tsv \
      --gmt KEGG=kegg.gmt --species "Homo sapiens" --species org.Hs.eg.db --species hsa

  # Run the analysis
  vibe-pathway run contrast.csv --db annotations.duckdb -o res`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cobra.OnInitialize(initConfig)

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newPrepareCmd(&verbose))
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig loads ~/.vibe-pathway.yaml if present. A missing config
// file is not an error; flags and defaults cover everything.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".vibe-pathway.yaml"))
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger. Output goes to stderr so stdout
// stays reserved for structured status blocks.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
