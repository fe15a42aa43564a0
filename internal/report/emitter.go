package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/enrich"
	"github.com/inodb/vibe-pathway/internal/selection"
)

// Emitter writes the run's output artifacts under a results directory.
type Emitter struct {
	outDir string
	logger *zap.Logger
}

// NewEmitter creates an emitter rooted at outDir.
func NewEmitter(outDir string) *Emitter {
	return &Emitter{
		outDir: outDir,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for artifact messages.
func (e *Emitter) SetLogger(l *zap.Logger) {
	e.logger = l
}

// OutDir returns the results directory.
func (e *Emitter) OutDir() string {
	return e.outDir
}

// WritePathwayTable writes the selected records of one catalog as a CSV
// table under <outDir>/<catalog>/table.csv.
func (e *Emitter) WritePathwayTable(catalog enrich.Catalog, records []PathwayRecord) error {
	dir := filepath.Join(e.outDir, string(catalog))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	path := filepath.Join(dir, "table.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pathway table: %w", err)
	}
	defer f.Close()

	if err := writePathwayCSV(f, records); err != nil {
		return fmt.Errorf("write pathway table %s: %w", path, err)
	}

	e.logger.Info("wrote pathway table",
		zap.String("catalog", string(catalog)),
		zap.Int("rows", len(records)),
		zap.String("path", path))
	return nil
}

func writePathwayCSV(w io.Writer, records []PathwayRecord) error {
	cw := csv.NewWriter(w)

	header := []string{
		"ID", "Description", "pvalue", "p.adjust",
		"enrichmentScore", "NES", "setSize", "leadingEdgeSize",
		"coreEnrichedGenes", "coreEntrezIDs",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.PathwayID,
			rec.PathwayName,
			rec.PValue,
			rec.PAdjusted,
			rec.EnrichmentScore,
			rec.NormalizedEnrichmentScore,
			rec.GeneSetSize,
			rec.LeadingEdgeSize,
			strings.Join(rec.CoreEnrichedGenes, " "),
			strings.Join(rec.CoreEntrezIDs, "/"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGeneSets writes the gene-set index file at <outDir>/genesets.txt.
func (e *Emitter) WriteGeneSets(index selection.GeneSetIndex) error {
	path := filepath.Join(e.outDir, "genesets.txt")
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gene-set index: %w", err)
	}
	defer f.Close()

	if err := WriteGeneSetIndex(f, index); err != nil {
		return fmt.Errorf("write gene-set index: %w", err)
	}

	e.logger.Info("wrote gene-set index",
		zap.Int("sets", len(index.Order)),
		zap.String("path", path))
	return nil
}

// WriteData writes the report data contract at <outDir>/data.json.
func (e *Emitter) WriteData(data *Data) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	path := filepath.Join(e.outDir, "data.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report data: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode report data: %w", err)
	}

	e.logger.Info("wrote report data", zap.String("path", path))
	return nil
}

// CollectPathview moves a rendered diagram image under
// <outDir>/Pathview/<slug>.png and returns its reference.
func (e *Emitter) CollectPathview(pathwayID, pathwayName, srcPath string) (Pathview, error) {
	relative := filepath.Join("Pathview", Slugify(pathwayName, false)+".png")
	dst := filepath.Join(e.outDir, relative)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Pathview{}, fmt.Errorf("create pathview directory: %w", err)
	}

	if err := os.Rename(srcPath, dst); err != nil {
		// Rename fails across filesystems; fall back to copying.
		if copyErr := copyFile(srcPath, dst); copyErr != nil {
			return Pathview{}, fmt.Errorf("collect pathview image: %w", copyErr)
		}
	}

	return Pathview{ID: pathwayID, Path: "./" + filepath.ToSlash(relative)}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Slugify makes a string safe for use as a file name.
func Slugify(value string, keepSpaces bool) string {
	value = strings.ReplaceAll(value, "/", "_")
	if !keepSpaces {
		value = strings.ReplaceAll(value, " ", "_")
	}
	return value
}
