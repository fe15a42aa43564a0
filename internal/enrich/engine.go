package enrich

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/ranking"
	"github.com/inodb/vibe-pathway/internal/signals"
)

// Result CSV columns produced by the enrichment engine.
const (
	colTermID        = "ID"
	colTermName      = "Description"
	colPValue        = "pvalue"
	colPAdjusted     = "p.adjust"
	colScore         = "enrichmentScore"
	colNormalized    = "NES"
	colSetSize       = "setSize"
	colCoreEntrezIDs = "coreEntrezIDs"
)

// ScriptEngine runs the external enrichment engine as a subprocess. The
// engine reads the gene list on stdin, writes scored results as CSV on
// stdout, and may embed structured warning/error blocks in its stderr,
// which are relayed to the emitter.
type ScriptEngine struct {
	command []string
	emitter *signals.Emitter
	logger  *zap.Logger
}

// NewScriptEngine creates an engine adapter invoking the given command.
func NewScriptEngine(command []string, emitter *signals.Emitter) *ScriptEngine {
	return &ScriptEngine{
		command: command,
		emitter: emitter,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for subprocess diagnostics.
func (e *ScriptEngine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// RankedTest runs a GSEA-style test; the ranked list is streamed as
// "id<TAB>score" lines.
func (e *ScriptEngine) RankedTest(ctx context.Context, catalog Catalog, species string, list ranking.List) ([]Result, error) {
	var stdin strings.Builder
	for _, entry := range list {
		fmt.Fprintf(&stdin, "%s\t%g\n", entry.ID, entry.Score)
	}
	return e.run(ctx, catalog, TestRanked, species, stdin.String())
}

// OverRepresentationTest runs an over-representation test; ids are
// streamed one per line, order irrelevant.
func (e *ScriptEngine) OverRepresentationTest(ctx context.Context, catalog Catalog, species string, ids []string) ([]Result, error) {
	var stdin strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&stdin, "%s\n", id)
	}
	return e.run(ctx, catalog, TestOverRepresentation, species, stdin.String())
}

func (e *ScriptEngine) run(ctx context.Context, catalog Catalog, test TestType, species, stdin string) ([]Result, error) {
	args := append([]string(nil), e.command[1:]...)
	args = append(args,
		"--catalog", string(catalog),
		"--test", string(test),
		"--species", species,
	)

	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running enrichment engine",
		zap.String("catalog", string(catalog)),
		zap.String("test", string(test)))

	runErr := cmd.Run()

	// Relay structured blocks the engine embedded in its own output.
	for _, w := range signals.ScanWarnings(stderr.String()) {
		e.emitter.Warning(w)
	}
	embedded := signals.ScanErrors(stderr.String())

	if runErr != nil {
		if len(embedded) > 0 {
			return nil, fmt.Errorf("enrichment engine failed: %s", strings.Join(embedded, "; "))
		}
		return nil, fmt.Errorf("enrichment engine failed: %w", runErr)
	}

	return parseResults(catalog, test, &stdout)
}

// parseResults parses the engine's CSV output into Results. Rows are
// keyed by header name so column order is not significant.
func parseResults(catalog Catalog, test TestType, r io.Reader) ([]Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse engine output: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{colTermID, colPValue, colPAdjusted, colScore} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("engine output missing column %q", required)
		}
	}

	var results []Result
	for lineNo, row := range rows[1:] {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		pValue, err := strconv.ParseFloat(get(colPValue), 64)
		if err != nil {
			return nil, fmt.Errorf("engine output line %d: invalid %s: %q", lineNo+2, colPValue, get(colPValue))
		}
		pAdjusted, err := strconv.ParseFloat(get(colPAdjusted), 64)
		if err != nil {
			return nil, fmt.Errorf("engine output line %d: invalid %s: %q", lineNo+2, colPAdjusted, get(colPAdjusted))
		}
		score, err := strconv.ParseFloat(get(colScore), 64)
		if err != nil {
			return nil, fmt.Errorf("engine output line %d: invalid %s: %q", lineNo+2, colScore, get(colScore))
		}

		res := Result{
			Catalog:   catalog,
			Test:      test,
			TermID:    get(colTermID),
			TermName:  get(colTermName),
			PValue:    pValue,
			PAdjusted: pAdjusted,
			Score:     score,
		}

		if nes := get(colNormalized); nes != "" && nes != "NA" {
			v, err := strconv.ParseFloat(nes, 64)
			if err != nil {
				return nil, fmt.Errorf("engine output line %d: invalid %s: %q", lineNo+2, colNormalized, nes)
			}
			res.NormalizedScore = &v
		}
		if size := get(colSetSize); size != "" {
			v, err := strconv.Atoi(size)
			if err != nil {
				return nil, fmt.Errorf("engine output line %d: invalid %s: %q", lineNo+2, colSetSize, size)
			}
			res.SetSize = v
		}
		if core := get(colCoreEntrezIDs); core != "" {
			res.CoreMemberIDs = strings.Split(core, "/")
		}

		results = append(results, res)
	}
	return results, nil
}
