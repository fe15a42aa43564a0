package contrast

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ParseError represents a structural error in a contrast table.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("contrast table parse error at line %d: %s", e.Line, e.Message)
}

// Parser reads contrast tables from spreadsheet or delimited-text files.
type Parser struct {
	geneColumn string
	logger     *zap.Logger
}

// NewParser creates a parser that reads the gene identifier from the
// column named geneColumn. An empty geneColumn selects the first column
// with an empty header.
func NewParser(geneColumn string) *Parser {
	return &Parser{
		geneColumn: geneColumn,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for per-row drop messages.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// ParseFile parses a contrast table, trying spreadsheet parsing first and
// falling back to delimited text when the file is not a spreadsheet.
func (p *Parser) ParseFile(path string) ([]Record, error) {
	rows, xlsxErr := p.readSpreadsheet(path)
	if xlsxErr != nil {
		p.logger.Debug("not a spreadsheet, trying delimited text",
			zap.String("path", path),
			zap.Error(xlsxErr))
		var err error
		rows, err = p.readDelimited(path)
		if err != nil {
			return nil, err
		}
	}
	return p.parseRows(rows)
}

// readSpreadsheet reads all rows of the first sheet of an xlsx file.
func (p *Parser) readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readDelimited reads a CSV or TSV file, sniffing the separator from the
// header line.
func (p *Parser) readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open contrast table: %w", err)
	}
	defer f.Close()

	head := make([]byte, 4096)
	n, _ := f.Read(head)
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek contrast table: %w", err)
	}

	sep := ','
	headerLine := string(head[:n])
	if i := strings.IndexByte(headerLine, '\n'); i >= 0 {
		headerLine = headerLine[:i]
	}
	if strings.Count(headerLine, "\t") > strings.Count(headerLine, ",") {
		sep = '\t'
	}

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read contrast table: %w", err)
	}
	return rows, nil
}

// parseRows converts raw table rows into Records. The header row must
// contain the gene and log2FoldChange columns; p-value columns are
// optional. Rows with an unparsable fold change are dropped.
func (p *Parser) parseRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, &ParseError{Line: 1, Message: "no header row found"}
	}

	header := rows[0]
	geneIdx := -1
	lfcIdx := -1
	pIdx := -1
	padjIdx := -1

	for i, col := range header {
		switch strings.TrimSpace(col) {
		case p.geneColumn:
			if geneIdx == -1 {
				geneIdx = i
			}
		case ColLog2FoldChange:
			lfcIdx = i
		case ColPValue:
			pIdx = i
		case ColPAdjusted:
			padjIdx = i
		}
	}

	if geneIdx == -1 {
		return nil, &ParseError{Line: 1, Message: fmt.Sprintf("gene identifier column %q not found in header", p.geneColumn)}
	}
	if lfcIdx == -1 {
		return nil, &ParseError{Line: 1, Message: fmt.Sprintf("required column %q not found in header", ColLog2FoldChange)}
	}

	var records []Record
	for lineNo, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if geneIdx >= len(row) || lfcIdx >= len(row) {
			continue
		}

		name := strings.TrimSpace(row[geneIdx])
		if name == "" {
			continue
		}

		lfc, err := strconv.ParseFloat(strings.TrimSpace(row[lfcIdx]), 64)
		if err != nil {
			p.logger.Debug("dropping row with unparsable fold change",
				zap.Int("line", lineNo+2),
				zap.String("gene", name))
			continue
		}

		rec := Record{
			GeneName:       name,
			Log2FoldChange: lfc,
			PValue:         parseOptionalFloat(row, pIdx),
			PAdjusted:      parseOptionalFloat(row, padjIdx),
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseOptionalFloat parses an optional numeric cell. Missing cells and
// NA markers yield nil.
func parseOptionalFloat(row []string, idx int) *float64 {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[idx])
	if s == "" || s == "NA" || s == "NaN" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
