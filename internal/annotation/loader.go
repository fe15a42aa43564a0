package annotation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseGMT parses gene sets in GMT format: one set per line,
// term_id <TAB> term_name <TAB> member ids. Member names are not part of
// the format and are left empty.
func ParseGMT(r io.Reader) ([]GeneSet, error) {
	var sets []GeneSet
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("gmt line %d: expected at least 3 fields, found %d", lineNo, len(fields))
		}

		set := GeneSet{
			TermID:   fields[0],
			TermName: fields[1],
		}
		for _, id := range fields[2:] {
			if id != "" {
				set.MemberIDs = append(set.MemberIDs, id)
			}
		}
		sets = append(sets, set)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gmt: %w", err)
	}
	return sets, nil
}

// LoadGenesTSV loads gene records from a headerless TSV with columns
// entrez_id, symbol, description.
func LoadGenesTSV(s *Store, path string) (int, error) {
	return loadTSV(path, 2, func(fields []string) error {
		description := ""
		if len(fields) > 2 {
			description = fields[2]
		}
		return s.InsertGene(fields[0], fields[1], description)
	})
}

// LoadAliasesTSV loads alias rows from a headerless TSV with columns
// alias, alias_type, entrez_id.
func LoadAliasesTSV(s *Store, path string) (int, error) {
	return loadTSV(path, 3, func(fields []string) error {
		return s.InsertAlias(fields[0], fields[1], fields[2])
	})
}

// LoadGMTFile loads a GMT file into a collection, resolving member
// symbols from the genes table.
func LoadGMTFile(s *Store, collection, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open gmt file: %w", err)
	}
	defer f.Close()

	sets, err := ParseGMT(f)
	if err != nil {
		return 0, err
	}

	for i := range sets {
		names, err := s.GeneNames(sets[i].MemberIDs)
		if err != nil {
			return 0, err
		}
		sets[i].MemberNames = make([]string, len(sets[i].MemberIDs))
		for j, id := range sets[i].MemberIDs {
			sets[i].MemberNames[j] = names[id]
		}
		if err := s.InsertGeneSet(collection, sets[i]); err != nil {
			return 0, err
		}
	}
	return len(sets), nil
}

// loadTSV applies fn to each non-comment line with at least minFields
// tab-separated fields.
func loadTSV(path string, minFields int, fn func(fields []string) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open tsv file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return count, fmt.Errorf("tsv line %d: expected at least %d fields, found %d", lineNo, minFields, len(fields))
		}
		if err := fn(fields); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("read tsv: %w", err)
	}
	return count, nil
}
