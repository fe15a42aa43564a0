package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-pathway/internal/selection"
)

// Section headers of the gene-set index file.
const (
	sectionPathwayIDs = "PATHWAYIDS"
	sectionEntrezIDs  = "ENTREZIDS"
	sectionNames      = "NAMES"
)

// WriteGeneSetIndex writes the gene-set index as three stacked sections:
// PATHWAYIDS, then ENTREZIDS (one whitespace-delimited line per set in
// matching order), then NAMES in the same order.
func WriteGeneSetIndex(w io.Writer, index selection.GeneSetIndex) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, sectionPathwayIDs)
	for _, id := range index.Order {
		fmt.Fprintln(bw, id)
	}

	fmt.Fprintln(bw, sectionEntrezIDs)
	for _, id := range index.Order {
		fmt.Fprintln(bw, strings.Join(index.Entries[id].MemberIDs, " "))
	}

	fmt.Fprintln(bw, sectionNames)
	for _, id := range index.Order {
		fmt.Fprintln(bw, strings.Join(index.Entries[id].MemberNames, " "))
	}

	return bw.Flush()
}

// ParseGeneSetIndex reads a gene-set index file back into an index.
func ParseGeneSetIndex(r io.Reader) (selection.GeneSetIndex, error) {
	var (
		pathwayIDs []string
		entrezIDs  [][]string
		names      [][]string
	)

	var currentIDs *[]string
	var currentLists *[][]string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		switch {
		case strings.HasPrefix(line, sectionPathwayIDs):
			currentIDs, currentLists = &pathwayIDs, nil
		case strings.HasPrefix(line, sectionEntrezIDs):
			currentIDs, currentLists = nil, &entrezIDs
		case strings.HasPrefix(line, sectionNames):
			currentIDs, currentLists = nil, &names
		case currentIDs != nil:
			*currentIDs = append(*currentIDs, strings.TrimSpace(line))
		case currentLists != nil:
			*currentLists = append(*currentLists, strings.Fields(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return selection.GeneSetIndex{}, fmt.Errorf("read gene-set index: %w", err)
	}

	if len(entrezIDs) != len(pathwayIDs) || len(names) != len(pathwayIDs) {
		return selection.GeneSetIndex{}, fmt.Errorf(
			"gene-set index sections out of sync: %d ids, %d member lines, %d name lines",
			len(pathwayIDs), len(entrezIDs), len(names))
	}

	index := selection.GeneSetIndex{
		Order:   pathwayIDs,
		Entries: make(map[string]selection.GeneSetEntry, len(pathwayIDs)),
	}
	for i, id := range pathwayIDs {
		index.Entries[id] = selection.GeneSetEntry{
			MemberIDs:   entrezIDs[i],
			MemberNames: names[i],
		}
	}
	return index, nil
}
