// Package viewstate maintains the report's linked selection state.
//
// The pathway table, the pathway-diagram overlay, the gene table, and
// the fold-change plot all read derived projections of one state object;
// no view holds independent state, which keeps them synchronized under
// selection and filtering.
package viewstate

import (
	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/report"
)

// State is the report's ephemeral selection state. It is created at
// report load, mutated only by the Model's transitions, and never
// persisted.
type State struct {
	SelectedPathwayID string
	ViewGenes         []string
	GeneFilter        []string
	SortKey           string
	SortAscending     bool
}

// Model owns the selection state and the derived view projections.
// It is single-threaded and event-driven: each user interaction maps to
// one transition method.
type Model struct {
	data *report.Data

	selectedPathwayID string
	viewGenes         []string
	viewSet           map[string]struct{}
	geneFilter        []string
	filterSet         map[string]struct{}
	sortKey           string
	sortAscending     bool

	// nameToID reverse-maps display names to canonical ids for the
	// metadata cache, built once from the embedded gene sets.
	nameToID map[string]string

	meta   *MetadataCache
	logger *zap.Logger
}

// New creates a model over embedded report data. meta may be nil when no
// metadata service is configured.
func New(data *report.Data, meta *MetadataCache) *Model {
	nameToID := make(map[string]string)
	for _, lists := range data.PathwayIDToGeneSets {
		ids, names := lists[0], lists[1]
		for i, name := range names {
			if i >= len(ids) || name == "" {
				continue
			}
			if _, dup := nameToID[name]; !dup {
				nameToID[name] = ids[i]
			}
		}
	}

	return &Model{
		data:      data,
		viewSet:   make(map[string]struct{}),
		filterSet: make(map[string]struct{}),
		nameToID:  nameToID,
		meta:      meta,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for transition diagnostics.
func (m *Model) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Snapshot returns a copy of the current selection state.
func (m *Model) Snapshot() State {
	return State{
		SelectedPathwayID: m.selectedPathwayID,
		ViewGenes:         append([]string(nil), m.viewGenes...),
		GeneFilter:        append([]string(nil), m.geneFilter...),
		SortKey:           m.sortKey,
		SortAscending:     m.sortAscending,
	}
}

// SelectPathway makes a pathway the active selection and resets the
// view-gene set to exactly the genes flagged as core in that pathway's
// diagram regions, deduplicated. Any prior manual selection is
// discarded; the gene filter is untouched.
func (m *Model) SelectPathway(id string) {
	m.selectedPathwayID = id
	m.viewGenes = m.viewGenes[:0]
	m.viewSet = make(map[string]struct{})

	for _, group := range m.data.PathwayIDToGeneGroups[id] {
		for _, gene := range group.Genes {
			if !gene.Core {
				continue
			}
			if _, dup := m.viewSet[gene.Name]; dup {
				continue
			}
			m.viewSet[gene.Name] = struct{}{}
			m.viewGenes = append(m.viewGenes, gene.Name)
		}
	}

	m.logger.Debug("pathway selected",
		zap.String("pathway", id),
		zap.Int("viewGenes", len(m.viewGenes)))
	m.requestMetadata(m.viewGenes)
}

// ToggleViewGene adds or removes a single gene from the view set,
// independent of the pathway selection.
func (m *Model) ToggleViewGene(name string, on bool) {
	_, present := m.viewSet[name]
	switch {
	case on && !present:
		m.viewSet[name] = struct{}{}
		m.viewGenes = append(m.viewGenes, name)
		m.requestMetadata([]string{name})
	case !on && present:
		delete(m.viewSet, name)
		for i, g := range m.viewGenes {
			if g == name {
				m.viewGenes = append(m.viewGenes[:i], m.viewGenes[i+1:]...)
				break
			}
		}
	}
}

// ClearViewGenes empties the view-gene set; the pathway selection is
// unchanged.
func (m *Model) ClearViewGenes() {
	m.viewGenes = m.viewGenes[:0]
	m.viewSet = make(map[string]struct{})
}

// SetGeneFilter replaces the gene filter. The pathway table and the gene
// table apply it with different combination semantics; see PathwayRows
// and GeneRows.
func (m *Model) SetGeneFilter(names []string) {
	m.geneFilter = append([]string(nil), names...)
	m.filterSet = make(map[string]struct{}, len(names))
	for _, n := range names {
		m.filterSet[n] = struct{}{}
	}
}

// SetSort updates the sort order. The first click on a column sorts
// descending; repeated clicks on the same column toggle the direction;
// clicking a different column resets to descending on it.
func (m *Model) SetSort(key string) {
	if key == m.sortKey {
		m.sortAscending = !m.sortAscending
		return
	}
	m.sortKey = key
	m.sortAscending = false
}

// requestMetadata asks the cache for descriptive metadata of genes newly
// entering view. The fetch is asynchronous and never blocks transitions.
func (m *Model) requestMetadata(names []string) {
	if m.meta == nil {
		return
	}
	var ids []string
	for _, name := range names {
		if id, ok := m.nameToID[name]; ok {
			ids = append(ids, id)
		}
	}
	m.meta.Request(ids)
}
